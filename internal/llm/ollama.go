package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// ollamaModels lists commonly used Ollama models.
var ollamaModels = []string{
	"llama3.1",
	"llama3.2",
	"llava",
	"mistral",
	"qwen2.5:7b",
}

// DefaultEmbedModel is the model used by Embed.
const DefaultEmbedModel = "nomic-embed-text"

// OllamaProvider implements LLMProvider for local Ollama instances.
type OllamaProvider struct {
	baseURL string
	model   string
	http    *http.Client
	client  *api.Client
}

// OllamaOption configures the Ollama provider.
type OllamaOption func(*OllamaProvider)

// WithOllamaModel sets the default model.
func WithOllamaModel(model string) OllamaOption {
	return func(p *OllamaProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithOllamaHTTPClient sets a custom HTTP client.
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(p *OllamaProvider) { p.http = client }
}

// NewOllamaProvider creates an Ollama provider.
// baseURL is the Ollama server URL (e.g., "http://localhost:11434").
func NewOllamaProvider(baseURL string, opts ...OllamaOption) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	p := &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   "llama3.1",
		http:    &http.Client{Timeout: 300 * time.Second}, // longer timeout for local models
	}
	for _, opt := range opts {
		opt(p)
	}

	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid base URL %q: %w", baseURL, err)
	}
	p.client = api.NewClient(u, p.http)
	return p, nil
}

func (p *OllamaProvider) Name() string     { return ProviderOllama }
func (p *OllamaProvider) Models() []string { return ollamaModels }

// Ping checks if the Ollama server is reachable.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		return p.mapError(err)
	}
	return nil
}

// Chat sends a non-streaming request to /api/chat. A function directive is
// expressed as a structured-output format built from its parameter schema.
func (p *OllamaProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	req, err := p.buildRequest(messages, opts)
	if err != nil {
		return nil, err
	}

	var out *Response
	err = p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out = &Response{
			Content:      resp.Message.Content,
			FinishReason: FinishReason(resp.DoneReason),
			Model:        resp.Model,
			Provider:     ProviderOllama,
			Usage: Usage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
				TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			},
		}
		return nil
	})
	if err != nil {
		return nil, p.mapError(err)
	}
	if out == nil {
		return nil, &ProviderError{Provider: ProviderOllama, StatusCode: http.StatusOK, Message: "empty response", Err: ErrBadResponse}
	}
	if opts != nil && opts.Function != nil {
		out.FunctionName = opts.Function.Name
	}
	out.Latency = time.Since(start)
	return out, nil
}

func (p *OllamaProvider) buildRequest(messages []Message, opts *ChatOptions) (*api.ChatRequest, error) {
	windowed := WindowMessages(messages, historyWindow(opts))
	msgs := make([]api.Message, len(windowed))
	for i, m := range windowed {
		msgs[i] = api.Message{Role: string(m.Role), Content: m.Content}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    resolveModel(opts, p.model),
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": 0.0},
	}
	if opts == nil {
		return req, nil
	}
	req.Options["temperature"] = opts.Temperature
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}
	if fn := opts.Function; fn != nil && fn.Parameters != nil {
		format, err := json.Marshal(fn.Parameters)
		if err != nil {
			return nil, fmt.Errorf("ollama: marshal format schema: %w", err)
		}
		req.Format = format
	}
	return req, nil
}

// Embed returns the embedding vector for text using DefaultEmbedModel.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := p.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  DefaultEmbedModel,
		Prompt: text,
	})
	if err != nil {
		return nil, p.mapError(err)
	}
	return resp.Embedding, nil
}

// DescribeImage sends the image at path with prompt to a vision model via
// /api/generate and returns the generated text.
func (p *OllamaProvider) DescribeImage(ctx context.Context, path, model, prompt string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("ollama: read image: %w", err)
	}
	if model == "" {
		model = p.model
	}

	stream := false
	var b strings.Builder
	err = p.client.Generate(ctx, &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Images: []api.ImageData{data},
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", p.mapError(err)
	}
	return b.String(), nil
}

// mapError converts ollama client errors into ProviderError.
func (p *OllamaProvider) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se api.StatusError
	if errors.As(err, &se) {
		msg := se.ErrorMessage
		if msg == "" {
			msg = se.Status
		}
		return statusError(ProviderOllama, se.StatusCode, msg)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return transportError(ProviderOllama, err)
	}
	// Streamed error lines arrive as plain errors carrying the server message.
	return &ProviderError{Provider: ProviderOllama, Message: err.Error(), Err: ErrBadResponse}
}
