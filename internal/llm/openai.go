package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openAIModels lists commonly available OpenAI models.
var openAIModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
}

// openAIUser is sent as the end-user identifier on every request.
const openAIUser = "self"

// OpenAIProvider implements LLMProvider for OpenAI's Chat Completions API.
type OpenAIProvider struct {
	client  *openai.Client
	baseURL string
	model   string
	http    *http.Client
}

// OpenAIOption configures the OpenAI provider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIBaseURL sets a custom base URL (e.g., for proxies or compatible servers).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithOpenAIModel sets the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.http = client }
}

// NewOpenAIProvider creates an OpenAI provider. An empty key is a
// configuration error.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	p := &OpenAIProvider{
		model: "gpt-4o-mini",
		http:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}

	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	cfg.HTTPClient = p.http
	p.client = openai.NewClientWithConfig(cfg)
	return p, nil
}

func (p *OpenAIProvider) Name() string     { return ProviderOpenAI }
func (p *OpenAIProvider) Models() []string { return openAIModels }

// Ping verifies the API key by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return p.mapError(err)
	}
	return nil
}

// Chat sends a chat completion request. With opts.Function set the model is
// directed to call that function and the call's arguments are returned as
// the content.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	req := p.buildRequest(messages, opts)

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: ProviderOpenAI, StatusCode: http.StatusOK, Message: "no choices in response", Err: ErrBadResponse}
	}

	choice := resp.Choices[0]
	out := &Response{
		Content:      choice.Message.Content,
		FinishReason: FinishReason(choice.FinishReason),
		Model:        resp.Model,
		Provider:     ProviderOpenAI,
		Latency:      time.Since(start),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if fc := choice.Message.FunctionCall; fc != nil {
		out.Content = fc.Arguments
		out.FunctionName = fc.Name
	}
	return out, nil
}

func (p *OpenAIProvider) buildRequest(messages []Message, opts *ChatOptions) openai.ChatCompletionRequest {
	windowed := WindowMessages(messages, historyWindow(opts))
	msgs := make([]openai.ChatCompletionMessage, len(windowed))
	for i, m := range windowed {
		msgs[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	// A zero temperature is dropped by the client library, so it is sent
	// as the smallest positive float instead.
	req := openai.ChatCompletionRequest{
		Model:       resolveModel(opts, p.model),
		Messages:    msgs,
		Temperature: math.SmallestNonzeroFloat32,
		User:        openAIUser,
	}
	if opts == nil {
		return req
	}
	if opts.Temperature > 0 {
		req.Temperature = float32(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if fn := opts.Function; fn != nil {
		req.Functions = []openai.FunctionDefinition{{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters,
		}}
		req.FunctionCall = map[string]string{"name": fn.Name}
	}
	return req
}

// mapError converts go-openai errors into ProviderError.
func (p *OpenAIProvider) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := statusError(ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message)
		if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
			pe.Err = ErrContextLength
		}
		return pe
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return statusError(ProviderOpenAI, reqErr.HTTPStatusCode, msg)
	}
	return transportError(ProviderOpenAI, err)
}
