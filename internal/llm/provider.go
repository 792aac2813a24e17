// Package llm provides a unified chat interface over a hosted backend
// (OpenAI) and a local backend (Ollama), with history windowing, a
// function-call directive for structured replies, and routing with
// fallback.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider names for routing and configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Common errors returned by LLM providers.
var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrRateLimit     = errors.New("llm: rate limit exceeded")
	ErrContextLength = errors.New("llm: context length exceeded")
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrInvalidModel  = errors.New("llm: invalid model")
	ErrBadResponse   = errors.New("llm: unexpected response")
	ErrNoProviders   = errors.New("llm: no providers configured")
)

// ProviderError is a failed backend call. Err is one of the sentinel
// errors above so callers can match with errors.Is.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// statusError maps an HTTP status from a backend to a ProviderError.
func statusError(provider string, code int, msg string) *ProviderError {
	var err error
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		err = ErrNoAPIKey
	case code == http.StatusTooManyRequests:
		err = ErrRateLimit
	case code == http.StatusNotFound:
		err = ErrInvalidModel
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "context length"):
		err = ErrContextLength
	case code >= http.StatusInternalServerError:
		err = ErrProviderDown
	default:
		err = ErrBadResponse
	}
	return &ProviderError{Provider: provider, StatusCode: code, Message: msg, Err: err}
}

// transportError wraps a failure to reach the backend at all.
func transportError(provider string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Message: cause.Error(), Err: ErrProviderDown}
}

// Retryable reports whether a later attempt might succeed.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrProviderDown)
}

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishStop         FinishReason = "stop"
	FinishFunctionCall FinishReason = "function_call"
	FinishLength       FinishReason = "length"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response represents a complete response from the LLM. When the model
// answered through a function call, Content holds the call's arguments.
type Response struct {
	Content      string        `json:"content"`
	FunctionName string        `json:"function_name,omitempty"`
	FinishReason FinishReason  `json:"finish_reason"`
	Usage        Usage         `json:"usage"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Latency      time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	// HistoryWindow keeps only the most recent n messages (plus a leading
	// system prompt). n <= 0 sends the full history.
	HistoryWindow int          `json:"history_window,omitempty"`
	Function      *FunctionDef `json:"function,omitempty"`
}

// Chatter is the single capability the dialogue and the analysis runner
// depend on.
type Chatter interface {
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)
}

// LLMProvider is the interface that all LLM backends must implement.
type LLMProvider interface {
	Chatter

	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string

	// Models returns the list of commonly used models for this provider.
	Models() []string

	// Ping checks if the provider is reachable and the API key is valid.
	Ping(ctx context.Context) error
}

// WindowMessages returns the last n messages. A leading system message is
// always kept and does not count toward n. n <= 0 returns msgs unchanged.
func WindowMessages(msgs []Message, n int) []Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	if msgs[0].Role != RoleSystem {
		return msgs[len(msgs)-n:]
	}
	rest := msgs[1:]
	if len(rest) <= n {
		return msgs
	}
	out := make([]Message, 0, n+1)
	out = append(out, msgs[0])
	return append(out, rest[len(rest)-n:]...)
}

// NewMessage creates a message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// String returns a human-readable summary of the response.
func (r *Response) String() string {
	truncated := r.Content
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}

func resolveModel(opts *ChatOptions, fallback string) string {
	if opts != nil && opts.Model != "" {
		return opts.Model
	}
	return fallback
}

func historyWindow(opts *ChatOptions) int {
	if opts == nil {
		return 0
	}
	return opts.HistoryWindow
}
