package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchat/internal/config"
)

// Router routes chat requests to a primary provider, retrying transient
// failures and falling back to further providers in order.
type Router struct {
	mu         sync.RWMutex
	providers  map[string]LLMProvider
	primary    string
	fallbacks  []string
	models     map[string]string // provider → model override
	maxRetries int
	retryDelay time.Duration
}

// RouterOption configures the router.
type RouterOption func(*Router)

// WithFallbacks sets the fallback provider chain.
func WithFallbacks(providers ...string) RouterOption {
	return func(r *Router) { r.fallbacks = providers }
}

// WithProviderModel forces model for every request sent to provider.
func WithProviderModel(provider, model string) RouterOption {
	return func(r *Router) {
		if model != "" {
			r.models[provider] = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts per provider.
func WithMaxRetries(n int) RouterOption {
	return func(r *Router) { r.maxRetries = n }
}

// WithRetryDelay sets the base delay between retries.
func WithRetryDelay(d time.Duration) RouterOption {
	return func(r *Router) { r.retryDelay = d }
}

// NewRouter creates a new LLM router with the given primary provider.
func NewRouter(primary string, opts ...RouterOption) *Router {
	r := &Router{
		providers:  make(map[string]LLMProvider),
		primary:    primary,
		models:     make(map[string]string),
		maxRetries: 2,
		retryDelay: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterProvider adds a provider to the router.
func (r *Router) RegisterProvider(provider LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a registered provider by name.
func (r *Router) GetProvider(name string) (LLMProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Primary returns the primary provider.
func (r *Router) Primary() (LLMProvider, error) {
	p, ok := r.GetProvider(r.primary)
	if !ok {
		return nil, fmt.Errorf("%w: primary provider %q not registered", ErrNoProviders, r.primary)
	}
	return p, nil
}

// Chat routes a chat request through the provider chain with fallback.
// Errors that a retry cannot fix (bad key, unknown model) are returned
// without trying further providers.
func (r *Router) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	chain := r.providerChain()
	if len(chain) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, providerName := range chain {
		provider, ok := r.GetProvider(providerName)
		if !ok {
			continue
		}

		resp, err := r.chatWithRetry(ctx, provider, messages, r.optionsFor(providerName, opts))
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !Retryable(err) {
			return nil, err
		}
		log.Warn().Err(err).Str("provider", providerName).Msg("llm/router: provider failed, trying next")
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: none of %v registered", ErrNoProviders, chain)
	}
	return nil, fmt.Errorf("llm/router: all providers failed, last error: %w", lastErr)
}

// HealthCheck pings all registered providers and returns their status.
func (r *Router) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	providers := make(map[string]LLMProvider, len(r.providers))
	for k, v := range r.providers {
		providers[k] = v
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(providers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, provider := range providers {
		wg.Add(1)
		go func(n string, p LLMProvider) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			err := p.Ping(pingCtx)
			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, provider)
	}
	wg.Wait()
	return results
}

// Name returns the name of the primary provider (satisfies LLMProvider).
func (r *Router) Name() string {
	return "router/" + r.primary
}

// Models returns the union of models from all registered providers (satisfies LLMProvider).
func (r *Router) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []string
	seen := make(map[string]bool)
	for _, p := range r.providers {
		for _, m := range p.Models() {
			if !seen[m] {
				seen[m] = true
				all = append(all, m)
			}
		}
	}
	return all
}

// Ping checks the primary provider's health (satisfies LLMProvider).
func (r *Router) Ping(ctx context.Context) error {
	p, err := r.Primary()
	if err != nil {
		return err
	}
	return p.Ping(ctx)
}

// ── Internal Helpers ──

func (r *Router) providerChain() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := []string{r.primary}
	for _, fb := range r.fallbacks {
		if fb != r.primary {
			chain = append(chain, fb)
		}
	}
	return chain
}

// optionsFor applies the provider's model override to a copy of opts.
func (r *Router) optionsFor(provider string, opts *ChatOptions) *ChatOptions {
	r.mu.RLock()
	model, ok := r.models[provider]
	r.mu.RUnlock()
	if !ok {
		return opts
	}
	var o ChatOptions
	if opts != nil {
		o = *opts
	}
	o.Model = model
	return &o
}

// chatWithRetry calls provider until it succeeds, fails with an error a
// retry cannot fix, or maxRetries extra attempts are spent. Delays start at
// retryDelay and double up to ten times that.
func (r *Router) chatWithRetry(ctx context.Context, provider LLMProvider,
	messages []Message, opts *ChatOptions) (*Response, error) {

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retryDelay
	b.MaxInterval = 10 * r.retryDelay
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	retries := uint64(0)
	if r.maxRetries > 0 {
		retries = uint64(r.maxRetries)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)

	var resp *Response
	op := func() error {
		var err error
		resp, err = provider.Chat(ctx, messages, opts)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Debug().Err(err).
			Str("provider", provider.Name()).
			Dur("wait", wait).
			Msg("llm/router: retrying")
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// NewRouterFromConfig creates a Router for backend ("openai" or "ollama";
// empty means cfg.LLM.Primary). Only the OpenAI provider needs a key, and
// it is required when it is the primary.
func NewRouterFromConfig(cfg *config.Config, backend string) (*Router, error) {
	if backend == "" {
		backend = cfg.LLM.Primary
	}
	router := NewRouter(backend,
		WithMaxRetries(cfg.LLM.MaxRetries),
		WithRetryDelay(cfg.LLM.RetryDelay()),
		WithProviderModel(ProviderOllama, cfg.LLM.LocalModel),
	)

	httpClient := newHTTPClient(cfg.LLM.Timeout())
	registered := 0

	if cfg.LLM.OpenAIKey != "" {
		p, err := NewOpenAIProvider(cfg.LLM.OpenAIKey,
			WithOpenAIBaseURL(cfg.LLM.OpenAIBaseURL),
			WithOpenAIModel(cfg.LLM.ChatModel),
			WithOpenAIHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		router.RegisterProvider(p)
		registered++
	} else if backend == ProviderOpenAI {
		return nil, ErrNoAPIKey
	}

	if cfg.LLM.OllamaURL != "" {
		p, err := NewOllamaProvider(cfg.LLM.OllamaURL,
			WithOllamaModel(cfg.LLM.LocalModel),
			WithOllamaHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		router.RegisterProvider(p)
		registered++
	}

	if registered == 0 {
		return nil, ErrNoProviders
	}
	if _, err := router.Primary(); err != nil {
		return nil, err
	}

	var fallbacks []string
	for _, fb := range cfg.LLM.Fallbacks {
		if _, ok := router.GetProvider(fb); !ok {
			return nil, errors.Join(ErrNoProviders, fmt.Errorf("fallback provider %q is not configured", fb))
		}
		fallbacks = append(fallbacks, fb)
	}
	router.fallbacks = fallbacks
	return router, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
