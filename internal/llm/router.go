package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/marketdesk/internal/config"
)

// Router sends requests to the primary provider and falls back along a
// chain on failure. A router built from config always ends its chain
// with the mock provider, so Complete never leaves a caller empty-handed.
type Router struct {
	mu         sync.RWMutex
	providers  map[string]Provider
	primary    string
	fallbacks  []string
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

// RouterOption configures the router.
type RouterOption func(*Router)

// WithFallbacks sets the fallback provider chain.
func WithFallbacks(providers ...string) RouterOption {
	return func(r *Router) { r.fallbacks = providers }
}

// WithMaxRetries sets the maximum number of retry attempts per provider.
func WithMaxRetries(n int) RouterOption {
	return func(r *Router) { r.maxRetries = n }
}

// WithRetryDelay sets the base delay between retries.
func WithRetryDelay(d time.Duration) RouterOption {
	return func(r *Router) { r.retryDelay = d }
}

// WithLogger routes provider failures to log.
func WithLogger(log *zap.Logger) RouterOption {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter creates a new LLM router with the given primary provider.
func NewRouter(primary string, opts ...RouterOption) *Router {
	r := &Router{
		providers:  make(map[string]Provider),
		primary:    primary,
		maxRetries: 1,
		retryDelay: 500 * time.Millisecond,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterProvider adds a provider to the router.
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a registered provider by name.
func (r *Router) GetProvider(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Primary returns the primary provider.
func (r *Router) Primary() (Provider, error) {
	p, ok := r.GetProvider(r.primary)
	if !ok {
		return nil, fmt.Errorf("%w: primary provider %q not registered", ErrNoProviders, r.primary)
	}
	return p, nil
}

// Live reports whether the primary provider is a real backend.
func (r *Router) Live() bool {
	p, err := r.Primary()
	return err == nil && p.Name() != ProviderMock
}

// Model returns the primary provider's default model.
func (r *Router) Model() string {
	p, err := r.Primary()
	if err != nil {
		return ""
	}
	if m, ok := p.(interface{ Model() string }); ok {
		return m.Model()
	}
	if models := p.Models(); len(models) > 0 {
		return models[0]
	}
	return ""
}

// Chat routes a chat request through the provider chain with fallback.
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

		resp, err := r.chatWithRetry(ctx, provider, messages, opts)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		r.log.Warn("llm provider failed, trying next",
			zap.String("provider", providerName), zap.Error(err))

		// Don't fall back on cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		return nil, ErrNoProviders
	}
	return nil, fmt.Errorf("llm/router: all providers failed, last error: %w", lastErr)
}

// Complete runs one system+user exchange. It reports live=true only when
// a real backend produced the text; otherwise it returns the mock or
// fallback placeholder and live=false.
func (r *Router) Complete(ctx context.Context, system, user string, opts *ChatOptions) (content string, live bool) {
	if !r.Live() {
		return MockContent, false
	}
	resp, err := r.Chat(ctx, []Message{SystemMessage(system), UserMessage(user)}, opts)
	if err != nil || resp.Provider == ProviderMock {
		return FallbackContent, false
	}
	return resp.Content, true
}

// HealthCheck pings all registered providers and returns their status.
func (r *Router) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	providers := make(map[string]Provider, len(r.providers))
	for k, v := range r.providers {
		providers[k] = v
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(providers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, provider := range providers {
		wg.Add(1)
		go func(n string, p Provider) {
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

func (r *Router) chatWithRetry(ctx context.Context, provider Provider, messages []Message, opts *ChatOptions) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.retryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := provider.Chat(ctx, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if isNonRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// isNonRetryable covers auth, model and context-length failures; a
// retry against the same provider cannot succeed.
func isNonRetryable(err error) bool {
	return errors.Is(err, ErrNoAPIKey) ||
		errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrContextLength)
}

// NewRouterFromConfig builds the router for cfg. Live mode with a key
// makes OpenAI primary with mock as fallback; anything else is mock only.
func NewRouterFromConfig(cfg *config.Config, log *zap.Logger) *Router {
	mock := NewMockProvider()
	if !cfg.LiveAvailable() {
		r := NewRouter(ProviderMock, WithLogger(log))
		r.RegisterProvider(mock)
		return r
	}

	timeout := time.Duration(cfg.LLM.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	openai, err := NewOpenAIProvider(cfg.LLM.OpenAIKey,
		WithOpenAIBaseURL(cfg.LLM.BaseURL),
		WithOpenAIModel(cfg.LLM.Model),
		WithOpenAIDefaults(cfg.LLM.Temperature, cfg.LLM.MaxTokens),
		WithOpenAIHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		r := NewRouter(ProviderMock, WithLogger(log))
		r.RegisterProvider(mock)
		return r
	}

	r := NewRouter(ProviderOpenAI,
		WithFallbacks(ProviderMock),
		WithMaxRetries(1),
		WithRetryDelay(time.Second),
		WithLogger(log),
	)
	r.RegisterProvider(openai)
	r.RegisterProvider(mock)
	return r
}
