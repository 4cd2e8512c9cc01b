package llm

import (
	"context"
	"time"
)

// Fixed mock outputs. Callers detect mock content by provider name, not text.
const (
	MockContent     = "[Mock LLM output - add OPENAI_API_KEY to enable Live mode]"
	FallbackContent = "[LLM call failed - falling back to mock mode]"
)

// MockProvider answers every request with MockContent. It never fails,
// so it is always the last link of a router chain.
type MockProvider struct{}

// NewMockProvider returns the deterministic mock backend.
func NewMockProvider() *MockProvider { return &MockProvider{} }

func (*MockProvider) Name() string               { return ProviderMock }
func (*MockProvider) Models() []string           { return []string{"mock"} }
func (*MockProvider) Ping(context.Context) error { return nil }

// Chat returns MockContent unless ctx is already done.
func (*MockProvider) Chat(ctx context.Context, _ []Message, _ *ChatOptions) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Response{
		Content:      MockContent,
		FinishReason: FinishStop,
		Model:        "mock",
		Provider:     ProviderMock,
		Latency:      time.Duration(0),
	}, nil
}
