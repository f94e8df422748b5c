package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Request is a single-turn completion request.
type Request struct {
	// System is the system or role prompt. May be empty.
	System string

	// User is the user message.
	User string

	// Model is the provider model name.
	Model string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the reply. Zero uses the provider default.
	MaxTokens int
}

// Client completes a single-turn chat request.
type Client interface {
	// Complete returns the reply text. An empty reply is reported as
	// ErrEmptyResponse.
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the provider name for logging.
	Name() string
}

// Settings holds provider credentials and transport.
type Settings struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the provider endpoint, e.g. for a proxy or a
	// compatible self-hosted server.
	BaseURL string

	// HTTPClient is used for requests when set.
	HTTPClient *http.Client
}

// New creates the Client for provider.
func New(ctx context.Context, provider string, s Settings) (Client, error) {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
	}

	switch provider {
	case ProviderAnthropic:
		return NewAnthropic(s), nil
	case ProviderGemini:
		return NewGemini(ctx, s)
	default:
		return NewOpenAI(s), nil
	}
}

const defaultMaxTokens = 4096

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
