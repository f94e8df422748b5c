package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/researcher/internal/model"
	"github.com/sony/gobreaker"
)

// Fallback tries a primary provider and falls back to a secondary one when
// the primary fails, returns nothing, or its circuit breaker is open.
//
// The breaker wraps only the primary. It opens after WithBreaker's number
// of consecutive errors, and while it is open every query goes straight to
// the secondary. An empty result list is not an error and does not count
// toward opening the breaker.
type Fallback struct {
	primary   Provider
	secondary Provider
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// FallbackOption configures Fallback.
type FallbackOption func(*fallbackConfig)

type fallbackConfig struct {
	failures    uint32
	openTimeout time.Duration
	logger      *slog.Logger
}

// WithBreaker sets the consecutive failures that open the breaker and how
// long it stays open.
func WithBreaker(failures uint32, openTimeout time.Duration) FallbackOption {
	return func(c *fallbackConfig) {
		c.failures = failures
		c.openTimeout = openTimeout
	}
}

// WithFallbackLogger sets the logger.
func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(c *fallbackConfig) {
		c.logger = logger
	}
}

// NewFallback creates a Fallback. Either provider may be nil.
func NewFallback(primary, secondary Provider, opts ...FallbackOption) *Fallback {
	cfg := fallbackConfig{
		failures:    3,
		openTimeout: time.Minute,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &Fallback{primary: primary, secondary: secondary, logger: cfg.logger}
	if primary != nil {
		f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "search:" + primary.Name(),
			MaxRequests: 1,
			Timeout:     cfg.openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				cfg.logger.Warn("search circuit breaker state change",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		})
	}
	return f
}

// Name returns the primary provider name, or the secondary one when there
// is no primary.
func (f *Fallback) Name() string {
	if f.primary != nil {
		return f.primary.Name()
	}
	if f.secondary != nil {
		return f.secondary.Name()
	}
	return "none"
}

// Search returns the primary results, or the secondary results when the
// primary cannot serve the query.
func (f *Fallback) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if f.primary == nil && f.secondary == nil {
		return nil, ErrNoProvider
	}

	if f.primary != nil {
		out, err := f.breaker.Execute(func() (interface{}, error) {
			return f.primary.Search(ctx, query, limit)
		})
		if err == nil {
			if results, _ := out.([]model.SearchResult); len(results) > 0 {
				return capResults(results, limit), nil
			}
		}
		if f.secondary == nil {
			if err != nil {
				return nil, err
			}
			return nil, nil
		}
		f.logger.Info("falling back to secondary search provider",
			"primary", f.primary.Name(),
			"secondary", f.secondary.Name(),
			"query", query,
			"error", err,
		)
	}

	results, err := f.secondary.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return capResults(results, limit), nil
}

// State returns the primary breaker state.
func (f *Fallback) State() gobreaker.State {
	if f.breaker == nil {
		return gobreaker.StateClosed
	}
	return f.breaker.State()
}
