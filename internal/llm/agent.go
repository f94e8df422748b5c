package llm

import (
	"context"
	"log/slog"
	"time"
)

// Agent performs the research roles on top of a Client. Smart calls use the
// larger model; summaries use the faster one. Every call is bounded by a
// timeout, and failures are logged and returned as an empty string plus the
// error so callers can degrade.
type Agent struct {
	client        Client
	smartModel    string
	fastModel     string
	temperature   float64
	maxTokens     int
	timeout       time.Duration
	reportTimeout time.Duration
	logger        *slog.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithModels sets the smart and fast model names.
func WithModels(smart, fast string) AgentOption {
	return func(a *Agent) {
		a.smartModel = smart
		a.fastModel = fast
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AgentOption {
	return func(a *Agent) {
		a.temperature = t
	}
}

// WithMaxTokens caps every reply.
func WithMaxTokens(n int) AgentOption {
	return func(a *Agent) {
		a.maxTokens = n
	}
}

// WithTimeouts sets the per-call timeout and the longer report timeout.
// Non-positive values keep the defaults.
func WithTimeouts(call, report time.Duration) AgentOption {
	return func(a *Agent) {
		if call > 0 {
			a.timeout = call
		}
		if report > 0 {
			a.reportTimeout = report
		}
	}
}

// WithAgentLogger sets the logger.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent creates an Agent over client.
func NewAgent(client Client, opts ...AgentOption) *Agent {
	a := &Agent{
		client:        client,
		smartModel:    "gpt-4o",
		fastModel:     "gpt-4o-mini",
		temperature:   0.4,
		timeout:       2 * time.Minute,
		reportTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Call runs the smart model with system as role prompt.
func (a *Agent) Call(ctx context.Context, system, user string) (string, error) {
	return a.complete(ctx, "call", a.smartModel, a.timeout, system, user)
}

// Report runs the smart model under the report timeout.
func (a *Agent) Report(ctx context.Context, system, user string) (string, error) {
	return a.complete(ctx, "report", a.smartModel, a.reportTimeout, system, user)
}

// Summarize runs the fast model.
func (a *Agent) Summarize(ctx context.Context, system, user string) (string, error) {
	return a.complete(ctx, "summarize", a.fastModel, a.timeout, system, user)
}

func (a *Agent) complete(ctx context.Context, op, model string, timeout time.Duration, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	a.logger.Debug("llm request",
		"op", op,
		"provider", a.client.Name(),
		"model", model,
		"prompt_chars", len(user),
	)

	text, err := a.client.Complete(ctx, Request{
		System:      system,
		User:        user,
		Model:       model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		a.logger.Warn("llm request failed",
			"op", op,
			"provider", a.client.Name(),
			"model", model,
			"error", err,
		)
		return "", err
	}

	a.logger.Debug("llm response",
		"op", op,
		"model", model,
		"reply_chars", len(text),
		"elapsed", time.Since(start),
	)
	return text, nil
}
