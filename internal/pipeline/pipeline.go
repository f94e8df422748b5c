package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/researcher/internal/model"
)

// Step is a single stage of a research run.
//
// Steps run in sequence against the same *model.Research, so each step sees
// the agent, queries and summaries left by the steps before it.
//
// Design decision: Step is an interface rather than a function type so a
// step can carry its collaborators (LLM, search provider, store) and report
// a stable Name() for logs and PerformedSteps.
type Step interface {
	// Do performs the step and updates r. A returned error marks the run as
	// failed. Degraded failures are recorded in r instead.
	Do(ctx context.Context, r *model.Research) error

	// Name returns the step name used in logs and PerformedSteps.
	Name() string
}

// Pipeline executes steps in order against one research.
//
// A Pipeline holds no per-research state. Everything a run produces is
// written to the *model.Research passed to Execute, and BatchProcessor
// builds one Pipeline per question.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running the remaining steps after a step fails.
// The error is still recorded in the research.
//
// Design decision: the built-in steps record degraded failures and return
// nil, so with them only cancellation ends a run early. The option matters
// for steps added with AddStep that return errors.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against r. Cancellation is checked before each
// step and marks r as timed out.
func (p *Pipeline) Execute(ctx context.Context, r *model.Research) error {
	defer func() { r.CompletedAt = time.Now() }()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			r.TimedOut = true
			return err
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"question", r.Question,
		)

		if err := step.Do(ctx, r); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"question", r.Question,
				"error", err,
			)

			r.Error = err
			r.ErrorMessage = err.Error()
			if ctx.Err() != nil {
				r.TimedOut = true
			}

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"question", r.Question,
			)
		}

		r.PerformedSteps = append(r.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
