package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/researcher/internal/model"
	"golang.org/x/sync/errgroup"
)

// ResearchFactory creates the initial state for a question.
type ResearchFactory func(question string) *model.Research

// BatchProcessor researches several questions concurrently.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	newResearch     ResearchFactory
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the number of questions researched at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called once
// per question so steps never share state between questions.
func NewBatchProcessor(pipelineFactory func() *Pipeline, newResearch ResearchFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		newResearch:     newResearch,
		concurrency:     2,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch researches every question and returns the results in input
// order. Per-question failures are recorded in each Research. The error is
// non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, questions []string) ([]*model.Research, error) {
	results := make([]*model.Research, len(questions))
	var mu sync.Mutex

	err := bp.ProcessBatchWithCallback(ctx, questions, func(r *model.Research, index int) {
		mu.Lock()
		results[index] = r
		mu.Unlock()
	})
	return results, err
}

// ProcessBatchWithCallback researches every question and calls callback as
// each one finishes. callback may be called concurrently.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	questions []string,
	callback func(r *model.Research, index int),
) error {
	bp.logger.Info("starting batch research",
		"total_questions", len(questions),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, question := range questions {
		g.Go(func() error {
			r := bp.newResearch(question)

			if err := ctx.Err(); err != nil {
				r.TimedOut = true
				r.Error = err
				r.ErrorMessage = err.Error()
				callback(r, i)
				return nil
			}

			bp.logger.Info("researching question",
				"question", question,
				"index", i+1,
				"total", len(questions),
			)

			if err := bp.pipelineFactory().Execute(ctx, r); err != nil {
				bp.logger.Warn("research failed",
					"question", question,
					"error", err,
				)
			} else {
				bp.logger.Info("research completed",
					"question", question,
					"words", r.WordCount(),
				)
			}

			callback(r, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	bp.logger.Info("batch research complete",
		"total_questions", len(questions),
		"elapsed", time.Since(startTime),
	)

	return ctx.Err()
}
