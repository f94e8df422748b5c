package pipeline

import (
	"github.com/nao1215/researcher/internal/prompt"
	"github.com/nao1215/researcher/internal/search"
)

// Deps are the collaborators of the default steps. DB and Files are optional.
type Deps struct {
	LLM     LLM
	Search  search.Provider
	Scraper Scraper
	Roles   *prompt.Roles
	DB      SummaryDB
	Files   SummaryFiles
}

// Settings tune the default steps.
type Settings struct {
	NumQueries   int
	MaxResults   int
	Concurrency  int
	Channels     bool
	NoCache      bool
	Lessons      bool
	TotalWords   int
	ReportFormat string
}

// DefaultPipeline assembles agent, cache, queries, search and report, plus
// concepts and lessons when enabled.
func DefaultPipeline(deps Deps, settings Settings, opts ...Option) *Pipeline {
	p := New(opts...)
	logger := p.logger

	var channels []string
	if settings.Channels {
		channels = search.Channels
	}

	searchOpts := []SearchStepOption{
		WithMaxResults(settings.MaxResults),
		WithScrapeConcurrency(settings.Concurrency),
		WithSearchLogger(logger),
	}
	if deps.DB != nil {
		searchOpts = append(searchOpts, WithSummaryDB(deps.DB))
	}
	if deps.Files != nil {
		searchOpts = append(searchOpts, WithSummaryFiles(deps.Files))
	}

	p.AddSteps(
		NewAgentStep(deps.LLM, deps.Roles, logger),
		NewCacheStep(deps.DB, deps.Files, settings.NoCache, logger),
		NewQueryStep(deps.LLM, settings.NumQueries, channels, logger),
		NewSearchStep(deps.Search, deps.Scraper, deps.LLM, searchOpts...),
		NewReportStep(deps.LLM, settings.TotalWords, settings.ReportFormat, logger),
	)

	if settings.Lessons {
		p.AddSteps(
			NewConceptsStep(deps.LLM, logger),
			NewLessonsStep(deps.LLM, settings.Concurrency, logger),
		)
	}

	return p
}
