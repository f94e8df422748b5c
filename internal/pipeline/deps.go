package pipeline

import (
	"context"

	"github.com/nao1215/researcher/internal/model"
)

// LLM is the model access the steps need. llm.Agent implements it.
type LLM interface {
	// Call runs the smart model.
	Call(ctx context.Context, system, user string) (string, error)

	// Report runs the smart model under the longer report timeout.
	Report(ctx context.Context, system, user string) (string, error)

	// Summarize runs the fast model.
	Summarize(ctx context.Context, system, user string) (string, error)
}

// Scraper fetches a page. scraper.Scraper implements it.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*model.Page, error)
}

// SummaryDB persists query summaries and visited URLs.
// database.ResearchDB implements it.
type SummaryDB interface {
	SaveSummary(ctx context.Context, researchID, query, summary string) error
	GetSummaries(ctx context.Context, researchID string) ([]model.QuerySummary, error)
	AddVisited(ctx context.Context, researchID string, urls []string) error
	GetVisited(ctx context.Context, researchID string) ([]string, error)
	DeleteResearch(ctx context.Context, researchID string) error
}

// SummaryFiles keeps query summaries as files in the output directory.
// report.Store implements it.
type SummaryFiles interface {
	WriteQuerySummary(researchID, query, summary string) (string, error)
	ReadQuerySummaries(researchID string) ([]model.QuerySummary, error)
	RemoveQuerySummaries(researchID string) error
}
