package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/researcher/internal/llm"
	"github.com/nao1215/researcher/internal/model"
	"github.com/nao1215/researcher/internal/prompt"
	"github.com/nao1215/researcher/internal/search"
)

// Step names.
const (
	StepAgent    = "agent"
	StepCache    = "cache"
	StepQueries  = "queries"
	StepSearch   = "search"
	StepReport   = "report"
	StepConcepts = "concepts"
	StepLessons  = "lessons"
)

const maxConcepts = 5

// AgentStep picks the agent and its role prompt. With no agent or "auto"
// the model chooses; otherwise the named agent's role prompt is used.
type AgentStep struct {
	llm    LLM
	roles  *prompt.Roles
	logger *slog.Logger
}

// NewAgentStep creates an AgentStep.
func NewAgentStep(client LLM, roles *prompt.Roles, logger *slog.Logger) *AgentStep {
	if roles == nil {
		roles = prompt.NewRoles(nil)
	}
	return &AgentStep{llm: client, roles: roles, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *AgentStep) Name() string { return StepAgent }

// Do sets r.Agent and r.RolePrompt.
func (s *AgentStep) Do(ctx context.Context, r *model.Research) error {
	if r.Agent != "" && !strings.EqualFold(r.Agent, prompt.AutoAgentName) {
		r.Agent = prompt.NormalizeAgentName(r.Agent)
		r.RolePrompt = s.roles.RolePrompt(r.Agent, r.Language)
		return nil
	}

	reply, err := s.llm.Call(ctx, "", prompt.AutoAgent(r.Question, s.roles.Names()))
	if err == nil {
		var choice llm.AgentChoice
		if choice, err = llm.ParseAgentChoice(reply); err == nil {
			r.Agent = prompt.NormalizeAgentName(choice.Name())
			if s.roles.Known(r.Agent) {
				r.RolePrompt = s.roles.RolePrompt(r.Agent, r.Language)
			} else {
				r.RolePrompt = fmt.Sprintf("%s All answers must be in %s.",
					strings.TrimSpace(choice.RolePrompt), prompt.LanguageName(r.Language))
			}
			s.logger.Info("agent selected", "agent", r.Agent)
			return nil
		}
	}

	r.RecordError(StepAgent, err)
	r.Agent = prompt.DefaultAgent
	r.RolePrompt = s.roles.RolePrompt(prompt.DefaultAgent, r.Language)
	s.logger.Warn("agent selection failed, using default agent", "error", err)
	return nil
}

// CacheStep restores the summaries of an earlier run of the same question.
// With noCache set it discards them instead.
type CacheStep struct {
	db      SummaryDB
	files   SummaryFiles
	noCache bool
	logger  *slog.Logger
}

// NewCacheStep creates a CacheStep. db and files may be nil.
func NewCacheStep(db SummaryDB, files SummaryFiles, noCache bool, logger *slog.Logger) *CacheStep {
	return &CacheStep{db: db, files: files, noCache: noCache, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *CacheStep) Name() string { return StepCache }

// Do loads cached summaries into r and marks it FromCache.
func (s *CacheStep) Do(ctx context.Context, r *model.Research) error {
	if s.noCache {
		s.discard(ctx, r)
		return nil
	}

	var summaries []model.QuerySummary
	if s.db != nil {
		cached, err := s.db.GetSummaries(ctx, r.ID)
		if err != nil {
			r.RecordError(StepCache, err)
		}
		summaries = cached
	}
	if len(summaries) == 0 && s.files != nil {
		cached, err := s.files.ReadQuerySummaries(r.ID)
		if err != nil {
			r.RecordError(StepCache, err)
		}
		summaries = cached
	}
	if len(summaries) == 0 {
		return nil
	}

	r.FromCache = true
	for _, qs := range summaries {
		r.Queries = append(r.Queries, qs.Query)
		r.AddSummary(qs.Query, qs.Summary)
	}
	if s.db != nil {
		urls, err := s.db.GetVisited(ctx, r.ID)
		if err != nil {
			r.RecordError(StepCache, err)
		}
		r.Visited.AddNew(urls)
	}

	s.logger.Info("loaded research from cache",
		"research_id", r.ID,
		"queries", len(summaries),
		"sources", r.Visited.Len(),
	)
	return nil
}

func (s *CacheStep) discard(ctx context.Context, r *model.Research) {
	if s.db != nil {
		if err := s.db.DeleteResearch(ctx, r.ID); err != nil {
			r.RecordError(StepCache, err)
		}
	}
	if s.files != nil {
		if err := s.files.RemoveQuerySummaries(r.ID); err != nil {
			r.RecordError(StepCache, err)
		}
	}
	s.logger.Debug("discarded cached research", "research_id", r.ID)
}

// QueryStep generates the search queries with one model call. When the
// reply cannot be parsed the question itself is the only query.
type QueryStep struct {
	llm        LLM
	numQueries int
	channels   []string
	logger     *slog.Logger
}

// NewQueryStep creates a QueryStep. A non-empty channels list expands each
// query with site-restricted variants.
func NewQueryStep(client LLM, numQueries int, channels []string, logger *slog.Logger) *QueryStep {
	if numQueries <= 0 {
		numQueries = prompt.DefaultNumQueries
	}
	return &QueryStep{llm: client, numQueries: numQueries, channels: channels, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *QueryStep) Name() string { return StepQueries }

// Do sets r.Queries. It is skipped for cached research.
func (s *QueryStep) Do(ctx context.Context, r *model.Research) error {
	if r.FromCache {
		return nil
	}

	queries := []string{r.Question}
	reply, err := s.llm.Call(ctx, r.RolePrompt, prompt.SearchQueries(r.Question, s.numQueries))
	if err == nil {
		var parsed []string
		if parsed, err = llm.ParseStringList(reply); err == nil && len(parsed) > 0 {
			queries = parsed
		}
	}
	if err != nil {
		r.RecordError(StepQueries, err)
	}

	if len(queries) > s.numQueries {
		queries = queries[:s.numQueries]
	}

	if len(s.channels) > 0 {
		expanded := make([]string, 0, len(queries)*len(s.channels))
		for _, q := range queries {
			expanded = append(expanded, search.ExpandChannels(q, s.channels)...)
		}
		queries = expanded
	}

	r.Queries = queries
	s.logger.Info("generated search queries", "queries", queries)
	return nil
}

// SearchStep searches every query, scrapes and summarizes the URLs not yet
// visited, and appends one aggregated summary per query.
//
// Queries run one after another so that a URL found by an earlier query is
// never fetched again for a later one. Within a query, pages are scraped and
// summarized in parallel, bounded by WithScrapeConcurrency.
//
// Failures degrade instead of aborting: a failed search counts as no
// results, and a page that cannot be scraped or summarized contributes an
// empty summary. Only cancellation stops the step.
type SearchStep struct {
	search      search.Provider
	scraper     Scraper
	llm         LLM
	db          SummaryDB
	files       SummaryFiles
	maxResults  int
	concurrency int
	logger      *slog.Logger
}

// SearchStepOption configures SearchStep.
type SearchStepOption func(*SearchStep)

// WithSummaryDB persists summaries and visited URLs.
func WithSummaryDB(db SummaryDB) SearchStepOption {
	return func(s *SearchStep) {
		s.db = db
	}
}

// WithSummaryFiles writes each query summary to the output directory.
func WithSummaryFiles(files SummaryFiles) SearchStepOption {
	return func(s *SearchStep) {
		s.files = files
	}
}

// WithMaxResults caps the results taken from one search.
func WithMaxResults(n int) SearchStepOption {
	return func(s *SearchStep) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithScrapeConcurrency bounds the pages processed at once.
func WithScrapeConcurrency(n int) SearchStepOption {
	return func(s *SearchStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(logger *slog.Logger) SearchStepOption {
	return func(s *SearchStep) {
		s.logger = logger
	}
}

// NewSearchStep creates a SearchStep.
func NewSearchStep(provider search.Provider, scraper Scraper, client LLM, opts ...SearchStepOption) *SearchStep {
	s := &SearchStep{
		search:      provider,
		scraper:     scraper,
		llm:         client,
		maxResults:  7,
		concurrency: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = orDefault(s.logger)
	return s
}

// Name returns the step name.
func (s *SearchStep) Name() string { return StepSearch }

// Do runs every query in order. It is skipped for cached research.
func (s *SearchStep) Do(ctx context.Context, r *model.Research) error {
	if r.FromCache {
		return nil
	}

	for _, query := range r.Queries {
		if err := ctx.Err(); err != nil {
			r.TimedOut = true
			return err
		}
		s.runQuery(ctx, r, query)
	}

	s.logger.Info("total research words", "words", r.WordCount())
	return nil
}

func (s *SearchStep) runQuery(ctx context.Context, r *model.Research, query string) {
	s.logger.Info("running research for query", "query", query)

	results, err := s.search.Search(ctx, query, s.maxResults)
	if err != nil {
		r.RecordError(StepSearch, fmt.Errorf("%s: %w", query, err))
		results = nil
	}

	newURLs := r.Visited.AddNew(model.URLs(results))
	for _, u := range newURLs {
		s.logger.Info("adding source url to research", "url", u)
	}
	if s.db != nil && len(newURLs) > 0 {
		if err := s.db.AddVisited(ctx, r.ID, newURLs); err != nil {
			r.RecordError(StepSearch, err)
		}
	}

	pages := s.summarizeAll(ctx, r, query, newURLs)

	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	joined := strings.Join(texts, "\n")
	r.AddSummary(query, joined)

	if joined == "" {
		return
	}
	if s.db != nil {
		if err := s.db.SaveSummary(ctx, r.ID, query, joined); err != nil {
			r.RecordError(StepSearch, err)
		}
	}
	if s.files != nil {
		if _, err := s.files.WriteQuerySummary(r.ID, query, joined); err != nil {
			r.RecordError(StepSearch, err)
		}
	}
}

// summarizeAll scrapes and summarizes urls concurrently and returns the
// summaries in url order. Failed pages yield empty summaries.
func (s *SearchStep) summarizeAll(ctx context.Context, r *model.Research, query string, urls []string) []model.Summary {
	summaries := make([]model.Summary, len(urls))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			summaries[i] = model.Summary{Query: query, URL: u}

			text, err := s.summarize(ctx, r.RolePrompt, query, u)
			if err != nil {
				s.logger.Debug("skipping source", "url", u, "error", err)
				mu.Lock()
				r.RecordError(StepSearch, err)
				mu.Unlock()
				return nil
			}
			summaries[i].Text = text
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	return summaries
}

func (s *SearchStep) summarize(ctx context.Context, rolePrompt, query, url string) (string, error) {
	page, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		return "", err
	}
	text, err := s.llm.Summarize(ctx, rolePrompt, prompt.Summary(query, page.Text))
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", url, err)
	}
	return strings.TrimSpace(text), nil
}

// ReportStep writes the report with one smart-model call.
type ReportStep struct {
	llm        LLM
	totalWords int
	format     string
	logger     *slog.Logger
}

// NewReportStep creates a ReportStep. Zero values use the prompt defaults.
func NewReportStep(client LLM, totalWords int, format string, logger *slog.Logger) *ReportStep {
	return &ReportStep{llm: client, totalWords: totalWords, format: format, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *ReportStep) Name() string { return StepReport }

// Do sets r.Report. A failed model call leaves the report empty.
func (s *ReportStep) Do(ctx context.Context, r *model.Research) error {
	p, err := prompt.ReportPrompt(r.ReportType, prompt.Params{
		Question:   r.Question,
		Context:    r.Summary,
		Format:     s.format,
		TotalWords: s.totalWords,
		Language:   r.Language,
	})
	if err != nil {
		return err
	}

	s.logger.Info("writing report", "report_type", r.ReportType, "question", r.Question)

	report, err := s.llm.Report(ctx, r.RolePrompt, p)
	if err != nil {
		r.RecordError(StepReport, err)
		r.Report = ""
		return ctx.Err()
	}
	r.Report = strings.TrimSpace(report)
	return nil
}

// ConceptsStep extracts the main concepts of the research.
type ConceptsStep struct {
	llm    LLM
	logger *slog.Logger
}

// NewConceptsStep creates a ConceptsStep.
func NewConceptsStep(client LLM, logger *slog.Logger) *ConceptsStep {
	return &ConceptsStep{llm: client, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *ConceptsStep) Name() string { return StepConcepts }

// Do sets r.Concepts.
func (s *ConceptsStep) Do(ctx context.Context, r *model.Research) error {
	reply, err := s.llm.Call(ctx, r.RolePrompt, prompt.Concepts(r.Question, r.Summary))
	if err != nil {
		r.RecordError(StepConcepts, err)
		return nil
	}
	concepts, err := llm.ParseStringList(reply)
	if err != nil {
		r.RecordError(StepConcepts, err)
		return nil
	}
	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}
	r.Concepts = concepts
	s.logger.Info("extracted concepts", "concepts", concepts)
	return nil
}

// LessonsStep writes one lesson per concept.
type LessonsStep struct {
	llm         LLM
	concurrency int
	logger      *slog.Logger
}

// NewLessonsStep creates a LessonsStep.
func NewLessonsStep(client LLM, concurrency int, logger *slog.Logger) *LessonsStep {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &LessonsStep{llm: client, concurrency: concurrency, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *LessonsStep) Name() string { return StepLessons }

// Do fills r.Lessons for every concept.
func (s *LessonsStep) Do(ctx context.Context, r *model.Research) error {
	if len(r.Concepts) == 0 {
		return nil
	}

	lessons := make(map[string]string, len(r.Concepts))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, concept := range r.Concepts {
		g.Go(func() error {
			text, err := s.llm.Call(ctx, r.RolePrompt, prompt.Lesson(concept))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.RecordError(StepLessons, fmt.Errorf("%s: %w", concept, err))
				return nil
			}
			lessons[concept] = strings.TrimSpace(text)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	r.Lessons = lessons
	s.logger.Info("generated lessons", "count", len(lessons))
	return nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
