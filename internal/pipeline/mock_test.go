package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nao1215/researcher/internal/model"
)

// mockLLM answers by matching prompt content.
type mockLLM struct {
	mu         sync.Mutex
	callReply  func(system, user string) (string, error)
	reportErr  error
	summaryErr error
	calls      []string
	summarized []string
	reportUser string
}

func (m *mockLLM) Call(_ context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, user)
	m.mu.Unlock()
	if m.callReply != nil {
		return m.callReply(system, user)
	}
	return "", errors.New("no reply configured")
}

func (m *mockLLM) Report(_ context.Context, _, user string) (string, error) {
	m.mu.Lock()
	m.reportUser = user
	m.mu.Unlock()
	if m.reportErr != nil {
		return "", m.reportErr
	}
	return "  # Report\n\nBody  ", nil
}

func (m *mockLLM) Summarize(_ context.Context, _, user string) (string, error) {
	if m.summaryErr != nil {
		return "", m.summaryErr
	}
	m.mu.Lock()
	m.summarized = append(m.summarized, user)
	m.mu.Unlock()
	// The page text is the first line of the summary prompt.
	first, _, _ := strings.Cut(user, "\n")
	return "summary of " + first, nil
}

// mockSearch returns fixed results per query.
type mockSearch struct {
	mu      sync.Mutex
	results map[string][]model.SearchResult
	err     error
	limits  []int
}

func (m *mockSearch) Search(_ context.Context, query string, limit int) ([]model.SearchResult, error) {
	m.mu.Lock()
	m.limits = append(m.limits, limit)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

func (m *mockSearch) Name() string { return "mock" }

// mockScraper serves page text by URL. Unknown URLs fail.
type mockScraper struct {
	mu      sync.Mutex
	pages   map[string]string
	scraped []string
}

func (m *mockScraper) Scrape(_ context.Context, url string) (*model.Page, error) {
	m.mu.Lock()
	m.scraped = append(m.scraped, url)
	m.mu.Unlock()
	text, ok := m.pages[url]
	if !ok {
		return nil, errors.New("not found: " + url)
	}
	return &model.Page{URL: url, Text: text}, nil
}

// memoryDB is an in-memory SummaryDB.
type memoryDB struct {
	mu        sync.Mutex
	summaries map[string][]model.QuerySummary
	visited   map[string][]string
	deleted   []string
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		summaries: make(map[string][]model.QuerySummary),
		visited:   make(map[string][]string),
	}
}

func (m *memoryDB) SaveSummary(_ context.Context, id, query, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[id] = append(m.summaries[id], model.QuerySummary{Query: query, Summary: summary})
	return nil
}

func (m *memoryDB) GetSummaries(_ context.Context, id string) ([]model.QuerySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaries[id], nil
}

func (m *memoryDB) AddVisited(_ context.Context, id string, urls []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visited[id] = append(m.visited[id], urls...)
	return nil
}

func (m *memoryDB) GetVisited(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visited[id], nil
}

func (m *memoryDB) DeleteResearch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.summaries, id)
	delete(m.visited, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// memoryFiles is an in-memory SummaryFiles.
type memoryFiles struct {
	mu      sync.Mutex
	written map[string][]model.QuerySummary
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{written: make(map[string][]model.QuerySummary)}
}

func (m *memoryFiles) WriteQuerySummary(id, query, summary string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[id] = append(m.written[id], model.QuerySummary{Query: query, Summary: summary})
	return id + "/" + query, nil
}

func (m *memoryFiles) ReadQuerySummaries(id string) ([]model.QuerySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written[id], nil
}

func (m *memoryFiles) RemoveQuerySummaries(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.written, id)
	return nil
}

func results(urls ...string) []model.SearchResult {
	out := make([]model.SearchResult, len(urls))
	for i, u := range urls {
		out[i] = model.SearchResult{Title: u, URL: u}
	}
	return out
}
