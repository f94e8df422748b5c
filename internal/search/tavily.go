package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/researcher/internal/model"
)

// TavilyEndpoint is the Tavily search API URL.
const TavilyEndpoint = "https://api.tavily.com/search"

const (
	tavilyInitialBackoff = time.Second
	tavilyMaxBackoff     = 30 * time.Second
	tavilyMaxRetries     = 3
)

// Tavily searches with the Tavily API.
type Tavily struct {
	apiKey         string
	endpoint       string
	depth          string
	client         *http.Client
	initialBackoff time.Duration
	maxRetries     int
	logger         *slog.Logger
}

// TavilyOption configures Tavily.
type TavilyOption func(*Tavily)

// WithTavilyEndpoint overrides the API URL.
func WithTavilyEndpoint(endpoint string) TavilyOption {
	return func(t *Tavily) {
		t.endpoint = endpoint
	}
}

// WithTavilyHTTPClient sets the HTTP client.
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(t *Tavily) {
		t.client = c
	}
}

// WithTavilyBackoff sets the first 429 backoff delay and retry count.
func WithTavilyBackoff(initial time.Duration, retries int) TavilyOption {
	return func(t *Tavily) {
		t.initialBackoff = initial
		t.maxRetries = retries
	}
}

// WithTavilyLogger sets the logger.
func WithTavilyLogger(logger *slog.Logger) TavilyOption {
	return func(t *Tavily) {
		t.logger = logger
	}
}

// NewTavily creates a Tavily provider using the "advanced" search depth.
func NewTavily(apiKey string, opts ...TavilyOption) *Tavily {
	t := &Tavily{
		apiKey:         apiKey,
		endpoint:       TavilyEndpoint,
		depth:          "advanced",
		client:         defaultHTTPClient(),
		initialBackoff: tavilyInitialBackoff,
		maxRetries:     tavilyMaxRetries,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns "tavily".
func (t *Tavily) Name() string {
	return "tavily"
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search queries Tavily. A 429 answer is retried with exponential backoff
// starting at one second and capped at thirty.
func (t *Tavily) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if t.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.apiKey,
		Query:       query,
		SearchDepth: t.depth,
		MaxResults:  limit,
	})
	if err != nil {
		return nil, err
	}

	backoff := t.initialBackoff
	for attempt := 0; ; attempt++ {
		resp, err := t.do(ctx, body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if attempt >= t.maxRetries {
				return nil, ErrRateLimited
			}
			t.logger.Debug("tavily rate limited", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff = min(backoff*2, tavilyMaxBackoff)
			continue
		}

		return t.decode(resp, limit)
	}
}

func (t *Tavily) do(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	return resp, nil
}

func (t *Tavily) decode(resp *http.Response, limit int) ([]model.SearchResult, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: tavily returned %d", ErrHTTPStatus, resp.StatusCode)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("tavily decode: %w", err)
	}

	results := make([]model.SearchResult, 0, len(tr.Results))
	for _, r := range tr.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, model.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return capResults(results, limit), nil
}
