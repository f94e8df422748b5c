package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/researcher/internal/model"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	defaultMaxBodySize  = 5 * 1024 * 1024
	defaultMaxTextChars = 8000
)

// Scraper fetches pages over a caller-supplied HTTP client, which decides
// whether requests go direct, through a proxy or through Tor.
type Scraper struct {
	client       *http.Client
	userAgent    string
	maxBodySize  int64
	maxTextChars int
	logger       *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBodySize limits the bytes read from a response.
func WithMaxBodySize(size int64) Option {
	return func(s *Scraper) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithMaxTextChars limits the extracted text. Zero disables truncation.
func WithMaxTextChars(n int) Option {
	return func(s *Scraper) {
		s.maxTextChars = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// New creates a Scraper. A nil client uses http.DefaultClient.
func New(client *http.Client, opts ...Option) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	s := &Scraper{
		client:       client,
		userAgent:    defaultUserAgent,
		maxBodySize:  defaultMaxBodySize,
		maxTextChars: defaultMaxTextChars,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches rawURL and extracts its readable content.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*model.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrHTTPStatus, resp.StatusCode, rawURL)
	}

	page := &model.Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: model.MediaType(resp.Header.Get("Content-Type")),
		FetchedAt:   time.Now(),
	}
	if page.ContentType != "" && !page.IsHTML() && !page.IsText() {
		return nil, fmt.Errorf("%w: %q from %s", ErrUnsupportedContent, page.ContentType, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}

	// Servers that omit Content-Type get the type sniffed from the body.
	if page.ContentType == "" {
		page.ContentType = model.MediaType(http.DetectContentType(body))
		if !page.IsHTML() && !page.IsText() {
			return nil, fmt.Errorf("%w: %q from %s", ErrUnsupportedContent, page.ContentType, rawURL)
		}
	}
	page.Raw = body
	page.ComputeHash()

	if page.IsHTML() {
		content, err := Extract(body, u)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
		}
		page.Title = content.Title
		page.Text = content.Text
		page.Markdown = content.Markdown
	} else {
		page.Text = normalizeSpace(string(body))
	}

	if page.Text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, rawURL)
	}
	page.TruncateText(s.maxTextChars)

	s.logger.Debug("scraped page",
		"url", rawURL,
		"bytes", len(body),
		"chars", len([]rune(page.Text)))

	return page, nil
}
