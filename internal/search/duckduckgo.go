package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/researcher/internal/model"
	"golang.org/x/time/rate"
)

// DuckDuckGoEndpoint is the HTML-only DuckDuckGo search page.
const DuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML results page. It needs no API key
// and is rate limited to one request per second.
type DuckDuckGo struct {
	endpoint  string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// DuckDuckGoOption configures DuckDuckGo.
type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoEndpoint overrides the search URL.
func WithDuckDuckGoEndpoint(endpoint string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.endpoint = endpoint
	}
}

// WithDuckDuckGoHTTPClient sets the HTTP client.
func WithDuckDuckGoHTTPClient(c *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.client = c
	}
}

// WithDuckDuckGoRate sets the request rate limit.
func WithDuckDuckGoRate(limit rate.Limit) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.limiter = rate.NewLimiter(limit, 1)
	}
}

// WithDuckDuckGoUserAgent sets the User-Agent header.
func WithDuckDuckGoUserAgent(ua string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.userAgent = ua
	}
}

// NewDuckDuckGo creates a DuckDuckGo provider.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		endpoint:  DuckDuckGoEndpoint,
		client:    defaultHTTPClient(),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		userAgent: "Mozilla/5.0 (compatible; researcher)",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns "duckduckgo".
func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

// Search posts the query form and parses the result list.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: duckduckgo returned %d", ErrHTTPStatus, resp.StatusCode)
	}

	results, err := parseDuckDuckGo(resp.Body)
	if err != nil {
		return nil, err
	}
	return capResults(results, limit), nil
}

// parseDuckDuckGo extracts organic results, skipping ads.
func parseDuckDuckGo(r io.Reader) ([]model.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse: %w", err)
	}

	results := make([]model.SearchResult, 0, 10)
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := unwrapRedirect(href)
		if target == "" {
			return
		}
		results = append(results, model.SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
	})
	return results, nil
}

// unwrapRedirect turns a DuckDuckGo "/l/?uddg=" redirect into its target.
// Only absolute http(s) URLs are returned.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		u, err = url.Parse(target)
		if err != nil {
			return ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
