package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>  Solar   Power </title><style>body{color:red}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<header>Site header</header>
<main>
<h1>Solar power in 2024</h1>
<p>Solar capacity grew by a third.</p>
<ul><li><p>Panels got cheaper.</p></li></ul>
<p>See <a href="/report">the report</a>.</p>
<script>alert("x")</script>
</main>
<footer>Copyright</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("collects content and drops chrome", func(t *testing.T) {
		t.Parallel()

		base, _ := url.Parse("https://example.com/article")
		c, err := Extract([]byte(articleHTML), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if c.Title != "Solar Power" {
			t.Errorf("expected title %q, got %q", "Solar Power", c.Title)
		}

		for _, want := range []string{"Solar power in 2024", "Solar capacity grew by a third.", "Panels got cheaper."} {
			if !strings.Contains(c.Text, want) {
				t.Errorf("expected text to contain %q, got %q", want, c.Text)
			}
		}
		for _, unwanted := range []string{"Site header", "Copyright", "alert", "Home", "color:red"} {
			if strings.Contains(c.Text, unwanted) {
				t.Errorf("expected text not to contain %q, got %q", unwanted, c.Text)
			}
		}
		if strings.Count(c.Text, "Panels got cheaper.") != 1 {
			t.Errorf("expected nested paragraph once, got %q", c.Text)
		}

		if !strings.Contains(c.Markdown, "# Solar power in 2024") {
			t.Errorf("expected markdown heading, got %q", c.Markdown)
		}
		if !strings.Contains(c.Markdown, "https://example.com/report") {
			t.Errorf("expected absolute link in markdown, got %q", c.Markdown)
		}
	})

	t.Run("falls back to body text", func(t *testing.T) {
		t.Parallel()

		c, err := Extract([]byte(`<html><body><div>Just a div</div></body></html>`), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Text != "Just a div" {
			t.Errorf("expected body fallback, got %q", c.Text)
		}
	})
}

func TestScraperScrape(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			http.Error(w, "bad agent", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  plain   text\nbody "))
	})
	mux.HandleFunc("/long", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50})
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><script>x()</script></body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/unlabeled", func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<html><head><title>Unlabeled</title></head><body><p>Hello research</p></body></html>"))
	})
	mux.HandleFunc("/unlabeled-binary", func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := New(srv.Client(), WithUserAgent("test-agent"), WithMaxTextChars(10))

	t.Run("html page", func(t *testing.T) {
		t.Parallel()

		full := New(srv.Client(), WithUserAgent("test-agent"), WithMaxTextChars(0))
		page, err := full.Scrape(context.Background(), srv.URL+"/article")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Title != "Solar Power" {
			t.Errorf("expected title, got %q", page.Title)
		}
		if page.ContentType != "text/html" {
			t.Errorf("expected text/html, got %q", page.ContentType)
		}
		if page.Hash == "" {
			t.Error("expected hash to be computed")
		}
		if !strings.Contains(page.Text, "Solar capacity") {
			t.Errorf("unexpected text %q", page.Text)
		}
	})

	t.Run("plain text passes through", func(t *testing.T) {
		t.Parallel()

		full := New(srv.Client())
		page, err := full.Scrape(context.Background(), srv.URL+"/plain")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Text != "plain text body" {
			t.Errorf("expected normalized text, got %q", page.Text)
		}
	})

	t.Run("sniffs html without content type", func(t *testing.T) {
		t.Parallel()

		full := New(srv.Client(), WithMaxTextChars(0))
		page, err := full.Scrape(context.Background(), srv.URL+"/unlabeled")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.ContentType != "text/html" {
			t.Errorf("expected sniffed text/html, got %q", page.ContentType)
		}
		if page.Title != "Unlabeled" {
			t.Errorf("expected title, got %q", page.Title)
		}
		if !strings.Contains(page.Text, "Hello research") {
			t.Errorf("unexpected text %q", page.Text)
		}
	})

	t.Run("truncates text", func(t *testing.T) {
		t.Parallel()

		page, err := s.Scrape(context.Background(), srv.URL+"/long")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Text) != 10 {
			t.Errorf("expected 10 chars, got %d", len(page.Text))
		}
	})

	t.Run("limits body size", func(t *testing.T) {
		t.Parallel()

		small := New(srv.Client(), WithMaxBodySize(20), WithMaxTextChars(0))
		page, err := small.Scrape(context.Background(), srv.URL+"/long")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Raw) != 20 {
			t.Errorf("expected 20 bytes read, got %d", len(page.Raw))
		}
	})

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "not found", url: srv.URL + "/missing", wantErr: ErrHTTPStatus},
		{name: "binary content", url: srv.URL + "/image", wantErr: ErrUnsupportedContent},
		{name: "unlabeled binary content", url: srv.URL + "/unlabeled-binary", wantErr: ErrUnsupportedContent},
		{name: "no readable text", url: srv.URL + "/empty", wantErr: ErrEmptyContent},
		{name: "unsupported scheme", url: "ftp://example.com/file", wantErr: ErrInvalidURL},
		{name: "relative url", url: "/article", wantErr: ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := s.Scrape(context.Background(), tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := s.Scrape(ctx, srv.URL+"/plain"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
