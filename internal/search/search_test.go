package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/researcher/internal/model"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// stubProvider returns fixed results or an error and counts calls.
type stubProvider struct {
	name    string
	results []model.SearchResult
	err     error
	calls   atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, _ string, limit int) ([]model.SearchResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return capResults(s.results, limit), nil
}

func results(n int) []model.SearchResult {
	out := make([]model.SearchResult, n)
	for i := range out {
		out[i] = model.SearchResult{Title: fmt.Sprintf("r%d", i), URL: fmt.Sprintf("https://example.com/%d", i)}
	}
	return out
}

func TestExpandChannels(t *testing.T) {
	t.Parallel()

	got := ExpandChannels("go generics", Channels)
	if len(got) != len(Channels) {
		t.Fatalf("expected %d queries, got %d", len(Channels), len(got))
	}
	if got[0] != "go generics" || got[3] != "go generics site:reddit.com" {
		t.Errorf("unexpected expansion %v", got)
	}
	if got := ExpandChannels("q", nil); len(got) != 1 || got[0] != "q" {
		t.Errorf("expected query unchanged without channels, got %v", got)
	}
}

func TestTavilySearch(t *testing.T) {
	t.Parallel()

	t.Run("posts query and caps results", func(t *testing.T) {
		t.Parallel()

		var got tavilyRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"results":[
				{"title":"A","url":"https://a.example","content":"alpha"},
				{"title":"no url","url":""},
				{"title":"B","url":"https://b.example","content":"beta"},
				{"title":"C","url":"https://c.example","content":"gamma"}]}`)
		}))
		defer server.Close()

		tv := NewTavily("tvly-key", WithTavilyEndpoint(server.URL))
		res, err := tv.Search(context.Background(), "solar power", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res) != 2 || res[0].URL != "https://a.example" || res[1].Snippet != "beta" {
			t.Errorf("unexpected results %+v", res)
		}
		if got.Query != "solar power" || got.SearchDepth != "advanced" || got.MaxResults != 2 || got.APIKey != "tvly-key" {
			t.Errorf("unexpected request %+v", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		_, err := NewTavily("").Search(context.Background(), "q", 5)
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("retries on 429", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = io.WriteString(w, `{"results":[{"title":"A","url":"https://a.example"}]}`)
		}))
		defer server.Close()

		tv := NewTavily("k", WithTavilyEndpoint(server.URL), WithTavilyBackoff(time.Millisecond, 3))
		res, err := tv.Search(context.Background(), "q", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res) != 1 || calls.Load() != 3 {
			t.Errorf("expected 1 result after 3 calls, got %d results after %d calls", len(res), calls.Load())
		}
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		tv := NewTavily("k", WithTavilyEndpoint(server.URL), WithTavilyBackoff(time.Millisecond, 2))
		if _, err := tv.Search(context.Background(), "q", 5); !errors.Is(err, ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		tv := NewTavily("k", WithTavilyEndpoint(server.URL))
		if _, err := tv.Search(context.Background(), "q", 5); !errors.Is(err, ErrHTTPStatus) {
			t.Errorf("expected ErrHTTPStatus, got %v", err)
		}
	})
}

const duckduckgoHTML = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="https://ads.example/">Ad</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">Go <b>Docs</b></a></h2>
  <a class="result__snippet">The Go programming language documentation.</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://pkg.go.dev/">Packages</a>
  <div class="result__snippet">Find Go packages.</div>
</div>
<div class="result results_links">
  <a class="result__a" href="javascript:void(0)">Broken</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://third.example/">Third</a>
</div>
</body></html>`

func TestParseDuckDuckGo(t *testing.T) {
	t.Parallel()

	res, err := parseDuckDuckGo(strings.NewReader(duckduckgoHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("expected 3 organic results, got %d: %+v", len(res), res)
	}
	if res[0].URL != "https://go.dev/doc/" || res[0].Title != "Go Docs" {
		t.Errorf("unexpected first result %+v", res[0])
	}
	if res[0].Snippet != "The Go programming language documentation." {
		t.Errorf("unexpected snippet %q", res[0].Snippet)
	}
	if res[1].URL != "https://pkg.go.dev/" {
		t.Errorf("unexpected second result %+v", res[1])
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	t.Parallel()

	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		query = r.PostForm.Get("q")
		_, _ = io.WriteString(w, duckduckgoHTML)
	}))
	defer server.Close()

	ddg := NewDuckDuckGo(WithDuckDuckGoEndpoint(server.URL), WithDuckDuckGoRate(rate.Inf))
	res, err := ddg.Search(context.Background(), "golang docs", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("expected results capped at 2, got %d", len(res))
	}
	if query != "golang docs" {
		t.Errorf("expected form query 'golang docs', got %q", query)
	}
}

func TestUnwrapRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa", want: "https://example.com/a"},
		{in: "https://example.com/b", want: "https://example.com/b"},
		{in: "/relative", want: ""},
		{in: "mailto:a@example.com", want: ""},
	}

	for _, tt := range tests {
		if got := unwrapRedirect(tt.in); got != tt.want {
			t.Errorf("unwrapRedirect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	t.Run("uses primary when it has results", func(t *testing.T) {
		t.Parallel()
		primary := &stubProvider{name: "p", results: results(3)}
		secondary := &stubProvider{name: "s", results: results(1)}

		res, err := NewFallback(primary, secondary).Search(context.Background(), "q", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res) != 2 || secondary.calls.Load() != 0 {
			t.Errorf("expected 2 primary results, got %d (secondary calls %d)", len(res), secondary.calls.Load())
		}
	})

	t.Run("falls back on error", func(t *testing.T) {
		t.Parallel()
		primary := &stubProvider{name: "p", err: errors.New("down")}
		secondary := &stubProvider{name: "s", results: results(1)}

		res, err := NewFallback(primary, secondary).Search(context.Background(), "q", 5)
		if err != nil || len(res) != 1 {
			t.Errorf("expected secondary result, got %v, %v", res, err)
		}
	})

	t.Run("falls back on empty results", func(t *testing.T) {
		t.Parallel()
		primary := &stubProvider{name: "p"}
		secondary := &stubProvider{name: "s", results: results(2)}

		res, _ := NewFallback(primary, secondary).Search(context.Background(), "q", 5)
		if len(res) != 2 {
			t.Errorf("expected 2 secondary results, got %d", len(res))
		}
	})

	t.Run("breaker stops calling a failing primary", func(t *testing.T) {
		t.Parallel()
		primary := &stubProvider{name: "p", err: errors.New("down")}
		secondary := &stubProvider{name: "s", results: results(1)}
		f := NewFallback(primary, secondary, WithBreaker(2, time.Hour))

		for range 5 {
			_, _ = f.Search(context.Background(), "q", 5)
		}
		if primary.calls.Load() != 2 {
			t.Errorf("expected primary to be called twice before tripping, got %d", primary.calls.Load())
		}
		if secondary.calls.Load() != 5 {
			t.Errorf("expected secondary to serve all 5 searches, got %d", secondary.calls.Load())
		}
		if f.State() != gobreaker.StateOpen {
			t.Errorf("expected open breaker, got %s", f.State())
		}
	})

	t.Run("primary error without secondary is returned", func(t *testing.T) {
		t.Parallel()
		primary := &stubProvider{name: "p", err: errors.New("down")}
		if _, err := NewFallback(primary, nil).Search(context.Background(), "q", 5); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("no providers", func(t *testing.T) {
		t.Parallel()
		if _, err := NewFallback(nil, nil).Search(context.Background(), "q", 5); !errors.Is(err, ErrNoProvider) {
			t.Errorf("expected ErrNoProvider, got %v", err)
		}
	})
}
