package search

import (
	"context"
	"net/http"
	"time"

	"github.com/nao1215/researcher/internal/model"
)

// Provider searches the web.
type Provider interface {
	// Search returns at most limit results for query.
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)

	// Name returns the provider name for logging.
	Name() string
}

// Channels are query suffixes that restrict a search to community and
// review sites. The empty suffix keeps the unrestricted query.
var Channels = []string{
	"",
	" site:twitter.com",
	" site:quora.com",
	" site:reddit.com",
	" site:medium.com",
	" site:trustpilot.com",
	" site:sensortower.com",
}

// ExpandChannels returns query once per channel suffix.
func ExpandChannels(query string, channels []string) []string {
	if len(channels) == 0 {
		return []string{query}
	}
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		out = append(out, query+c)
	}
	return out
}

const defaultHTTPTimeout = 30 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func capResults(results []model.SearchResult, limit int) []model.SearchResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
