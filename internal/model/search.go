package model

// SearchResult is one hit returned by a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// URLs returns the non-empty result URLs in order.
func URLs(results []SearchResult) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Summary is the summarizer output for one page of one query.
type Summary struct {
	Query string `json:"query"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}
