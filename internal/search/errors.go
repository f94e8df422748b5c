package search

import "errors"

var (
	// ErrMissingAPIKey is returned by providers that need a key when none is set.
	ErrMissingAPIKey = errors.New("search api key not configured")

	// ErrRateLimited is returned when a provider keeps answering 429.
	ErrRateLimited = errors.New("search rate limited")

	// ErrHTTPStatus is returned for unexpected HTTP status codes.
	ErrHTTPStatus = errors.New("unexpected search response status")

	// ErrNoProvider is returned when Fallback has neither provider.
	ErrNoProvider = errors.New("no search provider configured")
)
