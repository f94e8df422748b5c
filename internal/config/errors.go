package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoQuestion is returned when no research question is given.
	ErrNoQuestion = errors.New("no question specified: provide a question or use --questions-file")

	// ErrUnknownReportType is returned when the report type has no prompt.
	ErrUnknownReportType = errors.New("unknown report type")

	// ErrUnknownProvider is returned when the LLM provider is not supported.
	ErrUnknownProvider = errors.New("unknown llm provider: must be openai, anthropic or gemini")

	// ErrUnknownSearchProvider is returned when the search provider is not supported.
	ErrUnknownSearchProvider = errors.New("unknown search provider: must be tavily or duckduckgo")

	// ErrUnknownFormat is returned when an output format is not supported.
	ErrUnknownFormat = errors.New("unknown output format: must be md, txt or json")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxResults is returned when the search result cap is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrInvalidNumQueries is returned when the number of queries is not positive.
	ErrInvalidNumQueries = errors.New("invalid number of queries: must be positive")

	// ErrInvalidConcurrency is returned when a concurrency limit is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	ErrConflictingProxy = errors.New("conflicting network options: --proxy and --tor cannot be used together")
)
