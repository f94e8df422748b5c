package llm

import "errors"

var (
	// ErrUnknownProvider is returned by New for an unsupported provider.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("missing llm api key")

	// ErrEmptyResponse is returned when the model replies without text.
	ErrEmptyResponse = errors.New("empty llm response")

	// ErrNoJSON is returned when a reply contains no JSON value of the
	// expected shape.
	ErrNoJSON = errors.New("no json found in llm response")
)
