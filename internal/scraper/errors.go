package scraper

import "errors"

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrHTTPStatus is returned for non-2xx responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrUnsupportedContent is returned for content that is neither HTML nor text.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrEmptyContent is returned when no readable text could be extracted.
	ErrEmptyContent = errors.New("no readable content")
)
