package model

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"strings"
	"time"
	"unicode/utf8"
)

// Page is a scraped web page reduced to the text the summarizer reads.
type Page struct {
	// URL is the requested URL.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the media type without parameters.
	ContentType string `json:"content_type"`

	// Title is the text of the <title> element. Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// Text is the readable text of the page, truncated to the configured
	// character limit.
	Text string `json:"text"`

	// Markdown is the main content converted to markdown. It falls back to
	// Text when conversion fails.
	Markdown string `json:"markdown,omitempty"`

	// Raw is the response body, capped at the configured body size.
	Raw []byte `json:"-"`

	// Hash is the SHA-256 of Raw.
	Hash string `json:"hash,omitempty"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// ComputeHash sets Hash from Raw. Empty content produces an empty hash.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// IsHTML reports whether the content type is HTML or XHTML.
func (p *Page) IsHTML() bool {
	mt := MediaType(p.ContentType)
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// IsText reports whether the content type is a textual type other than HTML.
func (p *Page) IsText() bool {
	mt := MediaType(p.ContentType)
	return strings.HasPrefix(mt, "text/") && mt != "text/html"
}

// TruncateText cuts Text to at most maxChars runes. A non-positive limit
// leaves Text unchanged.
func (p *Page) TruncateText(maxChars int) {
	p.Text = TruncateRunes(p.Text, maxChars)
	p.Markdown = TruncateRunes(p.Markdown, maxChars)
}

// MediaType strips parameters such as charset from a Content-Type value.
func MediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// TruncateRunes cuts s to at most n runes without splitting a character.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
