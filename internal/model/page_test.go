package model

import (
	"testing"
)

func TestPageComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("computes SHA256 hash of raw content", func(t *testing.T) {
		t.Parallel()

		page := &Page{Raw: []byte("Hello, World!")}
		page.ComputeHash()

		expected := "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
		if page.Hash != expected {
			t.Errorf("got %q, expected %q", page.Hash, expected)
		}
	})

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		page := &Page{Raw: nil, Hash: "stale"}
		page.ComputeHash()

		if page.Hash != "" {
			t.Errorf("expected empty hash, got %q", page.Hash)
		}
	})
}

func TestPageContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		wantHTML    bool
		wantText    bool
	}{
		{contentType: "text/html", wantHTML: true},
		{contentType: "text/html; charset=utf-8", wantHTML: true},
		{contentType: "TEXT/HTML", wantHTML: true},
		{contentType: "application/xhtml+xml", wantHTML: true},
		{contentType: "text/plain; charset=utf-8", wantText: true},
		{contentType: "text/markdown", wantText: true},
		{contentType: "application/pdf"},
		{contentType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()
			page := &Page{ContentType: tt.contentType}
			if got := page.IsHTML(); got != tt.wantHTML {
				t.Errorf("IsHTML() = %v, want %v", got, tt.wantHTML)
			}
			if got := page.IsText(); got != tt.wantText {
				t.Errorf("IsText() = %v, want %v", got, tt.wantText)
			}
		})
	}
}

func TestPageTruncateText(t *testing.T) {
	t.Parallel()

	t.Run("cuts on rune boundaries", func(t *testing.T) {
		t.Parallel()
		page := &Page{Text: "日本語テキスト", Markdown: "# 日本語"}
		page.TruncateText(3)
		if page.Text != "日本語" {
			t.Errorf("expected 3 runes, got %q", page.Text)
		}
		if page.Markdown != "# 日" {
			t.Errorf("expected markdown cut to 3 runes, got %q", page.Markdown)
		}
	})

	t.Run("non-positive limit keeps text", func(t *testing.T) {
		t.Parallel()
		page := &Page{Text: "unchanged"}
		page.TruncateText(0)
		if page.Text != "unchanged" {
			t.Errorf("expected unchanged text, got %q", page.Text)
		}
	})
}

func TestURLs(t *testing.T) {
	t.Parallel()

	got := URLs([]SearchResult{
		{URL: "https://a.example"},
		{Title: "no url"},
		{URL: "https://b.example"},
	})
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected urls %v", got)
	}
}

func TestResearchID(t *testing.T) {
	t.Parallel()

	a := ResearchID("What is Go?")
	b := ResearchID("  What is Go?\n")
	c := ResearchID("What is Rust?")

	if a != b {
		t.Errorf("expected surrounding space to be ignored: %q != %q", a, b)
	}
	if a == c {
		t.Error("expected different questions to produce different ids")
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(a))
	}
}
