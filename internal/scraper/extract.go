package scraper

import (
	"bytes"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
)

// noiseSelector matches elements that never carry article content.
const noiseSelector = "script, style, noscript, iframe, svg, nav, header, footer, aside, form"

// contentSelector matches the elements collected as readable text.
const contentSelector = "p, h1, h2, h3, h4, h5, h6, li, td, th, pre, blockquote"

// mainSelectors are tried in order to find the main content container.
var mainSelectors = []string{"main", "article", "[role=main]", "#content", ".content", "body"}

// Content is the readable part of an HTML document.
type Content struct {
	Title    string
	Text     string
	Markdown string
}

// Extract parses body and returns its title, readable text and markdown.
// base resolves relative links in the markdown and may be nil.
func Extract(body []byte, base *url.URL) (Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Content{}, err
	}

	c := Content{Title: normalizeSpace(doc.Find("title").First().Text())}

	doc.Find(noiseSelector).Remove()
	main := mainContent(doc)

	var parts []string
	main.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested matches such as p inside li are emitted by the outer element.
		if s.ParentsFiltered(contentSelector).Length() > 0 {
			return
		}
		if text := normalizeSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		if text := normalizeSpace(main.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	c.Text = strings.Join(parts, "\n")

	c.Markdown = c.Text
	if html, err := goquery.OuterHtml(main); err == nil {
		var opts []converter.ConvertOptionFunc
		if base != nil {
			opts = append(opts, converter.WithDomain(base.Scheme+"://"+base.Host))
		}
		if md, err := htmltomarkdown.ConvertString(html, opts...); err == nil && strings.TrimSpace(md) != "" {
			c.Markdown = strings.TrimSpace(md)
		}
	}

	return c, nil
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range mainSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
