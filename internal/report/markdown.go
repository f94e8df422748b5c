package report

import (
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/researcher/internal/model"
)

// maxChartSlices bounds the pie chart. Smaller domains are grouped as "other".
const maxChartSlices = 8

// MarkdownWriter writes the report as a markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write writes r.
func (w *MarkdownWriter) Write(r *model.Research) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	w.writeBody(md, r)
	w.writeSources(md, r)
	w.writeQueries(md, r)
	w.writeErrors(md, r)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.Research) {
	md.H1(r.Question)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Agent", r.Agent},
			{"Report Type", "`" + r.ReportType + "`"},
			{"Research ID", "`" + r.ID + "`"},
			{"Research Words", strconv.Itoa(r.WordCount())},
			{"Sources", strconv.Itoa(len(r.Sources()))},
			{"Status", statusText(r)},
		},
	})
	md.PlainText("")

	if r.FromCache {
		md.Note("Summaries were loaded from a previous run of the same question.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeBody(md *markdown.Markdown, r *model.Research) {
	if r.Report == "" {
		md.Warningf("No report was generated for %q.", r.Question)
		md.PlainText("")
		return
	}
	md.PlainText(strings.TrimSpace(r.Report))
	md.PlainText("")
}

func (w *MarkdownWriter) writeSources(md *markdown.Markdown, r *model.Research) {
	sources := r.Sources()
	if len(sources) == 0 {
		return
	}

	md.H2("Sources")
	md.PlainText("")
	md.BulletList(sources...)
	md.PlainText("")

	domains := domainCounts(sources)
	if len(domains) < 2 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Sources by Domain"),
		piechart.WithShowData(true),
	)
	for _, d := range domains {
		chart.LabelAndIntValue(d.name, uint64(d.count)) //nolint:gosec // count is positive
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeQueries(md *markdown.Markdown, r *model.Research) {
	if len(r.Queries) == 0 {
		return
	}
	md.Details("Search queries", "- "+strings.Join(r.Queries, "\n- "))
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, r *model.Research) {
	if len(r.Errors) == 0 {
		return
	}
	md.Warningf("%d step(s) degraded during research:", len(r.Errors))
	md.PlainText("")
	md.BulletList(r.Errors...)
	md.PlainText("")
}

type domainCount struct {
	name  string
	count int
}

// domainCounts counts sources per host, largest first, folding everything
// past maxChartSlices into "other".
func domainCounts(sources []string) []domainCount {
	counts := make(map[string]int)
	for _, s := range sources {
		host := s
		if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
			host = strings.TrimPrefix(u.Hostname(), "www.")
		}
		counts[host]++
	}

	result := make([]domainCount, 0, len(counts))
	for name, n := range counts {
		result = append(result, domainCount{name: name, count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].count != result[j].count {
			return result[i].count > result[j].count
		}
		return result[i].name < result[j].name
	})

	if len(result) > maxChartSlices {
		other := 0
		for _, d := range result[maxChartSlices-1:] {
			other += d.count
		}
		result = append(result[:maxChartSlices-1], domainCount{name: "other", count: other})
	}
	return result
}
