package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/researcher/internal/model"
)

const ruleWidth = 70

// TextWriter writes the report as plain text.
type TextWriter struct {
	baseWriter
	showSources bool
}

// TextWriterOption configures TextWriter.
type TextWriterOption func(*TextWriter)

// WithSources controls whether the source list is appended. Default true.
func WithSources(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showSources = show
	}
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter:  newBaseWriter(output),
		showSources: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write writes r.
func (w *TextWriter) Write(r *model.Research) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, r)
	w.writeBody(&sb, r)
	if w.showSources {
		w.writeSources(&sb, r)
	}
	w.writeErrors(&sb, r)

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeHeader(sb *strings.Builder, r *model.Research) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(r.Question)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Agent:       %s\n", r.Agent)
	fmt.Fprintf(sb, "Report Type: %s\n", r.ReportType)
	fmt.Fprintf(sb, "Research ID: %s\n", r.ID)
	fmt.Fprintf(sb, "Status:      %s\n", statusText(r))
	sb.WriteString("\n")
}

func (w *TextWriter) writeBody(sb *strings.Builder, r *model.Research) {
	if r.Report == "" {
		sb.WriteString("(no report was generated)\n\n")
		return
	}
	sb.WriteString(strings.TrimSpace(r.Report))
	sb.WriteString("\n\n")
}

func (w *TextWriter) writeSources(sb *strings.Builder, r *model.Research) {
	sources := r.Sources()
	if len(sources) == 0 {
		return
	}

	writeSection(sb, "SOURCES")
	for _, s := range sources {
		fmt.Fprintf(sb, "  - %s\n", s)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeErrors(sb *strings.Builder, r *model.Research) {
	if len(r.Errors) == 0 {
		return
	}

	writeSection(sb, "ERRORS")
	for _, e := range r.Errors {
		fmt.Fprintf(sb, "  ! %s\n", e)
	}
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
}

func statusText(r *model.Research) string {
	switch {
	case r.TimedOut:
		return "Timed Out (partial results)"
	case r.Error != nil:
		return "Error - " + r.Error.Error()
	case r.ErrorMessage != "":
		return "Error - " + r.ErrorMessage
	case r.Report == "":
		return "No Report"
	default:
		return "Complete"
	}
}
