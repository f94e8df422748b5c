package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/researcher/internal/model"
)

// JSONReport is the envelope written by JSONWriter.
type JSONReport struct {
	// Version is the researcher version that produced the file.
	Version string `json:"version"`

	// Research is the full run state.
	Research *model.Research `json:"research"`
}

// JSONWriter writes research runs as JSON.
type JSONWriter struct {
	baseWriter
	version      string
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indentation with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write writes r wrapped in a JSONReport followed by a newline.
func (w *JSONWriter) Write(r *model.Research) (int, error) {
	if r.Error != nil && r.ErrorMessage == "" {
		r.ErrorMessage = r.Error.Error()
	}

	envelope := JSONReport{Version: w.version, Research: r}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(envelope, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(envelope)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
