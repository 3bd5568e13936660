package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/benfordscan/internal/model"
)

// JSONWriter outputs the summary in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// version is recorded in the output when set.
	version string

	// pages are included in the output when set.
	pages []*model.PageStats
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables indented JSON.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithVersion records the benfordscan version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// WithPages includes the per-page statistics in the output.
func WithPages(pages []*model.PageStats) JSONWriterOption {
	return func(w *JSONWriter) {
		w.pages = pages
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the benfordscan version that produced the report.
	Version string `json:"version,omitempty"`

	// Summary is the aggregate view of the scan.
	Summary *model.Summary `json:"summary"`

	// Conformity is the verbal Benford classification of the summary.
	Conformity string `json:"conformity"`

	// Pages are the per-page statistics, when requested.
	Pages []*model.PageStats `json:"pages,omitempty"`
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:    w.version,
		Summary:    summary,
		Conformity: summary.Conformity(),
		Pages:      w.pages,
	})
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
