package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/benfordscan/internal/model"
)

// CSVWriter writes one line per page:
//
//	"<url>", s1, ..., s9, e1, ..., e9
//
// The format predates this tool and is not RFC 4180 CSV: fields are
// separated by ", " and only the URL is quoted.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// WritePages writes every page as one line.
func (w *CSVWriter) WritePages(pages []*model.PageStats) (int, error) {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}
	n, err := io.WriteString(w.output, sb.String())
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return n, nil
}

// WriteCSVFile writes the per-page report to path, creating parent
// directories as needed. Any failure wraps ErrOutputWrite.
func WriteCSVFile(path string, pages []*model.PageStats) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("%w: failed to create output directory: %w", ErrOutputWrite, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("%w: failed to create output file: %w", ErrOutputWrite, err)
	}

	if _, err := NewCSVWriter(f).WritePages(pages); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}
