package report

import (
	"errors"
	"io"
	"strconv"

	"github.com/nao1215/benfordscan/internal/model"
)

// ErrOutputWrite is returned when a report file cannot be created or fully
// written. The crawl results already printed stay valid.
var ErrOutputWrite = errors.New("failed to write report output")

// Writer writes a scan summary in one output format.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(summary *model.Summary) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// percent formats a proportion as a percentage with one decimal.
func percent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 1, 64) + "%"
}
