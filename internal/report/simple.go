package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/benfordscan/internal/model"
)

// SimpleWriter outputs the human-readable summary printed after a scan.
type SimpleWriter struct {
	baseWriter

	// showLengths adds the canonical number length distribution.
	showLengths bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLengths enables the length distribution section.
func WithLengths(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showLengths = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		showLengths: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeTotals(&sb, summary)
	w.writeDigits(&sb, summary)
	if w.showLengths {
		w.writeLengths(&sb, summary)
	}
	w.writeVerdict(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeTotals writes the crawl counters.
func (w *SimpleWriter) writeTotals(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Total Initial Links %d\n", s.InitialLinks)
	fmt.Fprintf(sb, "Total  Result %3d\n", s.Pages)
	fmt.Fprintf(sb, "Total Success %3d\n", s.Success)
	fmt.Fprintf(sb, "Total   Fails %3d\n", s.Fail)
	fmt.Fprintf(sb, "Duration      %s\n", s.Duration.Round(time.Millisecond))
	if s.Interrupted {
		sb.WriteString("Status        INTERRUPTED (partial results)\n")
	}
	sb.WriteString("\n")
}

// writeDigits writes the start and end digit histograms next to the
// proportions Benford's Law predicts for leading digits.
func (w *SimpleWriter) writeDigits(sb *strings.Builder, s *model.Summary) {
	sb.WriteString(strings.Repeat("-", 56))
	sb.WriteString("\n")
	sb.WriteString("DIGIT  START   START%  BENFORD%     END    END%\n")
	sb.WriteString(strings.Repeat("-", 56))
	sb.WriteString("\n")

	start := s.StartDigits.Proportions()
	end := s.EndDigits.Proportions()
	expected := model.BenfordExpected()
	for d := 1; d <= model.DigitCount; d++ {
		fmt.Fprintf(sb, "%5d %6d %8s %9s %7d %7s\n",
			d,
			s.StartDigits.Count(d), percent(start[d-1]), percent(expected[d-1]),
			s.EndDigits.Count(d), percent(end[d-1]))
	}
	fmt.Fprintf(sb, "%5s %6d %8s %9s %7d\n", "all", s.StartDigits.Total(), "", "", s.EndDigits.Total())
	sb.WriteString("\n")
}

// writeLengths writes how many canonical numbers had each length.
func (w *SimpleWriter) writeLengths(sb *strings.Builder, s *model.Summary) {
	if s.Lengths.Len() == 0 {
		return
	}
	sb.WriteString("Number lengths:\n")
	for _, n := range s.Lengths.Lengths() {
		fmt.Fprintf(sb, "  %3d digits: %d\n", n, s.Lengths.Multiplicity(n))
	}
	sb.WriteString("\n")
}

// writeVerdict writes the Benford deviation.
func (w *SimpleWriter) writeVerdict(sb *strings.Builder, s *model.Summary) {
	if s.StartDigits.Total() == 0 {
		sb.WriteString("Benford MAD: n/a (no numbers found)\n")
		return
	}
	fmt.Fprintf(sb, "Benford MAD: %.4f (%s)\n", s.BenfordMAD, s.Conformity())
}
