package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/benfordscan/internal/model"
)

// MarkdownWriter outputs the summary as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeDigits(md, summary)
	w.writeLengths(md, summary)
	w.writeVerdict(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the scan properties table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	status := "✅ Complete"
	if s.Interrupted {
		status = "⚠️ Interrupted (partial results)"
	}

	md.H1("Benford Scan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + s.Seed + "`"},
			{"Scan Date", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration.Round(time.Millisecond).String()},
			{"Depth", strconv.Itoa(s.Depth)},
			{"Threads", strconv.Itoa(s.Threads)},
			{"Initial Links", strconv.Itoa(s.InitialLinks)},
			{"Pages", strconv.Itoa(s.Pages)},
			{"Success", strconv.FormatUint(s.Success, 10)},
			{"Fail", strconv.FormatUint(s.Fail, 10)},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// writeDigits writes the digit table and the leading-digit pie chart.
func (w *MarkdownWriter) writeDigits(md *markdown.Markdown, s *model.Summary) {
	md.H2("Digit Distribution")
	md.PlainText("")

	start := s.StartDigits.Proportions()
	end := s.EndDigits.Proportions()
	expected := model.BenfordExpected()
	rows := make([][]string, 0, model.DigitCount)
	for d := 1; d <= model.DigitCount; d++ {
		rows = append(rows, []string{
			strconv.Itoa(d),
			strconv.FormatUint(s.StartDigits.Count(d), 10),
			percent(start[d-1]),
			percent(expected[d-1]),
			strconv.FormatUint(s.EndDigits.Count(d), 10),
			percent(end[d-1]),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Digit", "Leading", "Leading %", "Benford %", "Trailing", "Trailing %"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.StartDigits.Total() == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Leading Digit Distribution"),
		piechart.WithShowData(true),
	)
	for d := 1; d <= model.DigitCount; d++ {
		if c := s.StartDigits.Count(d); c > 0 {
			chart.LabelAndIntValue(strconv.Itoa(d), c)
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeLengths writes the canonical number length distribution.
func (w *MarkdownWriter) writeLengths(md *markdown.Markdown, s *model.Summary) {
	if s.Lengths.Len() == 0 {
		return
	}
	md.H2("Number Lengths")
	md.PlainText("")

	rows := make([][]string, 0, s.Lengths.Len())
	for _, n := range s.Lengths.Lengths() {
		rows = append(rows, []string{strconv.Itoa(n), strconv.FormatUint(s.Lengths.Multiplicity(n), 10)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Length", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeVerdict writes an alert matching the Benford conformity level.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, s *model.Summary) {
	md.H2("Benford Conformity")
	md.PlainText("")

	if s.StartDigits.Total() == 0 {
		md.Note("No numbers were found, so no deviation can be computed.")
		md.PlainText("")
		return
	}

	label := cases.Title(language.English).String(s.Conformity())
	mad := strconv.FormatFloat(s.BenfordMAD, 'f', 4, 64)
	switch s.Conformity() {
	case model.ConformityClose:
		md.Tip(label + ": mean absolute deviation " + mad + ".")
	case model.ConformityAcceptable:
		md.Note(label + ": mean absolute deviation " + mad + ".")
	case model.ConformityMarginal:
		md.Importantf("%s: mean absolute deviation %s.", label, mad)
	default:
		md.Warningf("%s: mean absolute deviation %s.", label, mad)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [benfordscan](https://github.com/nao1215/benfordscan)*")
}
