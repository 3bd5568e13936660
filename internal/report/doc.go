// Package report renders scan results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable summary for terminal display
//   - JSONWriter: structured JSON summary for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with a leading-digit pie chart
//   - CSVWriter: one line per crawled page with its digit histograms
//
// The summary writers implement the Writer interface so the scan command can
// pick one at runtime.
package report
