package model

import "time"

// Result is the output of a complete crawl: the merged report plus the number
// of links discovered on the seed page.
type Result struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// InitialLinks is the size of the seed page's child set.
	InitialLinks int `json:"initial_links"`

	// Report is the merged report, seed page included.
	Report *CrawlReport `json:"report"`

	// Interrupted is true when the crawl was cancelled before finishing.
	Interrupted bool `json:"interrupted"`
}

// ScanMeta describes how a scan was run.
type ScanMeta struct {
	Depth     int           `json:"depth"`
	Threads   int           `json:"threads"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Summary is the aggregate view of a crawl printed to the operator and
// stored in the history database.
type Summary struct {
	Seed         string         `json:"seed"`
	Depth        int            `json:"depth"`
	Threads      int            `json:"threads"`
	StartedAt    time.Time      `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
	InitialLinks int            `json:"initial_links"`
	Pages        int            `json:"pages"`
	Success      uint64         `json:"success"`
	Fail         uint64         `json:"fail"`
	Interrupted  bool           `json:"interrupted,omitempty"`
	StartDigits  DigitHistogram `json:"start_digits"`
	EndDigits    DigitHistogram `json:"end_digits"`
	Lengths      LengthMultiset `json:"lengths"`

	// BenfordMAD is the mean absolute deviation of the start-digit
	// proportions from Benford's distribution. Zero when no numbers were seen.
	BenfordMAD float64 `json:"benford_mad"`
}

// Summarize folds every page of the result into aggregate histograms.
func Summarize(result *Result, meta ScanMeta) *Summary {
	s := &Summary{
		Seed:         result.Seed,
		Depth:        meta.Depth,
		Threads:      meta.Threads,
		StartedAt:    meta.StartedAt,
		Duration:     meta.Duration,
		InitialLinks: result.InitialLinks,
		Interrupted:  result.Interrupted,
		Lengths:      NewLengthMultiset(),
	}
	if result.Report == nil {
		return s
	}

	s.Pages = result.Report.Len()
	s.Success = result.Report.Success
	s.Fail = result.Report.Fail
	for _, p := range result.Report.Pages {
		s.StartDigits.Merge(p.StartDigits)
		s.EndDigits.Merge(p.EndDigits)
		s.Lengths.Merge(p.Lengths)
	}
	if mad, ok := s.StartDigits.BenfordMAD(); ok {
		s.BenfordMAD = mad
	}
	return s
}

// Benford conformity levels returned by Summary.Conformity.
const (
	ConformityNoData     = "no data"
	ConformityClose      = "close conformity"
	ConformityAcceptable = "acceptable conformity"
	ConformityMarginal   = "marginal conformity"
	ConformityNone       = "nonconformity"
)

// Conformity classifies BenfordMAD using Nigrini's first-digit thresholds.
func (s *Summary) Conformity() string {
	if s.StartDigits.Total() == 0 {
		return ConformityNoData
	}
	switch {
	case s.BenfordMAD <= 0.006:
		return ConformityClose
	case s.BenfordMAD <= 0.012:
		return ConformityAcceptable
	case s.BenfordMAD <= 0.015:
		return ConformityMarginal
	default:
		return ConformityNone
	}
}
