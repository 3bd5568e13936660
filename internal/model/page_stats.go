package model

import (
	"fmt"
	"sort"
)

// PageStats summarizes one successfully fetched and parsed page.
// It is built once by the extractor and only changes afterwards through
// aggregation into a Summary.
type PageStats struct {
	// URL is the page's own absolute URL.
	URL string `json:"url"`

	// ChildURLs is the set of absolute URLs linked from the page.
	// A link repeated on the page is stored once.
	ChildURLs map[string]struct{} `json:"-"`

	// StartDigits counts the first digit of every non-empty canonical number.
	StartDigits DigitHistogram `json:"start_digits"`

	// EndDigits counts the last digit of every non-empty canonical number.
	EndDigits DigitHistogram `json:"end_digits"`

	// Lengths counts canonical numbers by length, including empty ones.
	Lengths LengthMultiset `json:"lengths"`

	// Digest is the hex SHA3-256 digest of the fetched body.
	Digest string `json:"digest,omitempty"`
}

// NewPageStats returns empty statistics for the page at url.
func NewPageStats(url string) *PageStats {
	return &PageStats{
		URL:       url,
		ChildURLs: make(map[string]struct{}),
		Lengths:   NewLengthMultiset(),
	}
}

// AddChild records a child link.
func (p *PageStats) AddChild(url string) {
	p.ChildURLs[url] = struct{}{}
}

// Children returns the child URLs in sorted order.
func (p *PageStats) Children() []string {
	out := make([]string, 0, len(p.ChildURLs))
	for u := range p.ChildURLs {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// String renders the page as one report line:
//
//	"<url>", s1, ..., s9, e1, ..., e9
func (p *PageStats) String() string {
	return fmt.Sprintf("%q, %s, %s", p.URL, p.StartDigits, p.EndDigits)
}
