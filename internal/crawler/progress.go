package crawler

import (
	"fmt"
	"io"
	"sync"
)

// Progress writes one marker per processed URL: "[+a]" for a page that was
// fetched and parsed by worker a, "[-a]" for a failure.
// Markers from concurrent workers never interleave.
type Progress struct {
	mu sync.Mutex
	w  io.Writer
}

// NewProgress returns a Progress writing to w. A nil w discards markers.
func NewProgress(w io.Writer) *Progress {
	if w == nil {
		w = io.Discard
	}
	return &Progress{w: w}
}

// Success records a processed page.
func (p *Progress) Success(label string) {
	p.mark('+', label)
}

// Fail records a failed URL.
func (p *Progress) Fail(label string) {
	p.mark('-', label)
}

func (p *Progress) mark(sign rune, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Progress output is best effort.
	_, _ = fmt.Fprintf(p.w, "[%c%s]", sign, label)
}
