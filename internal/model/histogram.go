package model

import (
	"fmt"
	"math"
	"strings"
)

// DigitCount is the number of buckets in a DigitHistogram (digits 1 through 9).
const DigitCount = 9

// DigitHistogram counts how often each digit 1-9 appears in a fixed position
// (first or last) of canonical numbers.
//
// Bucket i holds the count for digit i+1. Digit 0 has no bucket: a canonical
// number never starts or ends with a zero, so a 0 reaching Add is ignored.
type DigitHistogram [DigitCount]uint64

// Add increments the bucket for digit d.
// Values outside 1..9 are ignored rather than indexing out of range.
func (h *DigitHistogram) Add(d int) {
	if d < 1 || d > DigitCount {
		return
	}
	h[d-1]++
}

// Count returns the count stored for digit d, or 0 for digits outside 1..9.
func (h *DigitHistogram) Count(d int) uint64 {
	if d < 1 || d > DigitCount {
		return 0
	}
	return h[d-1]
}

// Merge adds every bucket of other into h.
func (h *DigitHistogram) Merge(other DigitHistogram) {
	for i := range h {
		h[i] += other[i]
	}
}

// Total returns the sum of all buckets.
func (h *DigitHistogram) Total() uint64 {
	var total uint64
	for _, c := range h {
		total += c
	}
	return total
}

// Proportions returns each bucket divided by the total.
// An empty histogram yields all zeros.
func (h *DigitHistogram) Proportions() [DigitCount]float64 {
	var p [DigitCount]float64
	total := h.Total()
	if total == 0 {
		return p
	}
	for i, c := range h {
		p[i] = float64(c) / float64(total)
	}
	return p
}

// String renders the buckets as "c1, c2, ..., c9".
func (h DigitHistogram) String() string {
	parts := make([]string, DigitCount)
	for i, c := range h {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return strings.Join(parts, ", ")
}

// BenfordExpected returns the proportion Benford's Law predicts for each
// leading digit: log10(1 + 1/d).
func BenfordExpected() [DigitCount]float64 {
	var p [DigitCount]float64
	for d := 1; d <= DigitCount; d++ {
		p[d-1] = math.Log10(1 + 1/float64(d))
	}
	return p
}

// BenfordMAD returns the mean absolute deviation between the observed
// proportions of h and the Benford distribution. The second return value is
// false when h is empty and no deviation can be computed.
func (h *DigitHistogram) BenfordMAD() (float64, bool) {
	if h.Total() == 0 {
		return 0, false
	}
	observed := h.Proportions()
	expected := BenfordExpected()
	var sum float64
	for i := range observed {
		sum += math.Abs(observed[i] - expected[i])
	}
	return sum / DigitCount, true
}
