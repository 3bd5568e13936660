package model

import "sort"

// LengthMultiset counts canonical numbers by length.
// Length 0 (a token such as "0.0" that canonicalizes to nothing) is a
// regular key. Unlike DigitHistogram the key domain is unbounded.
type LengthMultiset map[int]uint64

// NewLengthMultiset returns an empty multiset.
func NewLengthMultiset() LengthMultiset {
	return make(LengthMultiset)
}

// Insert records one occurrence of length n.
func (m LengthMultiset) Insert(n int) {
	m[n]++
}

// Multiplicity returns how many times n was inserted.
func (m LengthMultiset) Multiplicity(n int) uint64 {
	return m[n]
}

// Merge adds all occurrences of other into m.
func (m LengthMultiset) Merge(other LengthMultiset) {
	for k, v := range other {
		m[k] += v
	}
}

// Len returns the number of distinct lengths.
func (m LengthMultiset) Len() int {
	return len(m)
}

// Total returns the number of insertions across all lengths.
func (m LengthMultiset) Total() uint64 {
	var total uint64
	for _, v := range m {
		total += v
	}
	return total
}

// Lengths returns the distinct lengths in ascending order.
func (m LengthMultiset) Lengths() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
