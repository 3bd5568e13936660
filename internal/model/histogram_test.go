package model

import (
	"math"
	"testing"
)

func TestDigitHistogramAdd(t *testing.T) {
	t.Parallel()

	t.Run("counts digits 1 through 9", func(t *testing.T) {
		t.Parallel()
		var h DigitHistogram
		for d := 1; d <= 9; d++ {
			h.Add(d)
		}
		h.Add(3)
		if h.Count(3) != 2 {
			t.Errorf("expected 2 for digit 3, got %d", h.Count(3))
		}
		if h.Total() != 10 {
			t.Errorf("expected total 10, got %d", h.Total())
		}
	})

	t.Run("ignores out of range digits", func(t *testing.T) {
		t.Parallel()
		var h DigitHistogram
		h.Add(0)
		h.Add(10)
		h.Add(-1)
		if h.Total() != 0 {
			t.Errorf("expected empty histogram, got total %d", h.Total())
		}
		if h.Count(0) != 0 {
			t.Errorf("expected 0 for digit 0, got %d", h.Count(0))
		}
	})
}

func TestDigitHistogramMerge(t *testing.T) {
	t.Parallel()

	a := DigitHistogram{1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := DigitHistogram{9, 8, 7, 6, 5, 4, 3, 2, 1}
	a.Merge(b)

	for i, c := range a {
		if c != 10 {
			t.Errorf("bucket %d: expected 10, got %d", i+1, c)
		}
	}
}

func TestDigitHistogramString(t *testing.T) {
	t.Parallel()

	h := DigitHistogram{2, 0, 0, 0, 0, 0, 0, 0, 1}
	want := "2, 0, 0, 0, 0, 0, 0, 0, 1"
	if got := h.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDigitHistogramProportions(t *testing.T) {
	t.Parallel()

	t.Run("empty histogram", func(t *testing.T) {
		t.Parallel()
		var h DigitHistogram
		for i, p := range h.Proportions() {
			if p != 0 {
				t.Errorf("bucket %d: expected 0, got %f", i+1, p)
			}
		}
		if _, ok := h.BenfordMAD(); ok {
			t.Error("expected no deviation for an empty histogram")
		}
	})

	t.Run("sums to one", func(t *testing.T) {
		t.Parallel()
		h := DigitHistogram{3, 1, 0, 0, 0, 0, 0, 0, 4}
		var sum float64
		for _, p := range h.Proportions() {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("expected proportions to sum to 1, got %f", sum)
		}
	})
}

func TestBenfordMAD(t *testing.T) {
	t.Parallel()

	expected := BenfordExpected()
	if math.Abs(expected[0]-0.30103) > 1e-5 {
		t.Errorf("expected P(1) = 0.30103, got %f", expected[0])
	}

	// A histogram proportional to Benford's distribution deviates by ~0.
	var h DigitHistogram
	for i, p := range expected {
		h[i] = uint64(math.Round(p * 100000))
	}
	mad, ok := h.BenfordMAD()
	if !ok {
		t.Fatal("expected a deviation to be computed")
	}
	if mad > 0.0001 {
		t.Errorf("expected near-zero deviation, got %f", mad)
	}

	var skewed DigitHistogram
	skewed.Add(9)
	mad, _ = skewed.BenfordMAD()
	if mad < 0.1 {
		t.Errorf("expected a large deviation for all-nines, got %f", mad)
	}
}
