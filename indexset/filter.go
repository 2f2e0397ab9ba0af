package indexset

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// Predicate decides whether a candidate set is evaluated.
type Predicate func(matrix.IndexSet) bool

// Filter yields only the pairs of seq accepted by keep; rejected pairs are
// reported to onSkip (may be nil) so callers can count them.
func Filter(seq iter.Seq2[uint64, matrix.IndexSet], keep Predicate, onSkip func(uint64, matrix.IndexSet)) iter.Seq2[uint64, matrix.IndexSet] {
	if keep == nil {
		return seq
	}

	return func(yield func(uint64, matrix.IndexSet) bool) {
		for r, set := range seq {
			if !keep(set) {
				if onSkip != nil {
					onSkip(r, set)
				}
				continue
			}
			if !yield(r, set) {
				return
			}
		}
	}
}

// Range is an interval of the +1 ratio with independently open or closed ends.
type Range struct {
	Lo, Hi         float64
	LoOpen, HiOpen bool
}

// Below returns the closed range [0, hi]: the single-threshold form.
func Below(hi float64) Range { return Range{Lo: 0, Hi: hi} }

// Between returns the open range (lo, hi): the two-threshold form.
func Between(lo, hi float64) Range { return Range{Lo: lo, Hi: hi, LoOpen: true, HiOpen: true} }

// splitRange splits at the first ',' or the first '-' that is neither a
// leading sign nor an exponent sign.
func splitRange(s string) []string {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case ',':
			return []string{s[:i], s[i+1:]}
		case '-':
			if p := s[i-1]; p != 'e' && p != 'E' {
				return []string{s[:i], s[i+1:]}
			}
		}
	}

	return []string{s}
}

// ParseRange accepts "hi" (→ Below(hi)) or "lo-hi" / "lo,hi" (→ Between(lo, hi)).
// Bounds must satisfy 0 ≤ lo ≤ hi ≤ 1.
func ParseRange(s string) (Range, error) {
	var (
		parts []string
		lo    float64
		hi    float64
		err   error
		r     Range
	)
	s = strings.TrimSpace(s)
	parts = splitRange(s)
	switch len(parts) {
	case 1:
		if hi, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
			return Range{}, fmt.Errorf("ParseRange(%q): %w", s, ErrBadRange)
		}
		r = Below(hi)
	case 2:
		if lo, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
			return Range{}, fmt.Errorf("ParseRange(%q): %w", s, ErrBadRange)
		}
		if hi, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
			return Range{}, fmt.Errorf("ParseRange(%q): %w", s, ErrBadRange)
		}
		r = Between(lo, hi)
	default:
		return Range{}, fmt.Errorf("ParseRange(%q): %w", s, ErrBadRange)
	}
	if err = r.Validate(); err != nil {
		return Range{}, err
	}

	return r, nil
}

// Validate checks 0 ≤ Lo ≤ Hi ≤ 1.
func (r Range) Validate() error {
	if r.Lo < 0 || r.Hi > 1 || r.Lo > r.Hi {
		return fmt.Errorf("Range %s: %w", r, ErrBadRange)
	}

	return nil
}

// Contains reports whether x lies in the range.
func (r Range) Contains(x float64) bool {
	if r.LoOpen {
		if x <= r.Lo {
			return false
		}
	} else if x < r.Lo {
		return false
	}
	if r.HiOpen {
		return x < r.Hi
	}

	return x <= r.Hi
}

// Split cuts r into k consecutive sub-ranges that are pairwise disjoint and
// whose union is r. Interior cut points belong to the upper piece.
func (r Range) Split(k int) []Range {
	if k < 1 {
		k = 1
	}
	out := make([]Range, k)
	step := (r.Hi - r.Lo) / float64(k)
	cut := func(i int) float64 {
		if i == k {
			return r.Hi
		}
		return r.Lo + step*float64(i)
	}
	for i := 0; i < k; i++ {
		out[i] = Range{
			Lo:     cut(i),
			Hi:     cut(i + 1),
			LoOpen: i == 0 && r.LoOpen,
			HiOpen: i < k-1 || r.HiOpen,
		}
	}

	return out
}

// String renders the range in interval notation, e.g. "(0.4, 0.6)" or "[0, 0.5]".
func (r Range) String() string {
	l, h := "[", "]"
	if r.LoOpen {
		l = "("
	}
	if r.HiOpen {
		h = ")"
	}

	return fmt.Sprintf("%s%g, %g%s", l, r.Lo, r.Hi, h)
}

// RatioFilter keeps sets whose matrix +1 ratio lies in r. The ratio is
// computed from the family table (matrix.OnesRatio), never from a built matrix.
// Sets the family rejects are dropped.
func RatioFilter(n int, f matrix.Family, r Range) Predicate {
	return func(set matrix.IndexSet) bool {
		x, err := matrix.OnesRatio(n, f, set)
		if err != nil {
			return false
		}
		return r.Contains(x)
	}
}
