package matrix

import (
	"slices"
	"strconv"
	"strings"
)

// IndexSet is a set of family indices in canonical form: strictly increasing,
// no duplicates. Use NewIndexSet or Canonical to obtain one from arbitrary input.
type IndexSet []int

// NewIndexSet returns the canonical set holding idx.
func NewIndexSet(idx ...int) IndexSet { return Canonical(idx) }

// Canonical returns a sorted, duplicate-free copy of s. The input is not modified.
func Canonical(s []int) IndexSet {
	out := slices.Clone(s)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = IndexSet{}
	}

	return out
}

// Contains reports membership via binary search. s must be canonical.
func (s IndexSet) Contains(idx int) bool {
	_, ok := slices.BinarySearch(s, idx)
	return ok
}

// Equal reports whether two canonical sets hold the same members.
func (s IndexSet) Equal(o IndexSet) bool { return slices.Equal(s, o) }

// String renders the set as "{a,b,c}"; the empty set renders as "{}".
func (s IndexSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for k, v := range s {
		if k > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte('}')

	return b.String()
}
