// SPDX-License-Identifier: MIT
// Package: matrix
//
// Family table.
//
// Every structural family is described by one row of data:
//   - domain(n):    the contiguous interval [lo, hi] of valid set indices;
//   - mandatory(n): indices every valid set must contain;
//   - cell(n,i,j):  which index governs cell (i,j), or "not governed" (fixed +1);
//   - weight(n,k):  how many governed cells index k controls;
//   - fixed(n):     how many cells are fixed +1 regardless of the set.
//
// Membership convention: a governed cell is +1 iff its index is in the set,
// -1 otherwise. Builders, the index-set generator and the ones-ratio filter all
// read this single table, so adding a family means adding one row.

package matrix

import (
	"fmt"
	"strings"
)

// Family names a structural class of n×n ±1 matrices.
type Family int

const (
	// Full: every cell (i,j) is governed by its own index i·n+j.
	Full Family = iota

	// UpperTriangular: like Full, but every strictly-lower cell index is
	// mandatory, so the lower triangle is always +1.
	UpperTriangular

	// Toeplitz: cell (i,j) is governed by the diagonal offset j−i ∈ [−(n−1), n−1].
	Toeplitz

	// Circulant: cell (i,j) is governed by (j−i) mod n ∈ [0, n−1].
	Circulant

	// TriangularToeplitz: Toeplitz with the negative offsets mandatory, so the
	// strictly-lower triangle is +1 and only the offsets 0..n−1 are free.
	TriangularToeplitz

	// TriangularHankel: cell (i,j) with i ≤ j is governed by the anti-diagonal
	// i+j ∈ [0, 2n−2]; cells below the diagonal are fixed +1.
	TriangularHankel
)

// familySpec is one row of the family table.
type familySpec struct {
	name      string
	symbol    byte
	domain    func(n int) (lo, hi int)
	mandatory func(n int) []int
	cell      func(n, i, j int) (idx int, governed bool)
	weight    func(n, idx int) int
	fixed     func(n int) int
}

func noMandatory(int) []int { return nil }
func noFixed(int) int       { return 0 }

func offsetDomain(n int) (int, int) { return -(n - 1), n - 1 }
func offsetCell(_, i, j int) (int, bool) {
	return j - i, true
}
func offsetWeight(n, d int) int {
	if d < 0 {
		d = -d
	}
	return n - d
}

var familyTable = [...]familySpec{
	Full: {
		name:      "full",
		symbol:    'F',
		domain:    func(n int) (int, int) { return 0, n*n - 1 },
		mandatory: noMandatory,
		cell:      func(n, i, j int) (int, bool) { return i*n + j, true },
		weight:    func(int, int) int { return 1 },
		fixed:     noFixed,
	},
	UpperTriangular: {
		name:   "upper-triangular",
		symbol: 'U',
		domain: func(n int) (int, int) { return 0, n*n - 1 },
		mandatory: func(n int) []int {
			var out []int
			for i := 1; i < n; i++ {
				for j := 0; j < i; j++ {
					out = append(out, i*n+j)
				}
			}
			return NewIndexSet(out...)
		},
		cell:   func(n, i, j int) (int, bool) { return i*n + j, true },
		weight: func(int, int) int { return 1 },
		fixed:  noFixed,
	},
	Toeplitz: {
		name:      "toeplitz",
		symbol:    'T',
		domain:    offsetDomain,
		mandatory: noMandatory,
		cell:      offsetCell,
		weight:    offsetWeight,
		fixed:     noFixed,
	},
	Circulant: {
		name:      "circulant",
		symbol:    'C',
		domain:    func(n int) (int, int) { return 0, n - 1 },
		mandatory: noMandatory,
		cell: func(n, i, j int) (int, bool) {
			return ((j-i)%n + n) % n, true
		},
		weight: func(n, _ int) int { return n },
		fixed:  noFixed,
	},
	TriangularToeplitz: {
		name:   "triangular-toeplitz",
		symbol: 'R',
		domain: offsetDomain,
		mandatory: func(n int) []int {
			out := make([]int, 0, n-1)
			for d := -(n - 1); d < 0; d++ {
				out = append(out, d)
			}
			return out
		},
		cell:   offsetCell,
		weight: offsetWeight,
		fixed:  noFixed,
	},
	TriangularHankel: {
		name:      "triangular-hankel",
		symbol:    'H',
		domain:    func(n int) (int, int) { return 0, 2*n - 2 },
		mandatory: noMandatory,
		cell: func(_, i, j int) (int, bool) {
			if i > j {
				return 0, false
			}
			return i + j, true
		},
		// pairs (i,j), i ≤ j, i+j = s: i runs from max(0, s−n+1) to ⌊s/2⌋.
		weight: func(n, s int) int {
			lo := s - n + 1
			if lo < 0 {
				lo = 0
			}
			if c := s/2 - lo + 1; c > 0 {
				return c
			}
			return 0
		},
		fixed: func(n int) int { return n * (n - 1) / 2 },
	},
}

// Families lists every defined family in table order.
func Families() []Family {
	out := make([]Family, len(familyTable))
	for k := range familyTable {
		out[k] = Family(k)
	}

	return out
}

// Valid reports whether f is a defined family.
func (f Family) Valid() bool { return f >= 0 && int(f) < len(familyTable) }

// String returns the canonical lowercase family name.
func (f Family) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Family(%d)", int(f))
	}

	return familyTable[f].name
}

// Symbol returns the single-letter prefix used by the set notation ("T_7{...}").
func (f Family) Symbol() byte {
	if !f.Valid() {
		return '?'
	}

	return familyTable[f].symbol
}

// ParseFamily resolves a family by canonical name, by notation symbol, or by a
// few common aliases ("hankel", "reverse-triangle", "triangle").
func ParseFamily(name string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	switch key {
	case "hankel", "reverse-triangle", "upper-triangular-hankel":
		return TriangularHankel, nil
	case "triangle", "upper-triangular-toeplitz":
		return TriangularToeplitz, nil
	}
	for k := range familyTable {
		if familyTable[k].name == key || (len(key) == 1 && strings.ToLower(string(familyTable[k].symbol)) == key) {
			return Family(k), nil
		}
	}

	return 0, fmt.Errorf("ParseFamily(%q): %w", name, ErrUnknownFamily)
}

// MarshalText implements encoding.TextMarshaler (YAML/JSON friendly).
func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, ErrUnknownFamily
	}

	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(b []byte) error {
	v, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = v

	return nil
}

// Domain returns the inclusive index interval [lo, hi] for order n.
func (f Family) Domain(n int) (lo, hi int) { return familyTable[f].domain(n) }

// Mandatory returns the sorted indices every valid set must contain.
func (f Family) Mandatory(n int) []int { return familyTable[f].mandatory(n) }

// Free returns the sorted domain indices that are not mandatory: the positions
// an index set is free to include or omit.
// Complexity: O(domain size).
func (f Family) Free(n int) []int {
	lo, hi := f.Domain(n)
	mand := IndexSet(f.Mandatory(n))
	out := make([]int, 0, hi-lo+1-len(mand))
	for idx := lo; idx <= hi; idx++ {
		if !mand.Contains(idx) {
			out = append(out, idx)
		}
	}

	return out
}

// Cell reports which index governs cell (i,j) of an n×n matrix; governed is
// false for cells that are fixed +1 by the family.
func (f Family) Cell(n, i, j int) (idx int, governed bool) { return familyTable[f].cell(n, i, j) }

// Weight returns how many governed cells index idx controls in order n.
func (f Family) Weight(n, idx int) int { return familyTable[f].weight(n, idx) }

// FixedOnes returns the number of cells that are +1 for every set.
func (f Family) FixedOnes(n int) int { return familyTable[f].fixed(n) }
