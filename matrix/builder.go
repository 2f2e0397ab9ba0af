// SPDX-License-Identifier: MIT
// Package: matrix
//
// Builders: (n, family, index set) → *Dense.
//
// Contract:
//   - Validate order → family → index domain → mandatory indices, in that order.
//   - Never coerce: an out-of-domain index or a missing mandatory index is an error.
//   - Deterministic: the same (n, family, set) always yields an identical matrix.
//
// Complexity: O(n²) time, O(n² + |domain|) memory.

package matrix

import (
	"fmt"
	"math/rand"
)

// builderErrorf tags builder failures with family and order.
func builderErrorf(f Family, n int, err error) error {
	return fmt.Errorf("Build(%s,n=%d): %w", f, n, err)
}

// Build constructs the n×n ±1 matrix of family f described by index set s.
// Governed cells are +1 when their index is in s and -1 otherwise; ungoverned
// cells (triangular Hankel lower part) are +1.
func Build(n int, f Family, s IndexSet) (*Dense, error) {
	var (
		i, j     int
		idx      int
		governed bool
		lo, hi   int
	)
	if err := ValidateOrder(n); err != nil {
		return nil, builderErrorf(f, n, err)
	}
	if !f.Valid() {
		return nil, builderErrorf(f, n, ErrUnknownFamily)
	}
	if err := ValidateIndexSet(n, f, s); err != nil {
		return nil, builderErrorf(f, n, err)
	}

	// Membership bitmap over the domain, offset by lo.
	lo, hi = f.Domain(n)
	member := make([]bool, hi-lo+1)
	for _, idx = range s {
		member[idx-lo] = true
	}

	m, err := NewDense(n, n)
	if err != nil {
		return nil, builderErrorf(f, n, err)
	}
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			idx, governed = f.Cell(n, i, j)
			if governed && !member[idx-lo] {
				m.set(i, j, -1)
			}
		}
	}

	return m, nil
}

// FullFromSet builds a full ±1 matrix: cell (i,j) is +1 iff i·n+j ∈ s.
func FullFromSet(n int, s IndexSet) (*Dense, error) { return Build(n, Full, s) }

// UpperTriangularFromSet builds an upper-triangular ±1 matrix. s must contain
// every strictly-lower cell index (see Family.Mandatory).
func UpperTriangularFromSet(n int, s IndexSet) (*Dense, error) {
	return Build(n, UpperTriangular, s)
}

// ToeplitzFromSet builds T_{n,S}: cell (i,j) is +1 iff j−i ∈ s.
func ToeplitzFromSet(n int, s IndexSet) (*Dense, error) { return Build(n, Toeplitz, s) }

// CirculantFromSet builds C_{n,S}: cell (i,j) is +1 iff (j−i) mod n ∈ s.
func CirculantFromSet(n int, s IndexSet) (*Dense, error) { return Build(n, Circulant, s) }

// TriangularToeplitzFromSet builds an upper-triangular Toeplitz matrix.
// s must contain every negative offset −(n−1)..−1.
func TriangularToeplitzFromSet(n int, s IndexSet) (*Dense, error) {
	return Build(n, TriangularToeplitz, s)
}

// HankelFromSet builds the upper-triangular Hankel matrix: for i ≤ j the cell
// is +1 iff i+j ∈ s; every cell below the diagonal is +1.
func HankelFromSet(n int, s IndexSet) (*Dense, error) { return Build(n, TriangularHankel, s) }

// RandomSet draws a uniformly random valid index set of family f: every free
// index is included with probability 1/2, mandatory indices are always present.
// If rng is nil a deterministic default stream (seed 1) is used.
func RandomSet(n int, f Family, rng *rand.Rand) (IndexSet, error) {
	if err := ValidateOrder(n); err != nil {
		return nil, builderErrorf(f, n, err)
	}
	if !f.Valid() {
		return nil, builderErrorf(f, n, ErrUnknownFamily)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	out := append([]int(nil), f.Mandatory(n)...)
	for _, idx := range f.Free(n) {
		if rng.Intn(2) == 1 {
			out = append(out, idx)
		}
	}

	return Canonical(out), nil
}

// NewRandom builds a random member of family f (see RandomSet).
func NewRandom(n int, f Family, rng *rand.Rand) (*Dense, error) {
	s, err := RandomSet(n, f, rng)
	if err != nil {
		return nil, err
	}

	return Build(n, f, s)
}

// NewUpperTriangular returns a random n×n ±1 matrix whose strictly-lower
// triangle is +1 and whose upper triangle (diagonal included) is uniformly ±1.
// seed==0 selects the default seed 1.
func NewUpperTriangular(n int, seed int64) (*Dense, error) {
	if seed == 0 {
		seed = 1
	}

	return NewRandom(n, UpperTriangular, rand.New(rand.NewSource(seed)))
}

// OnesCount returns how many +1 cells Build(n, f, s) would produce, computed
// from the family table without materialising the matrix.
// Complexity: O(|s| + |mandatory|·log|s|).
func OnesCount(n int, f Family, s IndexSet) (int, error) {
	if err := ValidateOrder(n); err != nil {
		return 0, builderErrorf(f, n, err)
	}
	if !f.Valid() {
		return 0, builderErrorf(f, n, ErrUnknownFamily)
	}
	if err := ValidateIndexSet(n, f, s); err != nil {
		return 0, builderErrorf(f, n, err)
	}
	cnt := f.FixedOnes(n)
	for _, idx := range Canonical(s) {
		cnt += f.Weight(n, idx)
	}

	return cnt, nil
}

// OnesRatio returns OnesCount / n².
func OnesRatio(n int, f Family, s IndexSet) (float64, error) {
	cnt, err := OnesCount(n, f, s)
	if err != nil {
		return 0, err
	}

	return float64(cnt) / float64(n*n), nil
}
