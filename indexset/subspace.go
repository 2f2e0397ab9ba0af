package indexset

import (
	"errors"
	"fmt"
	"iter"
	"math/big"
	"slices"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// ErrSubspaceFamily: a restricted subspace was requested for a family other
// than plain Toeplitz.
var ErrSubspaceFamily = errors.New("indexset: subspace needs the toeplitz family")

// Subspace selects a structured slice of the Toeplitz offset sets
// S ⊆ {−(n−1), …, n−1}.
//
//	AllSets:    every set of the family (the whole Space)
//	Sparse:     |S| ≤ n, by size then lexicographically
//	Symmetric:  S = −S; sets without 0 first, then with 0
//	Continuous: non-empty intervals [a, b], by a then b
type Subspace int

const (
	AllSets Subspace = iota
	Sparse
	Symmetric
	Continuous
)

func (k Subspace) String() string {
	switch k {
	case AllSets:
		return "all"
	case Sparse:
		return "sparse"
	case Symmetric:
		return "symmetric"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("Subspace(%d)", int(k))
	}
}

// ParseSubspace resolves a subspace name.
func ParseSubspace(s string) (Subspace, error) {
	switch s {
	case "", "all":
		return AllSets, nil
	case "sparse":
		return Sparse, nil
	case "symmetric":
		return Symmetric, nil
	case "continuous", "interval":
		return Continuous, nil
	}

	return 0, fmt.Errorf("ParseSubspace(%q): unknown subspace", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Subspace) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Subspace) UnmarshalText(b []byte) error {
	v, err := ParseSubspace(string(b))
	if err != nil {
		return err
	}
	*k = v

	return nil
}

// Check reports whether k can be used with family f.
func (k Subspace) Check(f matrix.Family) error {
	switch {
	case k < AllSets || k > Continuous:
		return fmt.Errorf("Subspace.Check: %v: unknown subspace", k)
	case k != AllSets && f != matrix.Toeplitz:
		return fmt.Errorf("Subspace.Check(%s, %s): %w", k, f, ErrSubspaceFamily)
	}

	return nil
}

// Count returns the number of sets k yields at order n.
//
//	Sparse:     Σ_{j=0..n} C(2n−1, j)
//	Symmetric:  2^n
//	Continuous: n(2n−1)
//
// ErrSpaceTooLarge when the count does not fit a uint64.
func (k Subspace) Count(n int, f matrix.Family) (uint64, error) {
	if err := matrix.ValidateOrder(n); err != nil {
		return 0, fmt.Errorf("Subspace.Count: %w", err)
	}
	if err := k.Check(f); err != nil {
		return 0, err
	}
	var total big.Int
	switch k {
	case AllSets:
		sp, err := NewSpace(n, f)
		if err != nil {
			return 0, err
		}
		return sp.Size()
	case Sparse:
		var c big.Int
		for j := 0; j <= n; j++ {
			total.Add(&total, c.Binomial(int64(2*n-1), int64(j)))
		}
	case Symmetric:
		total.Lsh(big.NewInt(1), uint(n))
	case Continuous:
		total.SetInt64(int64(n) * int64(2*n-1))
	}
	if !total.IsUint64() {
		return 0, fmt.Errorf("Subspace.Count(%s, n=%d): %w", k, n, ErrSpaceTooLarge)
	}

	return total.Uint64(), nil
}

// Sets enumerates the sets of k at order n in the order documented on
// Subspace. The sequence is restartable.
func (k Subspace) Sets(n int, f matrix.Family) (iter.Seq[matrix.IndexSet], error) {
	if _, err := k.Count(n, f); err != nil {
		return nil, err
	}
	if k == AllSets {
		sp, _ := NewSpace(n, f)
		return Sets(sp.All()), nil
	}

	diffs := make([]int, 0, 2*n-1)
	for d := -(n - 1); d <= n-1; d++ {
		diffs = append(diffs, d)
	}
	positive := diffs[n:]

	switch k {
	case Sparse:
		return func(yield func(matrix.IndexSet) bool) {
			for size := 0; size <= n; size++ {
				if !combinations(diffs, size, func(c []int) bool {
					return yield(matrix.NewIndexSet(c...))
				}) {
					return
				}
			}
		}, nil
	case Symmetric:
		return func(yield func(matrix.IndexSet) bool) {
			for _, zero := range []bool{false, true} {
				for size := 0; size <= len(positive); size++ {
					if !combinations(positive, size, func(c []int) bool {
						s := make([]int, 0, 2*len(c)+1)
						for _, d := range c {
							s = append(s, d, -d)
						}
						if zero {
							s = append(s, 0)
						}
						return yield(matrix.NewIndexSet(s...))
					}) {
						return
					}
				}
			}
		}, nil
	default:
		return func(yield func(matrix.IndexSet) bool) {
			for a := -(n - 1); a <= n-1; a++ {
				for b := a; b <= n-1; b++ {
					s := make(matrix.IndexSet, 0, b-a+1)
					for d := a; d <= b; d++ {
						s = append(s, d)
					}
					if !yield(s) {
						return
					}
				}
			}
		}, nil
	}
}

// Predicate returns a filter accepting exactly the sets of k at order n.
// Sets are assumed to lie in the Toeplitz domain.
func (k Subspace) Predicate(n int) Predicate {
	switch k {
	case Sparse:
		return func(s matrix.IndexSet) bool { return len(s) <= n }
	case Symmetric:
		return func(s matrix.IndexSet) bool {
			for _, d := range s {
				if !s.Contains(-d) {
					return false
				}
			}
			return true
		}
	case Continuous:
		return func(s matrix.IndexSet) bool {
			c := matrix.Canonical(s)
			return len(c) > 0 && c[len(c)-1]-c[0] == len(c)-1
		}
	default:
		return func(matrix.IndexSet) bool { return true }
	}
}

// combinations calls visit with every k-subset of pool in lexicographic
// order of positions. It stops and returns false as soon as visit does.
func combinations(pool []int, k int, visit func([]int) bool) bool {
	if k > len(pool) {
		return true
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	out := make([]int, k)
	for {
		for i, p := range idx {
			out[i] = pool[p]
		}
		if !visit(slices.Clone(out)) {
			return false
		}
		i := k - 1
		for i >= 0 && idx[i] == len(pool)-k+i {
			i--
		}
		if i < 0 {
			return true
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
