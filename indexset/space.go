// Package indexset enumerates the index sets of a matrix family.
//
// A Space is derived from the family table (matrix.Family): its free positions
// are the domain indices that are not mandatory. Rank r ∈ [0, 2^free) selects
// the set  mandatory ∪ { free[b] : bit b of r is set }.
// Rank order is the canonical enumeration order; shards slice it by rank.
package indexset

import (
	"errors"
	"fmt"
	"iter"
	"math/rand"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// MaxFree is the largest free-position count a Space can rank (2^62 sets).
const MaxFree = 62

var (
	// ErrSpaceTooLarge: the family has more than MaxFree free positions for n,
	// so sets cannot be ranked in a uint64. Random draws still work.
	ErrSpaceTooLarge = errors.New("indexset: space too large to enumerate")

	// ErrRankOutOfRange: rank ≥ Size().
	ErrRankOutOfRange = errors.New("indexset: rank out of range")

	// ErrBadWindow: window bounds are inverted or beyond Size().
	ErrBadWindow = errors.New("indexset: invalid rank window")

	// ErrBadRange: ratio range is malformed.
	ErrBadRange = errors.New("indexset: invalid ratio range")

	// ErrNotMember: a set does not belong to the space (domain or mandatory violation).
	ErrNotMember = errors.New("indexset: set not in space")
)

// Space is the universe of valid index sets for one (n, family) pair.
// It is immutable and safe for concurrent use; iterators are restartable.
type Space struct {
	n         int
	family    matrix.Family
	free      []int
	mandatory []int
	pos       map[int]int // free index → bit position
}

// NewSpace derives the space of family f at order n.
func NewSpace(n int, f matrix.Family) (*Space, error) {
	if err := matrix.ValidateOrder(n); err != nil {
		return nil, fmt.Errorf("NewSpace: %w", err)
	}
	if !f.Valid() {
		return nil, fmt.Errorf("NewSpace: %w", matrix.ErrUnknownFamily)
	}
	s := &Space{
		n:         n,
		family:    f,
		free:      f.Free(n),
		mandatory: f.Mandatory(n),
	}
	s.pos = make(map[int]int, len(s.free))
	for b, idx := range s.free {
		s.pos[idx] = b
	}

	return s, nil
}

// N returns the matrix order.
func (s *Space) N() int { return s.n }

// Family returns the matrix family.
func (s *Space) Family() matrix.Family { return s.family }

// FreeSize returns the number of free positions.
func (s *Space) FreeSize() int { return len(s.free) }

// Enumerable reports whether the space can be ranked (FreeSize ≤ MaxFree).
func (s *Space) Enumerable() bool { return len(s.free) <= MaxFree }

// Size returns 2^FreeSize, or ErrSpaceTooLarge.
func (s *Space) Size() (uint64, error) {
	if !s.Enumerable() {
		return 0, fmt.Errorf("Space(%s,n=%d): %d free: %w", s.family, s.n, len(s.free), ErrSpaceTooLarge)
	}

	return uint64(1) << uint(len(s.free)), nil
}

// At returns the set of the given rank.
// Complexity: O(|domain|).
func (s *Space) At(rank uint64) (matrix.IndexSet, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	if rank >= size {
		return nil, fmt.Errorf("Space.At(%d): %w", rank, ErrRankOutOfRange)
	}

	return s.compose(rank), nil
}

// compose merges mandatory indices with the free indices selected by rank.
func (s *Space) compose(rank uint64) matrix.IndexSet {
	var (
		out  = make(matrix.IndexSet, 0, len(s.mandatory)+len(s.free))
		i, b int
	)
	for i < len(s.mandatory) || b < len(s.free) {
		// skip unselected free positions
		if b < len(s.free) && rank&(1<<uint(b)) == 0 {
			b++
			continue
		}
		switch {
		case b >= len(s.free):
			out = append(out, s.mandatory[i])
			i++
		case i >= len(s.mandatory) || s.free[b] < s.mandatory[i]:
			out = append(out, s.free[b])
			b++
		default:
			out = append(out, s.mandatory[i])
			i++
		}
	}

	return out
}

// Rank returns the rank of a member set. The set is validated against the
// family first, so a set outside the space reports ErrNotMember.
func (s *Space) Rank(set matrix.IndexSet) (uint64, error) {
	if _, err := s.Size(); err != nil {
		return 0, err
	}
	if err := matrix.ValidateIndexSet(s.n, s.family, set); err != nil {
		return 0, fmt.Errorf("Space.Rank: %w: %w", ErrNotMember, err)
	}
	var rank uint64
	for _, idx := range set {
		if b, ok := s.pos[idx]; ok {
			rank |= 1 << uint(b)
		}
	}

	return rank, nil
}

// Contains reports whether set is a valid member of the space.
func (s *Space) Contains(set matrix.IndexSet) bool {
	return matrix.ValidateIndexSet(s.n, s.family, set) == nil
}

// All yields every (rank, set) pair in rank order. Spaces that are not
// Enumerable yield nothing; check Size first.
func (s *Space) All() iter.Seq2[uint64, matrix.IndexSet] {
	size, err := s.Size()
	if err != nil {
		return func(func(uint64, matrix.IndexSet) bool) {}
	}

	return s.window(0, size)
}

// Window yields the ranks [lo, hi) in order.
func (s *Space) Window(lo, hi uint64) (iter.Seq2[uint64, matrix.IndexSet], error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	if lo > hi || hi > size {
		return nil, fmt.Errorf("Space.Window(%d,%d) size %d: %w", lo, hi, size, ErrBadWindow)
	}

	return s.window(lo, hi), nil
}

func (s *Space) window(lo, hi uint64) iter.Seq2[uint64, matrix.IndexSet] {
	return func(yield func(uint64, matrix.IndexSet) bool) {
		for r := lo; r < hi; r++ {
			if !yield(r, s.compose(r)) {
				return
			}
		}
	}
}

// Sets drops the ranks from seq.
func Sets(seq iter.Seq2[uint64, matrix.IndexSet]) iter.Seq[matrix.IndexSet] {
	return func(yield func(matrix.IndexSet) bool) {
		for _, set := range seq {
			if !yield(set) {
				return
			}
		}
	}
}

// Random draws a uniformly random member: each free position is included
// with probability 1/2. Works for spaces of any size.
func (s *Space) Random(rng *rand.Rand) matrix.IndexSet {
	out := make([]int, 0, len(s.mandatory)+len(s.free))
	out = append(out, s.mandatory...)
	for _, idx := range s.free {
		if rng.Int63()&1 == 1 {
			out = append(out, idx)
		}
	}

	return matrix.Canonical(out)
}

// Toggle returns a neighbour of set: flips times a uniformly chosen free
// position is toggled (the same position may be chosen twice and cancel).
// Mandatory indices are never touched, so the result stays in the space.
func (s *Space) Toggle(set matrix.IndexSet, rng *rand.Rand, flips int) matrix.IndexSet {
	if len(s.free) == 0 {
		return matrix.Canonical(set)
	}
	in := make(map[int]bool, len(set)+flips)
	for _, idx := range set {
		in[idx] = true
	}
	for k := 0; k < flips; k++ {
		idx := s.free[rng.Intn(len(s.free))]
		in[idx] = !in[idx]
	}
	out := make([]int, 0, len(in))
	for idx, ok := range in {
		if ok {
			out = append(out, idx)
		}
	}

	return matrix.Canonical(out)
}

// Window is a half-open rank interval [Lo, Hi).
type Window struct {
	Lo, Hi uint64
}

// Len returns Hi − Lo.
func (w Window) Len() uint64 { return w.Hi - w.Lo }

// Partition splits the rank space into k contiguous disjoint windows whose
// lengths differ by at most one; their union is [0, Size()). If k exceeds the
// space size, only Size() windows are returned.
func (s *Space) Partition(k int) ([]Window, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, fmt.Errorf("Space.Partition(%d): %w", k, ErrBadWindow)
	}
	if uint64(k) > size {
		k = int(size)
	}
	var (
		out   = make([]Window, k)
		base  = size / uint64(k)
		extra = size % uint64(k)
		lo    uint64
	)
	for i := 0; i < k; i++ {
		l := base
		if uint64(i) < extra {
			l++
		}
		out[i] = Window{Lo: lo, Hi: lo + l}
		lo += l
	}

	return out, nil
}

// UpperTriangularToeplitz enumerates the 2^n index sets of n×n upper-triangular
// Toeplitz matrices: all negative offsets plus any subset of 0..n−1.
func UpperTriangularToeplitz(n int) (iter.Seq[matrix.IndexSet], error) {
	sp, err := NewSpace(n, matrix.TriangularToeplitz)
	if err != nil {
		return nil, err
	}
	if _, err = sp.Size(); err != nil {
		return nil, err
	}

	return Sets(sp.All()), nil
}

// UpperTriangularHankel enumerates the 2^(2n−1) index sets of n×n
// upper-triangular Hankel matrices: every subset of 0..2n−2.
func UpperTriangularHankel(n int) (iter.Seq[matrix.IndexSet], error) {
	sp, err := NewSpace(n, matrix.TriangularHankel)
	if err != nil {
		return nil, err
	}
	if _, err = sp.Size(); err != nil {
		return nil, err
	}

	return Sets(sp.All()), nil
}
