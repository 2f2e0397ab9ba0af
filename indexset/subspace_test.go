package indexset_test

import (
	"testing"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/stretchr/testify/require"
)

func TestSubspaceCount(t *testing.T) {
	cases := []struct {
		k    indexset.Subspace
		n    int
		want uint64
	}{
		{indexset.Sparse, 1, 2},
		{indexset.Sparse, 3, 26},
		{indexset.Sparse, 4, 99},
		{indexset.Sparse, 5, 382},
		{indexset.Symmetric, 3, 8},
		{indexset.Symmetric, 6, 64},
		{indexset.Continuous, 1, 1},
		{indexset.Continuous, 3, 15},
		{indexset.Continuous, 4, 28},
		{indexset.AllSets, 3, 32},
	}
	for _, tc := range cases {
		got, err := tc.k.Count(tc.n, matrix.Toeplitz)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s n=%d", tc.k, tc.n)
	}
}

// TestSubspaceSetsMatchPredicate: the enumeration yields Count distinct
// canonical sets, and they are exactly the Toeplitz sets the predicate keeps.
func TestSubspaceSetsMatchPredicate(t *testing.T) {
	for _, k := range []indexset.Subspace{indexset.Sparse, indexset.Symmetric, indexset.Continuous} {
		for n := 1; n <= 5; n++ {
			want, err := k.Count(n, matrix.Toeplitz)
			require.NoError(t, err)
			seq, err := k.Sets(n, matrix.Toeplitz)
			require.NoError(t, err)

			keep := k.Predicate(n)
			seen := make(map[string]bool)
			for s := range seq {
				require.Equal(t, matrix.Canonical(s), s, "%s n=%d", k, n)
				require.NoError(t, matrix.ValidateIndexSet(n, matrix.Toeplitz, s))
				require.True(t, keep(s), "%s n=%d %s", k, n, s)
				require.False(t, seen[s.String()], "%s n=%d duplicate %s", k, n, s)
				seen[s.String()] = true
			}
			require.Len(t, seen, int(want), "%s n=%d", k, n)

			sp, err := indexset.NewSpace(n, matrix.Toeplitz)
			require.NoError(t, err)
			var kept int
			for _, s := range sp.All() {
				if keep(s) {
					kept++
					require.True(t, seen[s.String()], "%s n=%d missing %s", k, n, s)
				}
			}
			require.Equal(t, int(want), kept)
		}
	}
}

func TestSubspaceOrder(t *testing.T) {
	first := func(k indexset.Subspace, n, count int) []matrix.IndexSet {
		seq, err := k.Sets(n, matrix.Toeplitz)
		require.NoError(t, err)
		var out []matrix.IndexSet
		for s := range seq {
			if len(out) == count {
				break
			}
			out = append(out, s)
		}
		return out
	}

	require.Equal(t, []matrix.IndexSet{
		matrix.NewIndexSet(),
		matrix.NewIndexSet(-2),
		matrix.NewIndexSet(-1),
	}, first(indexset.Sparse, 3, 3))
	require.Equal(t, []matrix.IndexSet{
		matrix.NewIndexSet(),
		matrix.NewIndexSet(-1, 1),
		matrix.NewIndexSet(-2, 2),
		matrix.NewIndexSet(-2, -1, 1, 2),
		matrix.NewIndexSet(0),
	}, first(indexset.Symmetric, 3, 5))
	require.Equal(t, []matrix.IndexSet{
		{-2},
		{-2, -1},
		{-2, -1, 0},
	}, first(indexset.Continuous, 3, 3))
}

func TestSubspaceRejects(t *testing.T) {
	for _, f := range []matrix.Family{matrix.Circulant, matrix.TriangularToeplitz, matrix.Full} {
		_, err := indexset.Sparse.Count(4, f)
		require.ErrorIs(t, err, indexset.ErrSubspaceFamily, f.String())
		_, err = indexset.Continuous.Sets(4, f)
		require.ErrorIs(t, err, indexset.ErrSubspaceFamily, f.String())
	}
	require.Error(t, indexset.Subspace(9).Check(matrix.Toeplitz))

	_, err := indexset.AllSets.Count(9, matrix.Full)
	require.ErrorIs(t, err, indexset.ErrSpaceTooLarge)
}

func TestParseSubspace(t *testing.T) {
	for _, k := range []indexset.Subspace{indexset.AllSets, indexset.Sparse, indexset.Symmetric, indexset.Continuous} {
		got, err := indexset.ParseSubspace(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	got, err := indexset.ParseSubspace("interval")
	require.NoError(t, err)
	require.Equal(t, indexset.Continuous, got)

	var k indexset.Subspace
	require.Error(t, k.UnmarshalText([]byte("diagonal")))
	require.NoError(t, k.UnmarshalText([]byte("symmetric")))
	require.Equal(t, indexset.Symmetric, k)
}
