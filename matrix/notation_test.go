package matrix_test

import (
	"testing"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/stretchr/testify/require"
)

func TestParseNotation(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		f    matrix.Family
		want matrix.IndexSet
	}{
		{"T_7{-6,-1..7}", 7, matrix.Toeplitz, matrix.NewIndexSet(-6, -1, 0, 1, 2, 3, 4, 5, 6)},
		{"C_7{2..5}", 7, matrix.Circulant, matrix.NewIndexSet(2, 3, 4, 5)},
		{"C_{20}{0,1,5}", 20, matrix.Circulant, matrix.NewIndexSet(0, 1, 5)},
		{"H_4{0, 2, 4..10}", 4, matrix.TriangularHankel, matrix.NewIndexSet(0, 2, 4, 5, 6)},
		{"T_5{}", 5, matrix.Toeplitz, matrix.IndexSet{}},
		{"t_3{∅}", 3, matrix.Toeplitz, matrix.IndexSet{}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			n, f, s, err := matrix.ParseNotation(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.n, n)
			require.Equal(t, tc.f, f)
			require.Equal(t, tc.want, s)
		})
	}
}

func TestParseNotationErrors(t *testing.T) {
	for _, in := range []string{"", "T7{1}", "T_7{1", "T_7{a}", "T_7{5..2}"} {
		_, _, _, err := matrix.ParseNotation(in)
		require.ErrorIs(t, err, matrix.ErrBadNotation, in)
	}
	_, _, _, err := matrix.ParseNotation("Q_3{1}")
	require.ErrorIs(t, err, matrix.ErrUnknownFamily)

	_, _, _, err = matrix.ParseNotation("T_0{0}")
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestFormatNotationRoundTrip(t *testing.T) {
	for _, f := range matrix.Families() {
		s := matrix.NewIndexSet(f.Free(4)[:2]...)
		txt := matrix.FormatNotation(4, f, s)
		n, g, back, err := matrix.ParseNotation(txt)
		require.NoError(t, err, txt)
		require.Equal(t, 4, n)
		require.Equal(t, f, g)
		require.Equal(t, s, back)
	}
}
