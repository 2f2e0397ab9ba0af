package conjecture_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/conjecture"
	"github.com/stretchr/testify/require"
)

func TestKrauterKnownValues(t *testing.T) {
	want := map[int]int64{1: 1, 2: 2, 3: 2, 4: 4, 7: 16, 8: 32, 10: 128, 15: 2048}
	for n, w := range want {
		got, err := conjecture.Krauter(n)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(w), got, "n=%d", n)
	}
}

// TestKrauterMatchesFloatFormula compares against the textbook float formula
// on the range where float64 is exact.
func TestKrauterMatchesFloatFormula(t *testing.T) {
	for n := 1; n <= 60; n++ {
		e := n - int(math.Floor(math.Log2(float64(n+1))))
		got, err := conjecture.Krauter(n)
		require.NoError(t, err)
		require.Equal(t, new(big.Int).Lsh(big.NewInt(1), uint(e)), got, "n=%d", n)
	}
}

func TestKrauterInvalid(t *testing.T) {
	_, err := conjecture.Krauter(0)
	require.ErrorIs(t, err, conjecture.ErrInvalidOrder)
	_, err = conjecture.Exponent(-3)
	require.ErrorIs(t, err, conjecture.ErrInvalidOrder)
}

func TestCompare(t *testing.T) {
	v, err := conjecture.Compare(10, big.NewInt(128))
	require.NoError(t, err)
	require.Equal(t, conjecture.Matches, v)

	v, err = conjecture.Compare(10, big.NewInt(64))
	require.NoError(t, err)
	require.Equal(t, conjecture.Below, v)

	v, err = conjecture.Compare(10, big.NewInt(256))
	require.NoError(t, err)
	require.Equal(t, conjecture.Above, v)
	require.Equal(t, "above", v.String())
}
