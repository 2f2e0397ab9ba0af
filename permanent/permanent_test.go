package permanent_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
	"github.com/stretchr/testify/require"
)

// literal is a Matrix fixture that may hold arbitrary integers.
type literal [][]int

func (l literal) Rows() int { return len(l) }
func (l literal) Cols() int {
	if len(l) == 0 {
		return 0
	}
	return len(l[0])
}
func (l literal) At(i, j int) (int, error) { return l[i][j], nil }

func mustRows(t *testing.T, rows [][]int) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	return m
}

func factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(n))
}

func TestKnownValues(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		want int64
	}{
		{"1x1 plus", [][]int{{1}}, 1},
		{"1x1 minus", [][]int{{-1}}, -1},
		{"2x2 hadamard", [][]int{{1, 1}, {1, -1}}, 0},
		{"2x2 ones", [][]int{{1, 1}, {1, 1}}, 2},
		{"3x3 ones", [][]int{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, 6},
		{"3x3 one minus", [][]int{{-1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, 2},
		{"hankel 3 {0,2,4}", [][]int{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mustRows(t, tc.rows)
			for _, method := range []permanent.Method{permanent.Ryser, permanent.Naive} {
				got, err := permanent.Compute(m, permanent.WithMethod(method))
				require.NoError(t, err)
				require.Equal(t, big.NewInt(tc.want), got, method.String())
			}
		})
	}
}

// TestAllOnesFactorial exercises both int64 and big.Int product paths.
func TestAllOnesFactorial(t *testing.T) {
	for _, n := range []int{4, 9, 15, 16} {
		m, err := matrix.NewDense(n, n)
		require.NoError(t, err)
		got, err := permanent.Compute(m)
		require.NoError(t, err)
		require.Equal(t, 0, factorial(n).Cmp(got), "n=%d got %s", n, got)
	}
}

// TestRyserMatchesNaiveAcrossFamilies cross-checks both methods on random
// members of every family for n ≤ 8.
func TestRyserMatchesNaiveAcrossFamilies(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, f := range matrix.Families() {
		for n := 1; n <= 8; n++ {
			reps := 6
			if n >= 7 {
				reps = 2
			}
			for r := 0; r < reps; r++ {
				m, err := matrix.NewRandom(n, f, rng)
				require.NoError(t, err)
				ry, err := permanent.Compute(m)
				require.NoError(t, err)
				nv, err := permanent.Compute(m, permanent.WithMethod(permanent.Naive))
				require.NoError(t, err)
				require.Equal(t, 0, ry.Cmp(nv), "%s n=%d\n%s", f, n, m)
			}
		}
	}
}

func TestComputeDoesNotMutate(t *testing.T) {
	rows := [][]int{{1, -1, 1}, {-1, 1, 1}, {1, 1, -1}}
	m := mustRows(t, rows)
	_, err := permanent.Compute(m)
	require.NoError(t, err)
	require.Equal(t, rows, m.Rows2D())
}

func TestComputeErrors(t *testing.T) {
	_, err := permanent.Compute(nil)
	require.ErrorIs(t, err, permanent.ErrNilMatrix)

	_, err = permanent.Compute(mustRows(t, [][]int{{1, 1, 1}, {1, 1, 1}}))
	require.ErrorIs(t, err, permanent.ErrNonSquare)

	_, err = permanent.Compute(literal{{1, 2}, {1, 1}})
	require.ErrorIs(t, err, matrix.ErrNotSign)

	big13, err := matrix.NewDense(13, 13)
	require.NoError(t, err)
	_, err = permanent.Compute(big13, permanent.WithMethod(permanent.Naive))
	require.ErrorIs(t, err, permanent.ErrOrderTooLarge)

	_, err = permanent.Compute(big13, permanent.WithMethod(permanent.Method(9)))
	require.ErrorIs(t, err, permanent.ErrOptionViolation)
}

func TestComputeCanceled(t *testing.T) {
	m, err := matrix.NewDense(20, 20)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = permanent.ComputeContext(ctx, m)
	require.ErrorIs(t, err, context.Canceled)
}

func TestVerboseTrace(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := mustRows(t, [][]int{{1, 1}, {1, -1}})
	_, err := permanent.Compute(m, permanent.WithLogger(log))
	require.NoError(t, err)
	out := buf.String()
	require.True(t, strings.Contains(out, "permanent: start"))
	require.Equal(t, 3, strings.Count(out, "gray step"))
	require.True(t, strings.Contains(out, "value=0"))
}

func TestParseMethod(t *testing.T) {
	m, err := permanent.ParseMethod("naive")
	require.NoError(t, err)
	require.Equal(t, permanent.Naive, m)
	_, err = permanent.ParseMethod("glynn")
	require.ErrorIs(t, err, permanent.ErrUnknownMethod)
}
