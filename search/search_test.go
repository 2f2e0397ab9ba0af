package search_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
	"github.com/stretchr/testify/require"
)

// bruteMin computes the minimum positive permanent over the whole space.
func bruteMin(t *testing.T, n int, f matrix.Family) (*big.Int, uint64) {
	t.Helper()
	sp, err := indexset.NewSpace(n, f)
	require.NoError(t, err)
	var (
		best  *big.Int
		count uint64
	)
	for _, s := range sp.All() {
		m, err := matrix.Build(n, f, s)
		require.NoError(t, err)
		p, err := permanent.Compute(m)
		require.NoError(t, err)
		count++
		if p.Sign() > 0 && (best == nil || p.Cmp(best) < 0) {
			best = p
		}
	}
	return best, count
}

func TestExhaustiveMatchesBruteForce(t *testing.T) {
	cases := []struct {
		n int
		f matrix.Family
	}{
		{4, matrix.TriangularToeplitz},
		{4, matrix.TriangularHankel},
		{4, matrix.Toeplitz},
		{5, matrix.Circulant},
		{2, matrix.Full},
		{3, matrix.UpperTriangular},
	}
	for _, tc := range cases {
		t.Run(tc.f.String(), func(t *testing.T) {
			want, count := bruteMin(t, tc.n, tc.f)
			res, err := search.Run(context.Background(), search.Config{N: tc.n, Family: tc.f})
			require.NoError(t, err)
			require.Equal(t, search.Completed, res.Stop)
			require.Equal(t, count, res.Examined)
			require.Equal(t, count, res.Positive+res.Zero+res.Negative)
			require.True(t, res.Found)
			require.Equal(t, 0, want.Cmp(res.BestPermanent))
			require.NotEmpty(t, res.RunID)

			// the reported set reproduces the reported value
			m, err := matrix.Build(tc.n, tc.f, res.BestSet)
			require.NoError(t, err)
			p, err := permanent.Compute(m)
			require.NoError(t, err)
			require.Equal(t, 0, p.Cmp(res.BestPermanent))
		})
	}
}

// TestZeroPermanentNeverBest: a window holding only a zero-permanent matrix
// reports Found=false instead of a best of 0.
func TestZeroPermanentNeverBest(t *testing.T) {
	sp, err := indexset.NewSpace(2, matrix.Toeplitz)
	require.NoError(t, err)
	zeroSet := matrix.NewIndexSet(0, 1) // [[1,1],[-1,1]]
	rank, err := sp.Rank(zeroSet)
	require.NoError(t, err)

	res, err := search.Run(context.Background(), search.Config{
		N: 2, Family: matrix.Toeplitz,
		Window: &indexset.Window{Lo: rank, Hi: rank + 1},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.Examined)
	require.Equal(t, uint64(1), res.Zero)
	require.False(t, res.Found)
	require.Nil(t, res.BestPermanent)
	require.Nil(t, res.BestSet)
	require.False(t, res.MatchesConjecture())
}

func TestEarlyStopAtConjecture(t *testing.T) {
	res, err := search.Run(context.Background(), search.Config{
		N: 3, Family: matrix.TriangularToeplitz, EarlyStop: true,
	})
	require.NoError(t, err)
	require.Equal(t, search.Target, res.Stop)
	require.True(t, res.MatchesConjecture())
	require.Equal(t, big.NewInt(2), res.BestPermanent)
	require.LessOrEqual(t, res.Examined, uint64(8))
}

func TestFilterCountsSkipped(t *testing.T) {
	r := indexset.Between(0.5, 0.8)
	res, err := search.Run(context.Background(), search.Config{
		N: 5, Family: matrix.TriangularHankel, Filter: &r,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1<<9), res.Examined+res.Skipped)
	require.Positive(t, res.Skipped)
}

func TestWindowsSumToWhole(t *testing.T) {
	const n = 4
	whole, err := search.Run(context.Background(), search.Config{N: n, Family: matrix.TriangularHankel})
	require.NoError(t, err)

	sp, err := indexset.NewSpace(n, matrix.TriangularHankel)
	require.NoError(t, err)
	ws, err := sp.Partition(5)
	require.NoError(t, err)
	var (
		examined uint64
		best     *big.Int
	)
	for _, w := range ws {
		w := w
		res, err := search.Run(context.Background(), search.Config{N: n, Family: matrix.TriangularHankel, Window: &w})
		require.NoError(t, err)
		examined += res.Examined
		if res.Found && (best == nil || res.BestPermanent.Cmp(best) < 0) {
			best = res.BestPermanent
		}
	}
	require.Equal(t, whole.Examined, examined)
	require.Equal(t, 0, whole.BestPermanent.Cmp(best))
}

func TestRandomSamplesAndDedupe(t *testing.T) {
	res, err := search.Run(context.Background(), search.Config{
		N: 6, Family: matrix.TriangularToeplitz, Strategy: search.Random, Samples: 20, Seed: 5,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(20), res.Examined)
	require.Equal(t, search.Completed, res.Stop)

	// independent draws by default: every sample is evaluated and counted
	res, err = search.Run(context.Background(), search.Config{
		N: 4, Family: matrix.TriangularToeplitz, Strategy: search.Random, Samples: 1000, Distribution: true,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1000), res.Examined)
	require.Zero(t, res.Duplicates)
	var total uint64
	for _, vc := range res.SortedDistribution() {
		total += vc.Count
	}
	require.Equal(t, uint64(1000), total)

	// with dedupe, more samples than sets: each set once, then the run completes
	res, err = search.Run(context.Background(), search.Config{
		N: 4, Family: matrix.TriangularToeplitz, Strategy: search.Random, Samples: 1000,
		DedupeLimit: search.DefaultDedupeLimit,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(16), res.Examined)
	require.Equal(t, search.Completed, res.Stop)
	require.Positive(t, res.Duplicates)

	_, err = search.Run(context.Background(), search.Config{
		N: 4, Family: matrix.TriangularToeplitz, Strategy: search.Random, Samples: 10,
		DedupeLimit: 100, Distribution: true,
	})
	require.ErrorIs(t, err, search.ErrInvalidConfig)
}

func TestRandomDeterministicBySeed(t *testing.T) {
	cfg := search.Config{N: 7, Family: matrix.Toeplitz, Strategy: search.Random, Samples: 30, Seed: 99}
	a, err := search.Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := search.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, a.BestSet, b.BestSet)
	require.Equal(t, 0, a.BestPermanent.Cmp(b.BestPermanent))
}

func TestRandomFilterStarved(t *testing.T) {
	r := indexset.Below(0)
	res, err := search.Run(context.Background(), search.Config{
		N: 5, Family: matrix.TriangularToeplitz, Strategy: search.Random,
		Samples: 10, Filter: &r, MaxRejects: 50, DedupeLimit: -1,
	})
	require.NoError(t, err)
	require.Equal(t, search.FilterStarved, res.Stop)
	require.Zero(t, res.Examined)
	require.Equal(t, uint64(50), res.Skipped)
}

func TestRandomTimeBudget(t *testing.T) {
	res, err := search.Run(context.Background(), search.Config{
		N: 6, Family: matrix.Toeplitz, Strategy: search.Random,
		TimeBudget: 30 * time.Millisecond, DedupeLimit: -1,
	})
	require.NoError(t, err)
	require.Equal(t, search.Budget, res.Stop)
	require.Positive(t, res.Examined)
}

func TestAnneal(t *testing.T) {
	cfg := search.Config{
		N: 7, Family: matrix.Toeplitz, Strategy: search.Anneal,
		Iterations: 150, Flips: 2, Temperature: 1.5, Cooling: 0.98, Seed: 3,
	}
	a, err := search.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, search.Completed, a.Stop)
	require.True(t, a.Found)
	require.Positive(t, a.BestPermanent.Sign())
	require.LessOrEqual(t, a.Examined, uint64(151))
	require.LessOrEqual(t, a.Accepted, a.Examined)

	b, err := search.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, a.BestSet, b.BestSet)
	require.Equal(t, a.Accepted, b.Accepted)
}

func TestAnnealInitialSet(t *testing.T) {
	res, err := search.Run(context.Background(), search.Config{
		N: 3, Family: matrix.TriangularToeplitz, Strategy: search.Anneal,
		InitialSet: matrix.NewIndexSet(-2, -1, 0, 2), Iterations: 10,
	})
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, big.NewInt(2), res.BestPermanent)

	r := indexset.Below(0.1)
	_, err = search.Run(context.Background(), search.Config{
		N: 3, Family: matrix.Toeplitz, Strategy: search.Anneal,
		InitialSet: matrix.NewIndexSet(0, 1, 2), Iterations: 10, Filter: &r,
	})
	require.ErrorIs(t, err, search.ErrInitialRejected)
}

func TestCanceledRunIsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := search.Run(ctx, search.Config{N: 4, Family: matrix.Toeplitz})
	require.NoError(t, err)
	require.Equal(t, search.Canceled, res.Stop)
	require.Zero(t, res.Examined)
}

func TestObserverHooks(t *testing.T) {
	var evaluated, improved, progressed atomic.Int64
	obs := search.ObserverFuncs{
		Evaluated:   func(search.Evaluation) { evaluated.Add(1) },
		Improvement: func(search.Evaluation) { improved.Add(1) },
		Progressed:  func(search.Progress) { progressed.Add(1) },
	}
	res, err := search.Run(context.Background(), search.Config{N: 4, Family: matrix.TriangularHankel, Distribution: true},
		search.WithObserver(obs), search.WithProgressEvery(10), search.WithRunID("run-1"))
	require.NoError(t, err)
	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, int64(res.Examined), evaluated.Load())
	require.Equal(t, int64(res.Improvements+1), improved.Load())
	require.GreaterOrEqual(t, progressed.Load(), int64(res.Examined/10))

	var total uint64
	for _, vc := range res.SortedDistribution() {
		total += vc.Count
	}
	require.Equal(t, res.Examined, total)
}

func TestConfigValidation(t *testing.T) {
	ctx := context.Background()
	_, err := search.Run(ctx, search.Config{N: 0, Family: matrix.Toeplitz})
	require.ErrorIs(t, err, search.ErrInvalidConfig)

	_, err = search.Run(ctx, search.Config{N: 4, Family: matrix.Toeplitz, Strategy: search.Random})
	require.ErrorIs(t, err, search.ErrInvalidConfig)

	_, err = search.Run(ctx, search.Config{N: 4, Family: matrix.Circulant, Strategy: search.Anneal, Iterations: 5})
	require.ErrorIs(t, err, search.ErrStrategyUnsupported)

	_, err = search.Run(ctx, search.Config{N: 8, Family: matrix.Full})
	require.ErrorIs(t, err, search.ErrStrategyUnsupported)

	_, err = search.Run(ctx, search.Config{N: 3, Family: matrix.Toeplitz, Window: &indexset.Window{Lo: 0, Hi: 1000}})
	require.ErrorIs(t, err, search.ErrInvalidConfig)

	_, err = search.Run(ctx, search.Config{N: 3, Family: matrix.Toeplitz}, search.WithProgressEvery(0))
	require.ErrorIs(t, err, search.ErrOptionViolation)
}

func TestNegativeTargetReported(t *testing.T) {
	var (
		buf   bytes.Buffer
		first []matrix.IndexSet
	)
	obs := search.ObserverFuncs{
		NegativeTarget: func(e search.Evaluation) { first = append(first, e.Set) },
	}
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	res, err := search.Run(context.Background(), search.Config{N: 3, Family: matrix.TriangularToeplitz},
		search.WithObserver(obs), search.WithLogger(logger))
	require.NoError(t, err)

	// ranks 1, 2 and 6 give −2 = −Kräuter(3); only the first is announced
	require.Equal(t, uint64(3), res.NegativeTargetHits)
	require.Equal(t, matrix.NewIndexSet(-2, -1, 0), res.NegativeTargetSet)
	require.Equal(t, []matrix.IndexSet{matrix.NewIndexSet(-2, -1, 0)}, first)
	require.Equal(t, 1, strings.Count(buf.String(), "minus the Kräuter conjecture"))
}

func TestSubspaceExhaustive(t *testing.T) {
	cases := []struct {
		k    indexset.Subspace
		want uint64
	}{
		{indexset.Sparse, 99},
		{indexset.Symmetric, 16},
		{indexset.Continuous, 28},
	}
	for _, tc := range cases {
		t.Run(tc.k.String(), func(t *testing.T) {
			res, err := search.Run(context.Background(), search.Config{N: 4, Family: matrix.Toeplitz, Subspace: tc.k})
			require.NoError(t, err)
			require.Equal(t, tc.want, res.Examined)
			require.Equal(t, tc.k, res.Subspace)
			require.True(t, res.Complete())
			if res.Found {
				require.True(t, tc.k.Predicate(4)(res.BestSet))
			}
		})
	}

	ctx := context.Background()
	_, err := search.Run(ctx, search.Config{N: 4, Family: matrix.Circulant, Subspace: indexset.Sparse})
	require.ErrorIs(t, err, search.ErrStrategyUnsupported)
	_, err = search.Run(ctx, search.Config{N: 4, Family: matrix.Toeplitz, Strategy: search.Random, Samples: 5,
		Subspace: indexset.Sparse})
	require.ErrorIs(t, err, search.ErrInvalidConfig)
}

func TestResultComplete(t *testing.T) {
	cases := []struct {
		strategy search.Strategy
		stop     search.StopReason
		want     bool
	}{
		{search.Exhaustive, search.Completed, true},
		{search.Exhaustive, search.Target, true},
		{search.Exhaustive, search.Budget, false},
		{search.Exhaustive, search.Canceled, false},
		{search.Exhaustive, search.FilterStarved, false},
		{search.Random, search.Budget, true},
		{search.Random, search.Canceled, false},
		{search.Anneal, search.Completed, true},
	}
	for _, tc := range cases {
		r := search.Result{Strategy: tc.strategy, Stop: tc.stop}
		require.Equal(t, tc.want, r.Complete(), "%s/%s", tc.strategy, tc.stop)
	}

	res, err := search.Run(context.Background(), search.Config{N: 12, Family: matrix.Toeplitz, TimeBudget: time.Nanosecond})
	require.NoError(t, err)
	require.Equal(t, search.Budget, res.Stop)
	require.False(t, res.Complete())
}

func TestEstimateExhaustive(t *testing.T) {
	est, err := search.EstimateExhaustive(context.Background(), 6, matrix.TriangularHankel, 5, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<11), est.SpaceSize)
	require.GreaterOrEqual(t, est.Projected, est.PerMatrix)
	require.Equal(t, "45.0s", search.HumanDuration(45*time.Second))
	require.Equal(t, "1.5m", search.HumanDuration(90*time.Second))
}
