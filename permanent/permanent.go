package permanent

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// Compute returns the exact permanent of the square ±1 matrix m.
// See ComputeContext.
func Compute(m matrix.Matrix, opts ...Option) (*big.Int, error) {
	return ComputeContext(context.Background(), m, opts...)
}

// ComputeContext returns the exact permanent of m, honoring ctx cancellation.
//
// Stage 1 (Options): apply options; report ErrOptionViolation.
// Stage 2 (Validate): non-nil → square → entries in {+1,−1}.
// Stage 3 (Prefetch): copy entries into a flat int64 buffer (no interface calls
// in the hot loop); m itself is never touched again.
// Stage 4 (Execute): dispatch to Ryser or Naive.
//
// Errors: ErrNilMatrix, ErrNonSquare, matrix.ErrNotSign, ErrOrderTooLarge,
// ErrOptionViolation, or ctx.Err() on cancellation.
func ComputeContext(ctx context.Context, m matrix.Matrix, opts ...Option) (*big.Int, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if err := matrix.ValidateSignSquare(m); err != nil {
		return nil, fmt.Errorf("permanent: %w", err)
	}

	n := m.Rows()
	if n == 0 {
		return nil, fmt.Errorf("permanent: %w", matrix.ErrInvalidDimensions)
	}
	a, err := prefetch(m)
	if err != nil {
		return nil, fmt.Errorf("permanent: %w", err)
	}
	if o.Logger != nil {
		o.Logger.Debug("permanent: start", slog.String("method", o.Method.String()), slog.Int("n", n),
			slog.Any("matrix", rowsOf(a, n)))
	}

	var res *big.Int
	switch o.Method {
	case Naive:
		res, err = naive(ctx, a, n, o.Logger)
	default:
		res, err = ryser(ctx, a, n, o.Logger)
	}
	if err != nil {
		return nil, err
	}
	if o.Logger != nil {
		o.Logger.Debug("permanent: done", slog.String("method", o.Method.String()), slog.String("value", res.String()))
	}

	return res, nil
}

// prefetch loads m into a row-major int64 buffer.
func prefetch(m matrix.Matrix) ([]int64, error) {
	var (
		i, j int
		v    int
		err  error
		n    = m.Rows()
	)
	a := make([]int64, n*n)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			a[i*n+j] = int64(v)
		}
	}

	return a, nil
}

// rowsOf re-slices a flat buffer for trace output.
func rowsOf(a []int64, n int) [][]int64 {
	out := make([][]int64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i*n : (i+1)*n]
	}

	return out
}
