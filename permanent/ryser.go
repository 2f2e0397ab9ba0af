// Package permanent — Ryser's formula in Gray-code order.
//
//	perm(A) = (−1)^n · Σ_{S ⊆ cols} (−1)^{|S|} · Π_i Σ_{j∈S} a_ij
//
// Walking the non-empty subsets in reflected Gray-code order changes S by one
// column per step, so the row sums are updated in O(n) instead of rebuilt:
//   - step k (1 ≤ k < 2^n) toggles column j = trailing zeros of k;
//   - the column is added if bit j of gray(k) = k ^ (k>>1) is set, else removed;
//   - |S| changes parity every step, so the term sign is (−1)^(n+k).
//
// Arithmetic:
//   - row sums are bounded by n and live in int64;
//   - for n ≤ 15 the product fits in int64 (n^n < 2^63), above that it is
//     formed in a big.Int;
//   - the running total is always a big.Int.
//   - a zero row sum makes the term vanish and skips the product.
//
// Complexity: O(2^n · n) time, O(n) memory.

package permanent

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"math/bits"
)

func ryser(ctx context.Context, a []int64, n int, log *slog.Logger) (*big.Int, error) {
	if n > MaxRyserOrder {
		return nil, fmt.Errorf("permanent: ryser n=%d > %d: %w", n, MaxRyserOrder, ErrOrderTooLarge)
	}
	var (
		rows    = make([]int64, n)
		total   = new(big.Int)
		term    = new(big.Int)
		factor  = new(big.Int)
		limit   = uint64(1) << uint(n)
		k, gray uint64
		j, i    int
		prod    int64
		zero    bool
		add     bool
		smallOK = n <= int64ProductOrder
	)
	for k = 1; k < limit; k++ {
		if k&cancelMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		j = bits.TrailingZeros64(k)
		gray = k ^ (k >> 1)
		add = gray&(1<<uint(j)) != 0
		zero = false
		for i = 0; i < n; i++ {
			if add {
				rows[i] += a[i*n+j]
			} else {
				rows[i] -= a[i*n+j]
			}
			if rows[i] == 0 {
				zero = true
			}
		}
		if log != nil {
			log.Debug("permanent: gray step", slog.Uint64("k", k), slog.Int("column", j),
				slog.Bool("add", add), slog.Any("row_sums", rows))
		}
		if zero {
			continue
		}

		if smallOK {
			prod = 1
			for i = 0; i < n; i++ {
				prod *= rows[i]
			}
			term.SetInt64(prod)
		} else {
			term.SetInt64(1)
			for i = 0; i < n; i++ {
				term.Mul(term, factor.SetInt64(rows[i]))
			}
		}
		// sign (−1)^(n+k)
		if (uint64(n)+k)&1 == 1 {
			total.Sub(total, term)
		} else {
			total.Add(total, term)
		}
	}

	return total, nil
}
