package permanent

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
)

// naive sums Π_i a[i,σ(i)] over every permutation σ, generated by the
// iterative form of Heap's algorithm (one swap per permutation).
// Every product of a ±1 matrix is ±1, so the sum fits in int64 for n ≤ 12.
//
// Complexity: O(n · n!) time, O(n) memory.
func naive(ctx context.Context, a []int64, n int, log *slog.Logger) (*big.Int, error) {
	if n > MaxNaiveOrder {
		return nil, fmt.Errorf("permanent: naive n=%d > %d: %w", n, MaxNaiveOrder, ErrOrderTooLarge)
	}
	var (
		perm  = make([]int, n)
		c     = make([]int, n)
		total int64
		steps uint64
		i     int
	)
	for i = 0; i < n; i++ {
		perm[i] = i
	}
	total += product(a, perm, n, log)

	i = 1
	for i < n {
		if c[i] < i {
			if i%2 == 0 {
				perm[0], perm[i] = perm[i], perm[0]
			} else {
				perm[c[i]], perm[i] = perm[i], perm[c[i]]
			}
			total += product(a, perm, n, log)
			c[i]++
			i = 1

			steps++
			if steps&cancelMask == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			continue
		}
		c[i] = 0
		i++
	}

	return big.NewInt(total), nil
}

// product returns Π_i a[i, perm[i]].
func product(a []int64, perm []int, n int, log *slog.Logger) int64 {
	var p int64 = 1
	for i := 0; i < n; i++ {
		p *= a[i*n+perm[i]]
	}
	if log != nil {
		log.Debug("permanent: permutation", slog.Any("sigma", perm), slog.Int64("product", p))
	}

	return p
}
