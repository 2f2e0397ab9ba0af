// Package permanent computes exact permanents of square ±1 matrices.
//
// Two methods are provided:
//
//   - Ryser (default): inclusion–exclusion over column subsets, walked in
//     Gray-code order so each step updates the row sums in O(n). O(2^n·n).
//   - Naive: the defining sum over all n! permutations. Kept as a reference
//     for cross-checking on small orders (n ≤ MaxNaiveOrder).
//
// Results are *big.Int; the engine is pure, never mutates its input and polls
// the context periodically so long computations can be canceled.
package permanent
