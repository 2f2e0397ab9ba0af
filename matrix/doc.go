// Package matrix offers the ±1 matrix primitives of the permanent search.
//
// The matrix package provides:
//
//   - Dense, an immutable row-major n×n matrix with entries in {+1, −1}.
//   - Family, a table-driven description of the structural classes searched
//     (full, upper-triangular, Toeplitz, circulant, triangular Toeplitz,
//     triangular Hankel): index domain, mandatory indices and cell rule.
//   - Build and the per-family *FromSet helpers turning an IndexSet into a Dense.
//   - OnesCount/OnesRatio, which evaluate the +1 share of a candidate straight
//     from its index set, so filters never materialise rejected matrices.
//   - ParseNotation/FormatNotation for the "T_7{-6,-1..3}" set notation.
//
// Membership convention: an index in the set makes every cell it governs +1;
// an absent index makes them −1.
//
// See the examples in this package for usage patterns.
package matrix
