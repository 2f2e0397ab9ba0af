// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. Builders and validators return these sentinels (optionally wrapped
// with fmt.Errorf("ctx: %w", ErrX)); tests match them via errors.Is.
// No function panics on user-triggered error conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." so log lines can be grepped.
//
// ERROR PRIORITY (enforced in tests):
// nil -> shape -> entry values -> family -> index domain -> mandatory indices.

var (
	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrIndexOutOfBounds indicates that a row or column index is outside valid range.
	ErrIndexOutOfBounds = errors.New("matrix: index out of bounds")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrRaggedRows signals that literal rows passed to FromRows differ in length.
	ErrRaggedRows = errors.New("matrix: rows have different lengths")

	// ErrNotSign signals an entry outside {+1, -1}.
	ErrNotSign = errors.New("matrix: entry is not +1 or -1")

	// ErrUnknownFamily is returned for a Family value (or name) that is not defined.
	ErrUnknownFamily = errors.New("matrix: unknown matrix family")

	// ErrIndexOutOfDomain signals an index-set member outside the family's index domain.
	ErrIndexOutOfDomain = errors.New("matrix: index outside family domain")

	// ErrMissingMandatory signals that an index set omits an index the family requires.
	ErrMissingMandatory = errors.New("matrix: mandatory index missing from set")

	// ErrBadNotation signals a malformed "X_n{...}" set notation.
	ErrBadNotation = errors.New("matrix: malformed set notation")
)
