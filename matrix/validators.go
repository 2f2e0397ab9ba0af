// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for matrix and index-set checks.
//  - Keep builders and the permanent engine minimal by delegating guards here.
//  - Return wrapped sentinel errors so call sites match with errors.Is.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Square → Sign).

package matrix

import "fmt"

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
//
// A typed nil (*Dense)(nil) stored in the interface is also rejected.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is square (Rows == Cols).
// Assumes m is not nil.
func ValidateSquare(m Matrix) error {
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateSign checks every entry is +1 or -1.
// Complexity: O(r*c).
func ValidateSign(m Matrix) error {
	var (
		i, j int
		v    int
		err  error
	)
	// Dense can only hold ±1; FromRows and the builders enforce it.
	if _, ok := m.(*Dense); ok {
		return nil
	}
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			if v, err = m.At(i, j); err != nil {
				return validatorErrorf("ValidateSign", err)
			}
			if v != 1 && v != -1 {
				return validatorErrorf(fmt.Sprintf("ValidateSign(%d,%d)", i, j), ErrNotSign)
			}
		}
	}

	return nil
}

// ValidateSignSquare is the composite NotNil → Square → Sign check used before
// computing a permanent.
func ValidateSignSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSignSquare", err)
	}
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSignSquare", err)
	}
	if err := ValidateSign(m); err != nil {
		return validatorErrorf("ValidateSignSquare", err)
	}

	return nil
}

// ValidateOrder checks n ≥ 1.
func ValidateOrder(n int) error {
	if n < 1 {
		return validatorErrorf(fmt.Sprintf("ValidateOrder(%d)", n), ErrInvalidDimensions)
	}

	return nil
}

// ValidateIndexSet checks that every member of s lies in the domain of family f
// for order n and that every mandatory index of f is present.
// Assumes n ≥ 1 and f is known; s need not be canonical.
// Complexity: O(|s| + |mandatory|·log|s|).
func ValidateIndexSet(n int, f Family, s IndexSet) error {
	var (
		lo, hi int
		idx    int
	)
	lo, hi = f.Domain(n)
	for _, idx = range s {
		if idx < lo || idx > hi {
			return validatorErrorf(
				fmt.Sprintf("ValidateIndexSet(%s,n=%d,index=%d)", f, n, idx),
				ErrIndexOutOfDomain,
			)
		}
	}
	c := Canonical(s)
	for _, idx = range f.Mandatory(n) {
		if !c.Contains(idx) {
			return validatorErrorf(
				fmt.Sprintf("ValidateIndexSet(%s,n=%d,index=%d)", f, n, idx),
				ErrMissingMandatory,
			)
		}
	}

	return nil
}
