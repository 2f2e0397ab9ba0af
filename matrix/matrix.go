// Package matrix defines the read-only Matrix view consumed by the permanent engine.
//
// What & Why:
//
//	A Matrix is a rectangular array of small integers. The search code only ever
//	produces ±1 matrices (see Dense), but the permanent engine accepts any
//	implementation so tests and callers can feed literal fixtures. There is no
//	Set on the interface: built matrices are immutable once returned.
//
// Complexity:
//
//	Rows() and Cols() run in O(1) time.
//	At() performs bounds checking in O(1) time, returning an error on invalid indices.
package matrix

// Matrix represents a two-dimensional read-only array of integer entries.
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrIndexOutOfBounds if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (int, error)
}

// compile-time check
var _ Matrix = (*Dense)(nil)
