// Package matrix provides the ±1 matrix primitives used by the permanent search.
// Dense is a concrete, row-major implementation of the Matrix interface,
// storing ±1 entries in a flat int8 slice for cache friendliness.
package matrix

import (
	"fmt"
	"strings"
)

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major matrix whose entries are all +1 or -1.
// r is rows, c is columns, and data holds r*c elements in row-major order.
// There are no exported mutators; a Dense returned by this package never changes.
type Dense struct {
	r, c int    // number of rows and columns
	data []int8 // flat backing storage, length == r*c
}

// NewDense creates an r×c Dense matrix with every entry set to +1.
// Stage 1 (Validate): ensure rows and cols > 0.
// Stage 2 (Prepare): allocate and fill the flat backing slice.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	data := make([]int8, rows*cols)
	for k := range data {
		data[k] = 1
	}

	return &Dense{r: rows, c: cols, data: data}, nil
}

// FromRows builds a Dense from literal rows. Rows may describe a non-square
// matrix; every entry must be +1 or -1.
//
// Errors: ErrInvalidDimensions (no rows or empty row), ErrRaggedRows, ErrNotSign.
// Complexity: O(r*c).
func FromRows(rows [][]int) (*Dense, error) {
	var (
		i, j int
		v    int
	)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	m := &Dense{r: len(rows), c: len(rows[0])}
	m.data = make([]int8, m.r*m.c)
	for i = 0; i < m.r; i++ {
		if len(rows[i]) != m.c {
			return nil, fmt.Errorf("FromRows: row %d: %w", i, ErrRaggedRows)
		}
		for j = 0; j < m.c; j++ {
			v = rows[i][j]
			if v != 1 && v != -1 {
				return nil, denseErrorf("FromRows", i, j, ErrNotSign)
			}
			m.data[i*m.c+j] = int8(v)
		}
	}

	return m, nil
}

// Rows returns the number of rows in the matrix.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns in the matrix.
func (m *Dense) Cols() int { return m.c }

// indexOf computes the flat index for (row, col) or returns ErrIndexOutOfBounds.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf("At", row, col, ErrIndexOutOfBounds)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
// Complexity: O(1).
func (m *Dense) At(row, col int) (int, error) {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return 0, err
	}

	return int(m.data[idx]), nil
}

// Row returns a copy of row i as ints.
func (m *Dense) Row(i int) ([]int, error) {
	if _, err := m.indexOf(i, 0); err != nil {
		return nil, err
	}
	out := make([]int, m.c)
	for j := 0; j < m.c; j++ {
		out[j] = int(m.data[i*m.c+j])
	}

	return out, nil
}

// Rows2D returns a deep copy of the entries as a [][]int.
func (m *Dense) Rows2D() [][]int {
	out := make([][]int, m.r)
	for i := 0; i < m.r; i++ {
		out[i], _ = m.Row(i)
	}

	return out
}

// set writes v at (row, col) without bounds checks. Builders only.
func (m *Dense) set(row, col int, v int8) { m.data[row*m.c+col] = v }

// Clone returns a deep copy of the Dense matrix.
// Complexity: O(r*c) time and memory for copy.
func (m *Dense) Clone() *Dense {
	copyData := make([]int8, len(m.data))
	copy(copyData, m.data)

	return &Dense{r: m.r, c: m.c, data: copyData}
}

// Equal reports whether m and o have the same shape and entries.
func (m *Dense) Equal(o *Dense) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.r != o.r || m.c != o.c {
		return false
	}
	for k := range m.data {
		if m.data[k] != o.data[k] {
			return false
		}
	}

	return true
}

// Ones returns the number of +1 entries.
func (m *Dense) Ones() int {
	var cnt int
	for _, v := range m.data {
		if v == 1 {
			cnt++
		}
	}

	return cnt
}

// OnesRatio returns the fraction of +1 entries in [0, 1].
func (m *Dense) OnesRatio() float64 {
	return float64(m.Ones()) / float64(len(m.data))
}

// String implements fmt.Stringer: one bracketed row per line.
// Complexity: O(r*c).
func (m *Dense) String() string {
	var (
		b    strings.Builder
		i, j int
	)
	for i = 0; i < m.r; i++ {
		b.WriteByte('[')
		for j = 0; j < m.c; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", m.data[i*m.c+j])
		}
		b.WriteString("]\n")
	}

	return b.String()
}
