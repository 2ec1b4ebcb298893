// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At returns errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Enforce finite entries at construction time so kernels never see NaN/Inf.
//
// Complexity quicksheet:
//   - NewDense/Build/FromRows: O(r*c); At: O(1); Data/Row/Column: O(r*c)/O(c)/O(r).

package matrix

import (
	"fmt"
	"math/bits"
	"math/cmplx"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt     = "At"
	ctxRow    = "Row"
	ctxColumn = "Column"
	ctxNew    = "NewDense"
	ctxQubits = "Qubits"
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Compile-time assertion for fmt.Stringer conformance.
var _ fmt.Stringer = (*Dense)(nil)

// NewDense creates an r×c matrix holding a copy of data (row-major).
// A nil data slice yields the zero matrix.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0 and len(data) == rows*cols.
//   - Stage 2: copy data while rejecting NaN/Inf entries.
//
// Errors:
//   - ErrBadShape (shape contract violation), ErrNaNInf (non-finite entry).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int, data []complex128) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, denseErrorf(ctxNew, rows, cols, ErrBadShape)
	}
	buf := make([]complex128, rows*cols)
	if data == nil {
		return &Dense{r: rows, c: cols, data: buf}, nil
	}
	if len(data) != rows*cols {
		return nil, denseErrorf(ctxNew, rows, cols, ErrBadShape)
	}
	for idx, v := range data {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return nil, denseErrorf(ctxNew, idx/cols, idx%cols, ErrNaNInf)
		}
		buf[idx] = v
	}

	return &Dense{r: rows, c: cols, data: buf}, nil
}

// wrap adopts buf without copying. Internal kernels use it for freshly
// allocated results they never touch again.
func wrap(rows, cols int, buf []complex128) *Dense {
	return &Dense{r: rows, c: cols, data: buf}
}

// Build creates an r×c matrix whose (i,j) entry is fill(i,j), visiting cells
// in fixed i→j order.
// Errors: ErrBadShape, ErrNaNInf.
// Complexity: O(r*c) calls to fill.
func Build(rows, cols int, fill func(i, j int) complex128) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, denseErrorf(ctxNew, rows, cols, ErrBadShape)
	}
	buf := make([]complex128, rows*cols)
	var i, j int
	var v complex128
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v = fill(i, j)
			if cmplx.IsNaN(v) || cmplx.IsInf(v) {
				return nil, denseErrorf(ctxNew, i, j, ErrNaNInf)
			}
			buf[i*cols+j] = v
		}
	}

	return wrap(rows, cols, buf), nil
}

// FromRows creates a matrix from a rectangular slice of rows (copied).
// Errors: ErrBadShape for empty or ragged input, ErrNaNInf.
func FromRows(rows [][]complex128) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, denseErrorf(ctxNew, len(rows), 0, ErrBadShape)
	}
	cols := len(rows[0])
	flat := make([]complex128, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, denseErrorf(ctxNew, i, len(row), ErrBadShape)
		}
		flat = append(flat, row...)
	}

	return NewDense(len(rows), cols, flat)
}

// FromColumns creates a matrix whose j-th column is cols[j] (copied).
// Eigenvector and Gram-Schmidt routines produce columns, hence this helper.
// Errors: ErrBadShape for empty or ragged input, ErrNaNInf.
func FromColumns(cols [][]complex128) (*Dense, error) {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, denseErrorf(ctxNew, 0, len(cols), ErrBadShape)
	}
	rows := len(cols[0])
	for j, col := range cols {
		if len(col) != rows {
			return nil, denseErrorf(ctxNew, len(col), j, ErrBadShape)
		}
	}

	return Build(rows, len(cols), func(i, j int) complex128 { return cols[j][i] })
}

// Identity returns the dim×dim identity matrix.
// Errors: ErrBadShape if dim <= 0.
func Identity(dim int) (*Dense, error) {
	if dim <= 0 {
		return nil, denseErrorf(ctxNew, dim, dim, ErrBadShape)
	}
	buf := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		buf[i*dim+i] = 1
	}

	return wrap(dim, dim, buf), nil
}

// Diagonal returns the square matrix with d on its diagonal.
// Errors: ErrBadShape if d is empty, ErrNaNInf.
func Diagonal(d []complex128) (*Dense, error) {
	n := len(d)
	if n == 0 {
		return nil, denseErrorf(ctxNew, 0, 0, ErrBadShape)
	}

	return Build(n, n, func(i, j int) complex128 {
		if i == j {
			return d[i]
		}
		return 0
	})
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// Shape returns (rows, cols).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// At retrieves the element at (row, col).
// Errors: ErrOutOfRange when indices are invalid.
// Complexity: O(1).
func (m *Dense) At(row, col int) (complex128, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(ctxAt, row, col, ErrOutOfRange)
	}

	return m.data[row*m.c+col], nil
}

// Data returns a copy of the row-major backing buffer.
// Complexity: O(r*c).
func (m *Dense) Data() []complex128 {
	out := make([]complex128, len(m.data))
	copy(out, m.data)

	return out
}

// Row returns a copy of row i.
// Errors: ErrOutOfRange.
func (m *Dense) Row(i int) ([]complex128, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	out := make([]complex128, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Column returns a copy of column j.
// Errors: ErrOutOfRange.
func (m *Dense) Column(j int) ([]complex128, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxColumn, 0, j, ErrOutOfRange)
	}
	out := make([]complex128, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// Columns returns copies of all columns, in order.
func (m *Dense) Columns() [][]complex128 {
	out := make([][]complex128, m.c)
	var i, j int
	for j = 0; j < m.c; j++ {
		col := make([]complex128, m.r)
		for i = 0; i < m.r; i++ {
			col[i] = m.data[i*m.c+j]
		}
		out[j] = col
	}

	return out
}

// Diag returns a copy of the main diagonal (length min(r,c)).
func (m *Dense) Diag() []complex128 {
	n := min(m.r, m.c)
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = m.data[i*m.c+i]
	}

	return out
}

// Qubits returns n for a square 2ⁿ×2ⁿ matrix with n ≥ 1.
// Errors: ErrDimensionMismatch for non-square or non-power-of-two shapes.
func (m *Dense) Qubits() (int, error) {
	if m.r != m.c {
		return 0, denseErrorf(ctxQubits, m.r, m.c, ErrDimensionMismatch)
	}

	return QubitsForDim(m.r)
}

// QubitsForDim returns log2(dim) when dim is a power of two ≥ 2.
// Errors: ErrDimensionMismatch otherwise.
func QubitsForDim(dim int) (int, error) {
	if dim < 2 || dim&(dim-1) != 0 {
		return 0, fmt.Errorf("%s(%d): %w", ctxQubits, dim, ErrDimensionMismatch)
	}

	return bits.TrailingZeros(uint(dim)), nil
}

// Do visits each element (i,j) in row-major order and calls f(i,j,v),
// stopping early when f returns false.
// Complexity: O(r*c), Space O(1).
func (m *Dense) Do(f func(i, j int, v complex128) bool) {
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			if !f(i, j, m.data[base+j]) {
				return
			}
		}
	}
}

// String implements fmt.Stringer for easy debugging.
func (m *Dense) String() string {
	var sb strings.Builder
	var i, j int
	for i = 0; i < m.r; i++ {
		sb.WriteString("[")
		for j = 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%.6g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
