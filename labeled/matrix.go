// SPDX-License-Identifier: MIT

package labeled

import (
	"fmt"

	"github.com/katalvlaran/thcov/matrix"
)

// Matrix is an immutable N×N matrix whose rows and columns share one Index.
type Matrix struct {
	ix *Index
	m  *matrix.Dense
}

// NewMatrix wraps a copy of m under ix.
//
// Errors:
//   - ErrNilIndex; matrix.ErrNilMatrix for a nil m.
//   - ErrLengthMismatch when m is not ix.Len()×ix.Len().
func NewMatrix(ix *Index, m *matrix.Dense) (*Matrix, error) {
	if ix == nil {
		return nil, ErrNilIndex
	}
	if m == nil {
		return nil, fmt.Errorf("NewMatrix: %w", matrix.ErrNilMatrix)
	}
	r, c := m.Shape()
	if r != ix.Len() || c != ix.Len() {
		return nil, fmt.Errorf("NewMatrix: %dx%d for %d keys: %w", r, c, ix.Len(), ErrLengthMismatch)
	}

	return &Matrix{ix: ix, m: m.Clone().(*matrix.Dense)}, nil
}

// Index returns the shared row/column index.
func (lm *Matrix) Index() *Index { return lm.ix }

// Len returns N.
func (lm *Matrix) Len() int { return lm.ix.Len() }

// At returns element (i, j). Out-of-range indices return matrix.ErrOutOfRange.
func (lm *Matrix) At(i, j int) (float64, error) { return lm.m.At(i, j) }

// Dense returns a copy of the underlying matrix.
func (lm *Matrix) Dense() *matrix.Dense { return lm.m.Clone().(*matrix.Dense) }

// Block returns the sub-matrix of rows from dataset a and columns from dataset b.
func (lm *Matrix) Block(a, b string) (*matrix.Dense, error) {
	rows, err := lm.ix.Positions(a)
	if err != nil {
		return nil, fmt.Errorf("Block: %w", err)
	}
	cols, err := lm.ix.Positions(b)
	if err != nil {
		return nil, fmt.Errorf("Block: %w", err)
	}

	return lm.m.Induced(rows, cols)
}

// Diagonal returns the diagonal as a labeled Vector.
func (lm *Matrix) Diagonal() *Vector {
	out := Zeros(lm.ix)
	for i := range out.values {
		out.values[i], _ = lm.m.At(i, i)
	}

	return out
}
