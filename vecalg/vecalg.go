// SPDX-License-Identifier: MIT

// Package vecalg orthonormalizes labeled vectors with classical Gram-Schmidt.
//
// The input order matters: vector i is orthogonalized against all finalized
// vectors j < i, so reordering the inputs gives a different (equally valid)
// basis of the same subspace.
package vecalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/matrix"
)

// DegenerateTolerance is the smallest residual accepted for a vector after
// it is orthogonalized against the preceding ones. Inputs are normalized
// first, so the threshold is relative to a unit-length start; it sits at
// √ε so that accepted vectors can be made orthogonal to ~1e-15.
const DegenerateTolerance = 1e-8

var (
	// ErrDegenerateBasis is returned when a vector is (numerically) in the span
	// of the preceding ones, or is zero to begin with.
	ErrDegenerateBasis = errors.New("vecalg: degenerate basis")

	// ErrEmptyInput is returned for an empty vector list.
	ErrEmptyInput = errors.New("vecalg: no vectors")
)

// Dot returns a·b. Vectors with different indices yield labeled.ErrIndexMismatch.
func Dot(a, b *labeled.Vector) (float64, error) {
	if !a.Index().Equal(b.Index()) {
		return 0, fmt.Errorf("Dot: %w", labeled.ErrIndexMismatch)
	}

	return floats.Dot(a.RawValues(), b.RawValues()), nil
}

// Norm returns the Euclidean norm of v.
func Norm(v *labeled.Vector) float64 { return floats.Norm(v.RawValues(), 2) }

// Basis is an ordered set of orthonormal labeled vectors over one index.
type Basis struct {
	ix      *labeled.Index
	vectors []*labeled.Vector
}

// Len returns the number of basis vectors k.
func (b *Basis) Len() int { return len(b.vectors) }

// Dim returns the dimension N of the ambient space.
func (b *Basis) Dim() int { return b.ix.Len() }

// Index returns the shared index.
func (b *Basis) Index() *labeled.Index { return b.ix }

// Vector returns the i-th basis vector.
func (b *Basis) Vector(i int) *labeled.Vector { return b.vectors[i] }

// Vectors returns the basis vectors in order. The slice is a copy; the
// vectors themselves are immutable.
func (b *Basis) Vectors() []*labeled.Vector { return append([]*labeled.Vector(nil), b.vectors...) }

// Matrix returns the N×k matrix whose columns are the basis vectors.
func (b *Basis) Matrix() *matrix.Dense {
	n, k := b.Dim(), b.Len()
	m, _ := matrix.NewDense(n, k) // n,k > 0 for any constructed Basis
	for j, v := range b.vectors {
		for i, x := range v.RawValues() {
			_ = m.Set(i, j, x)
		}
	}

	return m
}

// Orthonormalize runs Gram-Schmidt over vectors.
//
// Implementation:
//   - Stage 1: check a common index; normalize every input (zero norm → ErrDegenerateBasis).
//   - Stage 2: for i ≥ 1 and each j < i: yᵢ ← yᵢ − (yᵢ·yⱼ)yⱼ, then renormalize yᵢ.
//     The product of the per-j norms is the residual of yᵢ relative to its
//     unit start; a residual below DegenerateTolerance signals linear dependence.
//   - Stage 3: one re-orthogonalization sweep of yᵢ against all j < i, then
//     a final renormalization.
//
// Errors:
//   - ErrEmptyInput, ErrDegenerateBasis, labeled.ErrIndexMismatch.
//
// Complexity:
//   - Time O(k²·N), Space O(k·N).
//
// AI-Hints:
//   - Accepted bases are pairwise orthogonal to a few ulps; the second sweep
//     restores what the first loses to cancellation on nearly parallel inputs.
//   - Inputs whose residual falls below DegenerateTolerance are rejected
//     rather than returned as a skewed basis.
func Orthonormalize(vectors []*labeled.Vector) (*Basis, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}
	ix := vectors[0].Index()
	ys := make([][]float64, len(vectors))
	for i, v := range vectors {
		if !ix.Equal(v.Index()) {
			return nil, fmt.Errorf("Orthonormalize: vector %d: %w", i, labeled.ErrIndexMismatch)
		}
		ys[i] = v.Values()
		nrm := floats.Norm(ys[i], 2)
		if nrm == 0 {
			return nil, fmt.Errorf("Orthonormalize: vector %d is zero: %w", i, ErrDegenerateBasis)
		}
		floats.Scale(1/nrm, ys[i])
	}

	var proj, nrm, residual float64
	var i, j int
	for i = 1; i < len(ys); i++ {
		residual = 1
		for j = 0; j < i; j++ {
			proj = floats.Dot(ys[i], ys[j])
			floats.AddScaled(ys[i], -proj, ys[j])
			nrm = floats.Norm(ys[i], 2)
			residual *= nrm
			if residual < DegenerateTolerance {
				return nil, fmt.Errorf("Orthonormalize: vector %d in span of preceding vectors (residual %.3g): %w",
					i, residual, ErrDegenerateBasis)
			}
			floats.Scale(1/nrm, ys[i])
		}
		for j = 0; j < i; j++ {
			proj = floats.Dot(ys[i], ys[j])
			floats.AddScaled(ys[i], -proj, ys[j])
		}
		floats.Scale(1/floats.Norm(ys[i], 2), ys[i])
	}

	b := &Basis{ix: ix, vectors: make([]*labeled.Vector, len(ys))}
	for i, y := range ys {
		b.vectors[i], _ = labeled.NewVector(ix, y) // lengths match ix by construction
	}

	return b, nil
}
