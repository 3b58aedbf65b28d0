// SPDX-License-Identifier: MIT

package eigenbasis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/matrix"
	"github.com/katalvlaran/thcov/vecalg"
)

// ErrZeroCentral is returned when the central theory vector has a zero entry,
// so the covariance cannot be expressed in relative units.
var ErrZeroCentral = errors.New("eigenbasis: zero central value")

// decompositionTolerance bounds |U·diag(w)·Uᵀ − M| element-wise, relative
// to ‖M‖_F. The Jacobi solver adds k²·tol on top of it.
const decompositionTolerance = 1e-8

// Projection holds the eigen decomposition of a covariance restricted to the
// span of a basis.
type Projection struct {
	// Eigenvalues in ascending order. Tiny or slightly negative values are
	// legitimate numerical output.
	Eigenvalues []float64
	// Eigenvectors lifted to the data space (B·U), aligned with Eigenvalues.
	Eigenvectors []*labeled.Vector
	// Subspace is the symmetrized k×k matrix Bᵀ·C·B that was diagonalized.
	Subspace *matrix.Dense
	// Basis is the orthonormal basis the covariance was projected on.
	Basis *vecalg.Basis
	// Normalized is C/(T⊗T) after the optional threshold filter.
	Normalized *labeled.Matrix
}

// NormalizeCovariance returns cov[i,j] / (central[i]·central[j]).
//
// Errors: labeled.ErrIndexMismatch; ErrZeroCentral.
func NormalizeCovariance(cov *labeled.Matrix, central *labeled.Vector) (*labeled.Matrix, error) {
	if !cov.Index().Equal(central.Index()) {
		return nil, fmt.Errorf("NormalizeCovariance: %w", labeled.ErrIndexMismatch)
	}
	out, err := matrix.NormalizeByOuter(cov.Dense(), central.RawValues())
	if err != nil {
		if errors.Is(err, matrix.ErrZeroDivisor) {
			return nil, fmt.Errorf("NormalizeCovariance: %w", ErrZeroCentral)
		}
		return nil, fmt.Errorf("NormalizeCovariance: %w", err)
	}

	return labeled.NewMatrix(cov.Index(), out.(*matrix.Dense))
}

// Project diagonalizes the theory covariance inside the span of basis.
//
// Implementation:
//   - Stage 1: C ← cov/(T⊗T); optionally zero weak correlations (WithThreshold).
//   - Stage 2: M ← Bᵀ·C·B with B the N×k basis matrix; M ← (M+Mᵀ)/2.
//   - Stage 3: (w, U) ← eig(M) with the configured solver; check that
//     U·diag(w)·Uᵀ reproduces M; sort ascending; flip each column of U so
//     its largest-magnitude entry is positive.
//   - Stage 4: vⱼ ← B·uⱼ for every column, as labeled vectors.
//
// Errors:
//   - labeled.ErrIndexMismatch, ErrZeroCentral, matrix.ErrMatrixEigenFailed.
//
// Determinism:
//   - Fixed loop orders and the sign convention make repeated calls
//     bit-identical for one solver.
//
// Complexity:
//   - Time O(N²·k + k³·iter), Space O(N² + N·k).
func Project(cov *labeled.Matrix, central *labeled.Vector, basis *vecalg.Basis, opts ...Option) (*Projection, error) {
	o := gatherOptions(opts...)
	if !cov.Index().Equal(basis.Index()) {
		return nil, fmt.Errorf("Project: basis: %w", labeled.ErrIndexMismatch)
	}

	norm, err := NormalizeCovariance(cov, central)
	if err != nil {
		return nil, fmt.Errorf("Project: %w", err)
	}
	if o.threshold > 0 {
		filtered, err := matrix.ThresholdCorrelations(norm.Dense(), o.threshold)
		if err != nil {
			return nil, fmt.Errorf("Project: threshold: %w", err)
		}
		if norm, err = labeled.NewMatrix(norm.Index(), filtered.(*matrix.Dense)); err != nil {
			return nil, fmt.Errorf("Project: threshold: %w", err)
		}
	}

	B := basis.Matrix()
	sub, err := projectOnto(norm.Dense(), B)
	if err != nil {
		return nil, fmt.Errorf("Project: %w", err)
	}

	var (
		vals []float64
		U    *matrix.Dense
	)
	switch o.solver {
	case SolverLAPACK:
		vals, U, err = eigenLAPACK(sub)
	default:
		vals, U, err = eigenJacobi(sub, o.tol, o.maxIter)
	}
	if err != nil {
		return nil, fmt.Errorf("Project: %s: %w", o.solver, err)
	}
	rel := decompositionTolerance
	if o.solver != SolverLAPACK {
		rel += float64(len(vals)*len(vals)) * o.tol
	}
	if err = checkDecomposition(sub, vals, U, rel); err != nil {
		return nil, fmt.Errorf("Project: %s: %w", o.solver, err)
	}
	vals, U, err = sortAndOrient(vals, U)
	if err != nil {
		return nil, fmt.Errorf("Project: %w", err)
	}

	vecs := make([]*labeled.Vector, len(vals))
	for j := range vecs {
		u, _ := U.Col(j) // j < k
		col, err := matrix.MatVec(B, u)
		if err != nil {
			return nil, fmt.Errorf("Project: lift: %w", err)
		}
		if vecs[j], err = labeled.NewVector(basis.Index(), col); err != nil {
			return nil, fmt.Errorf("Project: lift: %w", err)
		}
	}

	return &Projection{
		Eigenvalues:  vals,
		Eigenvectors: vecs,
		Subspace:     sub,
		Basis:        basis,
		Normalized:   norm,
	}, nil
}

// projectOnto returns the symmetrized Bᵀ·C·B.
func projectOnto(C, B *matrix.Dense) (*matrix.Dense, error) {
	Bt, err := matrix.Transpose(B)
	if err != nil {
		return nil, err
	}
	CB, err := matrix.Mul(C, B)
	if err != nil {
		return nil, err
	}
	M, err := matrix.Mul(Bt, CB)
	if err != nil {
		return nil, err
	}
	S, err := matrix.Symmetrize(M)
	if err != nil {
		return nil, err
	}

	return S.(*matrix.Dense), nil
}

// eigenJacobi runs matrix.Eigen with tol scaled by ‖M‖_F.
func eigenJacobi(M *matrix.Dense, tol float64, maxIter int) ([]float64, *matrix.Dense, error) {
	k := M.Rows()
	if maxIter == 0 {
		maxIter = autoMaxIter(k)
	}
	if fro := floats.Norm(M.RowMajor(), 2); fro > 0 {
		tol *= fro
	}

	return matrix.Eigen(M, tol, maxIter)
}

// eigenLAPACK diagonalizes M with gonum's mat.EigenSym.
func eigenLAPACK(M *matrix.Dense) ([]float64, *matrix.Dense, error) {
	k := M.Rows()
	sym := mat.NewSymDense(k, M.RowMajor())
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, matrix.ErrMatrixEigenFailed
	}
	vals := es.Values(nil)
	var ev mat.Dense
	es.VectorsTo(&ev)

	U, err := matrix.NewDenseFrom(k, k, ev.RawMatrix().Data)
	if err != nil {
		return nil, nil, err
	}

	return vals, U, nil
}

// checkDecomposition fails with matrix.ErrMatrixEigenFailed unless
// U·diag(w)·Uᵀ matches M to within rel·‖M‖_F in every element.
func checkDecomposition(M *matrix.Dense, vals []float64, U *matrix.Dense, rel float64) error {
	UW := U.Clone().(*matrix.Dense)
	if err := UW.Apply(func(_, j int, v float64) float64 { return v * vals[j] }); err != nil {
		return err
	}
	Ut, err := matrix.Transpose(U)
	if err != nil {
		return err
	}
	R, err := matrix.Mul(UW, Ut)
	if err != nil {
		return err
	}
	atol := rel
	if fro := floats.Norm(M.RowMajor(), 2); fro > 0 {
		atol *= fro
	}
	ok, err := matrix.AllClose(R, M, 0, atol)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("reconstruction differs by more than %.3g: %w", atol, matrix.ErrMatrixEigenFailed)
	}

	return nil
}

// sortAndOrient orders eigenpairs by ascending eigenvalue (stable on ties)
// and flips each eigenvector so that its largest-magnitude component is
// positive.
func sortAndOrient(vals []float64, U *matrix.Dense) ([]float64, *matrix.Dense, error) {
	k := len(vals)
	perm := make([]int, k)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return vals[perm[a]] < vals[perm[b]] })

	outVals := make([]float64, k)
	out, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, nil, err
	}
	for j, src := range perm {
		outVals[j] = vals[src]
		col, err := U.Col(src)
		if err != nil {
			return nil, nil, err
		}
		sign := 1.0
		if col[floats.MaxIdx(absAll(col))] < 0 {
			sign = -1.0
		}
		for i, x := range col {
			if err = out.Set(i, j, sign*x); err != nil {
				return nil, nil, err
			}
		}
	}

	return outVals, out, nil
}

func absAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Abs(x)
	}

	return out
}
