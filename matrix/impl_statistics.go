// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Statistical transforms around covariance matrices, composed from the
//     canonical kernels (Mul/Transpose/Scale/Hadamard) and ew* micro-kernels.
//
// Exposed API:
//   - Covariance(X)                  -> (Cov, means)  // sample covariance of columns: (Xcᵀ Xc)/(r-1)
//   - CorrelationFromCovariance(C)   -> Corr          // D^-1/2 C D^-1/2
//   - NormalizeByOuter(C, ref)       -> C / (ref ⊗ ref)
//   - ThresholdCorrelations(C, t)    -> C with |ρ_ij| < t zeroed (i≠j)
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.

package matrix

import "math"

// Operation name constants for unified error wrapping.
const (
	opCovariance       = "Covariance"
	opCorrFromCov      = "CorrelationFromCovariance"
	opNormalizeByOuter = "NormalizeByOuter"
	opThreshold        = "ThresholdCorrelations"
)

// centerColumns subtracts the per-column mean from every element.
// Returns the centered copy and the column means (len = cols).
// Complexity: O(r*c).
func centerColumns(X Matrix) (Matrix, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	d, err := toDense(X)
	if err != nil {
		return nil, nil, err
	}
	r, c := d.r, d.c
	means := make([]float64, c)
	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			means[j] += d.data[i*c+j]
		}
	}
	for j = 0; j < c; j++ {
		means[j] /= float64(r)
	}
	out, err := ewBroadcastSubCols(d, means)
	if err != nil {
		return nil, nil, err
	}

	return out, means, nil
}

// covariance computes the sample covariance of the columns of X.
// Rows are observations (e.g. PDF replicas), columns are variables
// (e.g. data points), so the result is c×c.
//
// Errors:
//   - ErrNilMatrix; ErrDimensionMismatch when r < 2.
//
// Complexity:
//   - Time O(r*c²), Space O(c²).
func covariance(X Matrix) (Matrix, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	r := X.Rows()
	if r < 2 {
		return nil, nil, matrixErrorf(opCovariance, ErrDimensionMismatch)
	}

	Xc, means, err := centerColumns(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	Xct, err := Transpose(Xc)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	G, err := Mul(Xct, Xc)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	Cov, err := Scale(G, 1.0/float64(r-1))
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}

	return Cov, means, nil
}

// correlationFromCovariance rescales a covariance into a correlation matrix:
// Corr[i,j] = C[i,j] / sqrt(C[i,i] C[j,j]).
// Implementation:
//   - Stage 1: validate square, read the diagonal; any C[i,i] ≤ 0 → ErrZeroDivisor.
//   - Stage 2: scale rows then columns by 1/sqrt(diag) via ew* kernels.
//
// Complexity:
//   - Time O(n²), Space O(n²).
func correlationFromCovariance(C Matrix) (Matrix, error) {
	if err := ValidateSquareNonNil(C); err != nil {
		return nil, matrixErrorf(opCorrFromCov, err)
	}
	d, err := toDense(C)
	if err != nil {
		return nil, matrixErrorf(opCorrFromCov, err)
	}
	n := d.r
	inv := make([]float64, n)
	var i int
	for i = 0; i < n; i++ {
		v := d.data[i*n+i]
		if v <= 0 {
			return nil, matrixErrorf(opCorrFromCov, ErrZeroDivisor)
		}
		inv[i] = 1.0 / math.Sqrt(v)
	}
	rows, err := ewScaleRows(d, inv)
	if err != nil {
		return nil, matrixErrorf(opCorrFromCov, err)
	}
	out, err := ewScaleCols(rows, inv)
	if err != nil {
		return nil, matrixErrorf(opCorrFromCov, err)
	}

	return out, nil
}

// normalizeByOuter returns C[i,j] / (ref[i]*ref[j]), i.e. the covariance in
// units relative to a reference vector. A zero reference entry → ErrZeroDivisor.
func normalizeByOuter(C Matrix, ref []float64) (Matrix, error) {
	if err := ValidateSquareNonNil(C); err != nil {
		return nil, matrixErrorf(opNormalizeByOuter, err)
	}
	if err := ValidateVecLen(ref, C.Rows()); err != nil {
		return nil, matrixErrorf(opNormalizeByOuter, err)
	}
	inv := make([]float64, len(ref))
	for i, v := range ref {
		if v == 0 {
			return nil, matrixErrorf(opNormalizeByOuter, ErrZeroDivisor)
		}
		inv[i] = 1.0 / v
	}
	w, err := Outer(inv, inv)
	if err != nil {
		return nil, matrixErrorf(opNormalizeByOuter, err)
	}
	out, err := Hadamard(C, w)
	if err != nil {
		return nil, matrixErrorf(opNormalizeByOuter, err)
	}

	return out, nil
}

// thresholdCorrelations zeroes every off-diagonal covariance element whose
// correlation magnitude is below t, leaving the diagonal untouched.
// Rows/cols with zero variance keep only their diagonal.
// t ≤ 0 returns a copy of C.
func thresholdCorrelations(C Matrix, t float64) (Matrix, error) {
	if err := ValidateSquareNonNil(C); err != nil {
		return nil, matrixErrorf(opThreshold, err)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, matrixErrorf(opThreshold, ErrNaNInf)
	}
	d, err := toDense(C)
	if err != nil {
		return nil, matrixErrorf(opThreshold, err)
	}
	out := d.Clone().(*Dense)
	if t <= 0 {
		return out, nil
	}
	n := d.r
	var i, j int
	var den float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if i == j {
				continue
			}
			den = math.Sqrt(d.data[i*n+i] * d.data[j*n+j])
			if den <= 0 || math.Abs(d.data[i*n+j])/den < t {
				out.data[i*n+j] = 0
			}
		}
	}

	return out, nil
}
