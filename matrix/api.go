// SPDX-License-Identifier: MIT

// Package matrix - public facades.
//
// Thin, documented entry points over the kernels in impl_*.go. Facades do
// not duplicate loops; they compose kernels and keep error wrapping uniform.

package matrix

// NewIdentity returns the n×n identity matrix.
func NewIdentity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}

	return m, nil
}

// Symmetrize returns (m + mᵀ)/2. Deterministic composition: Transpose → Add → Scale.
// Complexity: O(rc).
//
// AI-Hints: repairs round-off asymmetry of products like Bᵀ·C·B before Eigen.
func Symmetrize(m Matrix) (Matrix, error) {
	mt, err := Transpose(m)
	if err != nil {
		return nil, matrixErrorf("Symmetrize", err)
	}
	sum, err := Add(m, mt)
	if err != nil {
		return nil, matrixErrorf("Symmetrize", err)
	}

	return Scale(sum, 0.5)
}

// AllClose reports whether |a-b| ≤ atol + rtol*|b| element-wise.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	return ewAllClose(a, b, rtol, atol)
}

// Covariance returns the sample covariance of the columns of X (rows are
// observations) together with the column means.
func Covariance(X Matrix) (Matrix, []float64, error) { return covariance(X) }

// CorrelationFromCovariance converts a covariance matrix into a correlation
// matrix. Non-positive variances yield ErrZeroDivisor.
func CorrelationFromCovariance(C Matrix) (Matrix, error) { return correlationFromCovariance(C) }

// NormalizeByOuter divides C element-wise by ref ⊗ ref.
func NormalizeByOuter(C Matrix, ref []float64) (Matrix, error) { return normalizeByOuter(C, ref) }

// ThresholdCorrelations zeroes off-diagonal entries whose correlation
// magnitude is below t. t ≤ 0 disables the filter.
func ThresholdCorrelations(C Matrix, t float64) (Matrix, error) { return thresholdCorrelations(C, t) }
