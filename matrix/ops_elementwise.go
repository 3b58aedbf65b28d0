// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Small, private element-wise and broadcast kernels (ew*) shared by the
//     statistics transforms and the AllClose comparison.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1) over *Dense buffers.

package matrix

import "math"

// ewBroadcastSubCols computes out[i,j] = X[i,j] - colMeans[j].
// Time: O(r*c). Space: O(r*c).
func ewBroadcastSubCols(X *Dense, colMeans []float64) (*Dense, error) {
	if len(colMeans) != X.c {
		return nil, matrixErrorf("broadcastSubCols", ErrDimensionMismatch)
	}
	out, err := NewDense(X.r, X.c)
	if err != nil {
		return nil, matrixErrorf("broadcastSubCols", err)
	}
	var i, j, base int
	for i = 0; i < X.r; i++ {
		base = i * X.c
		for j = 0; j < X.c; j++ {
			out.data[base+j] = X.data[base+j] - colMeans[j]
		}
	}

	return out, nil
}

// ewScaleRows computes out[i,j] = X[i,j] * scale[i].
func ewScaleRows(X *Dense, scale []float64) (*Dense, error) {
	if len(scale) != X.r {
		return nil, matrixErrorf("scaleRows", ErrDimensionMismatch)
	}
	out, err := NewDense(X.r, X.c)
	if err != nil {
		return nil, matrixErrorf("scaleRows", err)
	}
	var i, j, base int
	for i = 0; i < X.r; i++ {
		base = i * X.c
		for j = 0; j < X.c; j++ {
			out.data[base+j] = X.data[base+j] * scale[i]
		}
	}

	return out, nil
}

// ewScaleCols computes out[i,j] = X[i,j] * scale[j].
func ewScaleCols(X *Dense, scale []float64) (*Dense, error) {
	if len(scale) != X.c {
		return nil, matrixErrorf("scaleCols", ErrDimensionMismatch)
	}
	out, err := NewDense(X.r, X.c)
	if err != nil {
		return nil, matrixErrorf("scaleCols", err)
	}
	var i, j, base int
	for i = 0; i < X.r; i++ {
		base = i * X.c
		for j = 0; j < X.c; j++ {
			out.data[base+j] = X.data[base+j] * scale[j]
		}
	}

	return out, nil
}

// ewAllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol|; NaN/Inf tolerances → ErrNaNInf.
func ewAllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf("AllClose", ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	da, err := toDense(a)
	if err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	db, err := toDense(b)
	if err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	for k := range da.data {
		if math.Abs(da.data[k]-db.data[k]) > atol+rtol*math.Abs(db.data[k]) {
			return false, nil // early-exit on first violation
		}
	}

	return true, nil
}
