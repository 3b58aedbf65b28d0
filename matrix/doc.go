// Package matrix provides the dense linear-algebra layer used by the
// theory-covariance pipeline.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and an
//     optional finite-value policy (NaN/±Inf rejected on write).
//   - Canonical kernels: Add, Sub, Mul, Transpose, Scale, Hadamard, MatVec,
//     Outer, plus the symmetric Jacobi eigensolver Eigen.
//   - Statistics used around covariance matrices: replica Covariance,
//     CorrelationFromCovariance, NormalizeByOuter and ThresholdCorrelations.
//
// All kernels return fresh matrices, never mutate their operands, and report
// failures through the sentinel errors in errors.go (match with errors.Is).
// Loop orders are fixed so identical inputs give bit-identical outputs.
package matrix
