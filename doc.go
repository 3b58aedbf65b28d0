// Package thcov validates scale-variation theory covariance matrices for
// parton distribution fits.
//
// A theory covariance matrix built from renormalization and factorization
// scale variations lives in a low-dimensional subspace spanned by
// prescription-specific combinations of the per-process shift vectors. thcov
// rebuilds that subspace, diagonalizes the covariance inside it and measures
// how much of an independent reference shift (typically NNLO−NLO) the
// eigenvectors capture.
//
// Packages, bottom-up:
//
//	matrix/       dense kernels: products, Jacobi eigen, covariance transforms
//	labeled/      vectors and matrices indexed by (dataset, point)
//	process/      dataset name → process type classification (YAML table)
//	prescription/ 3/5/7/9-point combination vectors
//	vecalg/       Gram-Schmidt orthonormal bases
//	eigenbasis/   projection of the covariance onto a basis + eigenpairs
//	shiftcheck/   shift decomposition, efficiency and theory χ²
//	pipeline/     the whole chain with zerolog stage logs
//	stats/        χ², φ and replica estimators
//	arclength/    PDF arc-length diagnostic
//	config/       YAML run configuration and input files
//	report/       text, JSON and Prometheus textfile output
//
// The thcovcheck command wires everything:
//
//	thcovcheck validate --config run.yaml --input input.yaml
//
//	go get github.com/katalvlaran/thcov
package thcov
