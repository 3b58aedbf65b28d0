// SPDX-License-Identifier: MIT

// Package stats provides the χ²-based fit-quality estimators used alongside
// theory covariance validation: χ² of a residual against a covariance,
// per-replica and central χ², the φ estimator and covariance rescalings.
//
// Replicas are rows, data points are columns, matching matrix.Covariance.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/thcov/matrix"
)

// SymmetryTolerance bounds |C[i,j] − C[j,i]| accepted by Chi2, relative to
// the largest |C[i,j]|.
const SymmetryTolerance = 1e-12

var (
	// ErrNotPositiveDefinite is returned when a covariance has no Cholesky factor.
	ErrNotPositiveDefinite = errors.New("stats: covariance is not positive definite")

	// ErrNegativePhi is returned when the mean replica χ² is below the central χ².
	ErrNegativePhi = errors.New("stats: phi radicand is negative")

	// ErrNoReplicas is returned for an empty replica set.
	ErrNoReplicas = errors.New("stats: no replicas")
)

// Chi2 returns dᵀ·C⁻¹·d through a Cholesky factorization of C.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrDimensionMismatch, matrix.ErrAsymmetry.
//   - ErrNotPositiveDefinite when the factorization fails.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func Chi2(diff []float64, cov *matrix.Dense) (float64, error) {
	if cov == nil {
		return 0, fmt.Errorf("Chi2: %w", matrix.ErrNilMatrix)
	}
	tol := SymmetryTolerance * floats.Norm(cov.RowMajor(), math.Inf(1))
	if err := matrix.ValidateSymmetric(cov, tol); err != nil {
		return 0, fmt.Errorf("Chi2: %w", err)
	}
	n := cov.Rows()
	if err := matrix.ValidateVecLen(diff, n); err != nil {
		return 0, fmt.Errorf("Chi2: %w", err)
	}

	var ch mat.Cholesky
	if ok := ch.Factorize(mat.NewSymDense(n, cov.RowMajor())); !ok {
		return 0, fmt.Errorf("Chi2: %w", ErrNotPositiveDefinite)
	}
	d := mat.NewVecDense(n, append([]float64(nil), diff...))
	var x mat.VecDense
	if err := ch.SolveVecTo(&x, d); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return 0, fmt.Errorf("Chi2: %w", err)
		}
	}

	return mat.Dot(d, &x), nil
}

// Chi2Data mirrors one dataset's χ² outcome.
type Chi2Data struct {
	// Replicas holds χ² of every replica prediction.
	Replicas []float64
	// Central is χ² of the central prediction.
	Central float64
	NData   int
}

// AbsChi2 computes χ² of each replica and of the central prediction against
// data. A nil central uses the replica mean.
func AbsChi2(data []float64, cov *matrix.Dense, central []float64, replicas [][]float64) (Chi2Data, error) {
	if len(replicas) == 0 {
		return Chi2Data{}, fmt.Errorf("AbsChi2: %w", ErrNoReplicas)
	}
	for r, rep := range replicas {
		if len(rep) != len(data) {
			return Chi2Data{}, fmt.Errorf("AbsChi2: replica %d has %d points, data %d: %w", r, len(rep), len(data), matrix.ErrDimensionMismatch)
		}
	}
	if central == nil {
		central = replicaMean(replicas)
	}
	if len(central) != len(data) {
		return Chi2Data{}, fmt.Errorf("AbsChi2: central: %w", matrix.ErrDimensionMismatch)
	}

	out := Chi2Data{Replicas: make([]float64, len(replicas)), NData: len(data)}
	var err error
	if out.Central, err = Chi2(residual(central, data), cov); err != nil {
		return Chi2Data{}, fmt.Errorf("AbsChi2: central: %w", err)
	}
	for r, rep := range replicas {
		if out.Replicas[r], err = Chi2(residual(rep, data), cov); err != nil {
			return Chi2Data{}, fmt.Errorf("AbsChi2: replica %d: %w", r, err)
		}
	}

	return out, nil
}

// Phi returns √((⟨χ²_rep⟩ − χ²_central)/N), the spread of replica predictions
// in units of the data uncertainty.
func Phi(d Chi2Data) (float64, error) {
	if len(d.Replicas) == 0 {
		return 0, fmt.Errorf("Phi: %w", ErrNoReplicas)
	}
	if d.NData <= 0 {
		return 0, fmt.Errorf("Phi: %d points: %w", d.NData, matrix.ErrDimensionMismatch)
	}
	radicand := (stat.Mean(d.Replicas, nil) - d.Central) / float64(d.NData)
	if radicand < 0 {
		return 0, fmt.Errorf("Phi: %g: %w", radicand, ErrNegativePhi)
	}

	return math.Sqrt(radicand), nil
}

// Summary holds the χ² estimators of one dataset.
type Summary struct {
	CentralMean    float64 `json:"central_mean"`
	NPoints        int     `json:"npoints"`
	Chi2PerData    float64 `json:"chi2_per_data"`
	PerReplicaMean float64 `json:"perreplica_mean"`
	// PerReplicaStd is the sample standard deviation over replicas.
	PerReplicaStd float64 `json:"perreplica_std"`
}

// Summarize reduces d to its estimators. Chi2PerData is NaN for zero points.
func Summarize(d Chi2Data) Summary {
	s := Summary{CentralMean: d.Central, NPoints: d.NData, Chi2PerData: math.NaN()}
	if d.NData > 0 {
		s.Chi2PerData = d.Central / float64(d.NData)
	}
	switch len(d.Replicas) {
	case 0:
		s.PerReplicaMean, s.PerReplicaStd = math.NaN(), math.NaN()
	case 1:
		s.PerReplicaMean = d.Replicas[0]
	default:
		s.PerReplicaMean, s.PerReplicaStd = stat.MeanStdDev(d.Replicas, nil)
	}

	return s
}

// NormCovmat returns cov[i,j]/(data[i]·data[j]).
func NormCovmat(cov *matrix.Dense, data []float64) (*matrix.Dense, error) {
	out, err := matrix.NormalizeByOuter(cov, data)
	if err != nil {
		return nil, fmt.Errorf("NormCovmat: %w", err)
	}

	return out.(*matrix.Dense), nil
}

// Corrmat returns the correlation matrix of cov.
func Corrmat(cov *matrix.Dense) (*matrix.Dense, error) {
	out, err := matrix.CorrelationFromCovariance(cov)
	if err != nil {
		return nil, fmt.Errorf("Corrmat: %w", err)
	}

	return out.(*matrix.Dense), nil
}

// ReplicaCovmat returns the sample covariance of replica predictions
// (rows are replicas) and the replica mean.
func ReplicaCovmat(replicas [][]float64) (*matrix.Dense, []float64, error) {
	if len(replicas) == 0 {
		return nil, nil, fmt.Errorf("ReplicaCovmat: %w", ErrNoReplicas)
	}
	X, err := matrix.NewDenseRows(replicas)
	if err != nil {
		return nil, nil, fmt.Errorf("ReplicaCovmat: %w", err)
	}
	cov, means, err := matrix.Covariance(X)
	if err != nil {
		return nil, nil, fmt.Errorf("ReplicaCovmat: %w", err)
	}

	return cov.(*matrix.Dense), means, nil
}

// residual returns pred − data; lengths are checked by the caller.
func residual(pred, data []float64) []float64 {
	out := make([]float64, len(pred))
	floats.SubTo(out, pred, data)

	return out
}

func replicaMean(replicas [][]float64) []float64 {
	out := make([]float64, len(replicas[0]))
	for _, rep := range replicas {
		floats.Add(out, rep)
	}
	floats.Scale(1/float64(len(replicas)), out)

	return out
}
