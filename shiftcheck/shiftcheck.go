// SPDX-License-Identifier: MIT

// Package shiftcheck measures how well the eigenvectors of a theory covariance
// matrix capture an independent reference shift (typically NNLO−NLO).
//
// The shift f is decomposed as f = Σᵢ δᵢ vᵢ + f_miss with δᵢ = f·vᵢ. From
// that decomposition come the efficiency 1 − ‖f_miss‖/‖f‖ and the theory
// χ² = (1/k) Σᵢ δᵢ²/|wᵢ|.
package shiftcheck

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/thcov/labeled"
)

var (
	// ErrEmptyShift is returned when the reference shift is all zero.
	ErrEmptyShift = errors.New("shiftcheck: reference shift is zero")

	// ErrDimensionMismatch indicates differing numbers of eigenvalues and
	// eigenvectors, or none at all.
	ErrDimensionMismatch = errors.New("shiftcheck: eigenvalue/eigenvector count mismatch")
)

// InfiniteChi2Warning records an eigenvalue of exactly zero. Its term in the
// theory χ² is +Inf. It is kept on the Result and never returned as an error.
type InfiniteChi2Warning struct {
	// Index of the offending eigenpair (ascending eigenvalue order).
	Index int
	// Projector is δᵢ for that eigenvector.
	Projector float64
}

func (w InfiniteChi2Warning) Error() string {
	return fmt.Sprintf("shiftcheck: eigenvalue %d is zero (projector %g): theory chi2 term is +Inf", w.Index, w.Projector)
}

// Result is the read-only outcome of Validate.
type Result struct {
	Eigenvalues  []float64
	Eigenvectors []*labeled.Vector
	// Projectors holds δᵢ = shift·vᵢ.
	Projectors []float64
	Shift      *labeled.Vector
	Missed     *labeled.Vector
	// Warnings lists zero-eigenvalue terms of the theory χ².
	Warnings []InfiniteChi2Warning

	chi2 float64
}

// Validate projects shift onto every eigenvector and computes the residual.
//
// Implementation:
//   - Stage 1: reject an all-zero shift, count mismatches and foreign indices.
//   - Stage 2: δᵢ ← shift·vᵢ; missed ← shift − Σᵢ δᵢ vᵢ (in order i = 0..k−1).
//   - Stage 3: χ² ← (1/k) Σᵢ δᵢ²/|wᵢ|, recording a warning for wᵢ == 0.
//
// Errors:
//   - ErrEmptyShift, ErrDimensionMismatch, labeled.ErrIndexMismatch.
//
// Complexity:
//   - Time O(k·N), Space O(N).
func Validate(shift *labeled.Vector, eigenvalues []float64, eigenvectors []*labeled.Vector) (*Result, error) {
	if shift == nil || shift.IsZero() {
		return nil, ErrEmptyShift
	}
	k := len(eigenvalues)
	if k == 0 || k != len(eigenvectors) {
		return nil, fmt.Errorf("Validate: %d eigenvalues, %d eigenvectors: %w", k, len(eigenvectors), ErrDimensionMismatch)
	}
	for i, v := range eigenvectors {
		if !shift.Index().Equal(v.Index()) {
			return nil, fmt.Errorf("Validate: eigenvector %d: %w", i, labeled.ErrIndexMismatch)
		}
	}

	res := &Result{
		Eigenvalues:  append([]float64(nil), eigenvalues...),
		Eigenvectors: append([]*labeled.Vector(nil), eigenvectors...),
		Projectors:   make([]float64, k),
		Shift:        shift,
	}
	missed := shift.Values()
	for i, v := range eigenvectors {
		res.Projectors[i] = floats.Dot(shift.RawValues(), v.RawValues())
		floats.AddScaled(missed, -res.Projectors[i], v.RawValues())
	}
	res.Missed, _ = labeled.NewVector(shift.Index(), missed) // same length as shift

	var sum float64
	for i, w := range eigenvalues {
		if w == 0 {
			res.Warnings = append(res.Warnings, InfiniteChi2Warning{Index: i, Projector: res.Projectors[i]})
			sum = math.Inf(1)
			continue
		}
		sum += res.Projectors[i] * res.Projectors[i] / math.Abs(w)
	}
	res.chi2 = sum / float64(k)

	return res, nil
}

// TheoryChi2 returns (1/k) Σᵢ δᵢ²/|wᵢ|. It is +Inf when any eigenvalue is
// exactly zero (see Warnings) and never NaN.
func (r *Result) TheoryChi2() float64 { return r.chi2 }

// Efficiency returns 1 − ‖missed‖/‖shift‖.
func (r *Result) Efficiency() (float64, error) {
	if r.Shift == nil {
		return 0, ErrEmptyShift
	}
	fmod := floats.Norm(r.Shift.RawValues(), 2)
	if fmod == 0 {
		return 0, ErrEmptyShift
	}

	return 1 - floats.Norm(r.Missed.RawValues(), 2)/fmod, nil
}

// ShiftNorm returns ‖shift‖.
func (r *Result) ShiftNorm() float64 { return floats.Norm(r.Shift.RawValues(), 2) }

// MissedNorm returns ‖missed‖.
func (r *Result) MissedNorm() float64 { return floats.Norm(r.Missed.RawValues(), 2) }

// EigenRow is one row of the eigenvalue table.
type EigenRow struct {
	// Rank is 1 for the largest eigenvalue.
	Rank       int
	Eigenvalue float64
	// S is √|w|.
	S float64
	// Delta is the projector δ.
	Delta float64
	// Ratio is δ/s. For s == 0 it is ±Inf, or 0 when δ is also 0.
	Ratio float64
}

// EigenvalueTable lists s = √|w|, δ and δ/s ordered by largest eigenvalue first.
func (r *Result) EigenvalueTable() []EigenRow {
	k := len(r.Eigenvalues)
	rows := make([]EigenRow, 0, k)
	for i := k - 1; i >= 0; i-- {
		w, d := r.Eigenvalues[i], r.Projectors[i]
		s := math.Sqrt(math.Abs(w))
		var ratio float64
		switch {
		case s != 0:
			ratio = d / s
		case d != 0:
			ratio = math.Copysign(math.Inf(1), d)
		}
		rows = append(rows, EigenRow{Rank: k - i, Eigenvalue: w, S: s, Delta: d, Ratio: ratio})
	}

	return rows
}
