// SPDX-License-Identifier: MIT

// Package arclength measures the arc length of PDF members in x at a fixed
// scale Q, a smoothness diagnostic used next to theory-uncertainty studies.
//
// The x range [1e-6, 1] is split into three linear segments of Points grid
// points each; every segment is integrated with a backward difference.
package arclength

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Points is the number of grid points per segment (Points-1 intervals).
const Points = 199

var (
	// ErrNonPositiveScale is returned for Q ≤ 0 or a non-finite Q.
	ErrNonPositiveScale = errors.New("arclength: scale Q must be positive")

	// ErrUnknownFlavour is returned for a flavour without a damping rule.
	ErrUnknownFlavour = errors.New("arclength: unknown flavour")

	// ErrNoMembers is returned when the evaluator has no members.
	ErrNoMembers = errors.New("arclength: PDF has no members")
)

// segments are the [a, b] limits integrated in order.
var segments = [3][2]float64{{1e-6, 1e-4}, {1e-4, 1e-2}, {1e-2, 1}}

// damped reports, per flavour, whether differences are scaled by the second
// grid point of each segment. Valence combinations are not damped.
var damped = map[string]bool{
	"Sigma": true, "g": true, "photon": true,
	"V": false, "V3": false, "V8": false, "V15": false, "V24": false, "V35": false,
	"T3": true, "T8": true, "T15": true, "T24": true, "T35": true,
	"d": true, "u": true, "s": true, "c": true, "b": true, "t": true,
	"dbar": true, "ubar": true, "sbar": true, "cbar": true, "bbar": true, "tbar": true,
}

// DefaultFlavours is the flavour-basis selection used when none is given.
var DefaultFlavours = []string{"sbar", "ubar", "dbar", "g", "d", "u", "s", "c"}

// Evaluator gives x·f(x, Q) for every member of a PDF set.
type Evaluator interface {
	Members() int
	Eval(member int, flavour string, x, q float64) (float64, error)
}

// Func adapts a plain function with N members to Evaluator.
type Func struct {
	N int
	F func(member int, flavour string, x, q float64) float64
}

// Members returns N.
func (f Func) Members() int { return f.N }

// Eval calls F.
func (f Func) Eval(member int, flavour string, x, q float64) (float64, error) {
	return f.F(member, flavour, x, q), nil
}

// Result holds arc lengths indexed [flavour][member].
type Result struct {
	Q        float64
	Flavours []string
	Values   [][]float64
}

// Compute integrates the arc length of every member and flavour at scale q.
//
// Implementation:
//   - For each segment [a, b]: ε ← (b−a)/(Points−1), x₁ ← linspace(a, b),
//     x₀ ← linspace(a−ε, b−ε).
//   - Δ ← f(x₁) − f(x₀), scaled by x₁[1] for damped flavours.
//   - L[fl][m] += Σ √(ε² + Δ²).
//
// Errors:
//   - ErrNonPositiveScale, ErrUnknownFlavour, ErrNoMembers, or any error of pdf.
//
// Complexity:
//   - Time O(3·Points·F·M) evaluations, Space O(F·M).
func Compute(pdf Evaluator, q float64, flavours []string) (*Result, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return nil, fmt.Errorf("Compute: Q=%g: %w", q, ErrNonPositiveScale)
	}
	if flavours == nil {
		flavours = DefaultFlavours
	}
	for _, fl := range flavours {
		if _, ok := damped[fl]; !ok {
			return nil, fmt.Errorf("Compute: %q: %w", fl, ErrUnknownFlavour)
		}
	}
	members := pdf.Members()
	if members <= 0 {
		return nil, fmt.Errorf("Compute: %w", ErrNoMembers)
	}

	res := &Result{Q: q, Flavours: append([]string(nil), flavours...), Values: make([][]float64, len(flavours))}
	for i := range res.Values {
		res.Values[i] = make([]float64, members)
	}

	x1 := make([]float64, Points)
	x0 := make([]float64, Points)
	var (
		m, i, fi int
		f1, f0   float64
		err      error
	)
	for _, seg := range segments {
		a, b := seg[0], seg[1]
		eps := (b - a) / (Points - 1)
		floats.Span(x1, a, b)
		floats.Span(x0, a-eps, b-eps)
		for m = 0; m < members; m++ {
			for fi = 0; fi < len(flavours); fi++ {
				fl := flavours[fi]
				scale := 1.0
				if damped[fl] {
					scale = x1[1]
				}
				var sum float64
				for i = 0; i < Points; i++ {
					if f1, err = pdf.Eval(m, fl, x1[i], q); err != nil {
						return nil, fmt.Errorf("Compute: member %d %s: %w", m, fl, err)
					}
					if f0, err = pdf.Eval(m, fl, x0[i], q); err != nil {
						return nil, fmt.Errorf("Compute: member %d %s: %w", m, fl, err)
					}
					d := (f1 - f0) * scale
					sum += math.Sqrt(eps*eps + d*d)
				}
				res.Values[fi][m] += sum
			}
		}
	}

	return res, nil
}

// FlavourStats summarizes one flavour over members.
type FlavourStats struct {
	Flavour string  `json:"flavour"`
	Mean    float64 `json:"mean"`
	// Std is the population standard deviation over members.
	Std float64 `json:"std"`
}

// Describe returns the mean and spread of the arc length per flavour.
func (r *Result) Describe() []FlavourStats {
	out := make([]FlavourStats, len(r.Flavours))
	for i, fl := range r.Flavours {
		mean, std := stat.PopMeanStdDev(r.Values[i], nil)
		out[i] = FlavourStats{Flavour: fl, Mean: mean, Std: std}
	}

	return out
}
