// SPDX-License-Identifier: MIT

// Package eigenbasis: functional configuration for Project. This file defines:
//   - Solver selection (cyclic Jacobi rotations or gonum LAPACK),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal).
//
// Notes:
//   - The Jacobi tolerance is relative: it is multiplied by the Frobenius
//     norm of the projected matrix, which lives in relative units (~1e-4).
//   - MaxIterations == 0 selects an automatic cap of 100·k²+100 rotations.
package eigenbasis

import (
	"fmt"
	"math"
)

// Solver selects the symmetric eigensolver.
type Solver string

// Available solvers.
const (
	// SolverJacobi uses matrix.Eigen (cyclic-pivot Jacobi rotations).
	SolverJacobi Solver = "jacobi"
	// SolverLAPACK uses gonum's mat.EigenSym (LAPACK dsyev).
	SolverLAPACK Solver = "lapack"
)

// ParseSolver maps a configuration string onto a Solver.
func ParseSolver(s string) (Solver, error) {
	switch Solver(s) {
	case SolverJacobi, SolverLAPACK:
		return Solver(s), nil
	case "":
		return DefaultSolver, nil
	}

	return "", fmt.Errorf("eigenbasis: unknown solver %q", s)
}

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultSolver is the in-tree Jacobi kernel.
	DefaultSolver = SolverJacobi

	// DefaultTolerance bounds the largest off-diagonal element, relative to ‖M‖_F.
	DefaultTolerance = 1e-12

	// DefaultMaxIterations of 0 means "automatic" (100·k²+100).
	DefaultMaxIterations = 0

	// DefaultThreshold of 0 disables the correlation pre-filter.
	DefaultThreshold = 0.0
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicSolverInvalid    = "eigenbasis: WithSolver: unknown solver"
	panicToleranceInvalid = "eigenbasis: WithTolerance: tol must be finite and > 0"
	panicMaxIterInvalid   = "eigenbasis: WithMaxIterations: n must be >= 0"
	panicThresholdInvalid = "eigenbasis: WithThreshold: t must be in [0, 1]"
)

// Option mutates internal options. Constructors panic only on nonsensical values.
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	solver    Solver
	tol       float64
	maxIter   int
	threshold float64
}

// WithSolver selects the eigensolver.
func WithSolver(s Solver) Option {
	if s != SolverJacobi && s != SolverLAPACK {
		panic(panicSolverInvalid)
	}

	return func(o *Options) { o.solver = s }
}

// WithTolerance sets the relative Jacobi convergence tolerance.
// Ignored by SolverLAPACK.
func WithTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.tol = tol }
}

// WithMaxIterations caps the number of Jacobi rotations; 0 means automatic.
func WithMaxIterations(n int) Option {
	if n < 0 {
		panic(panicMaxIterInvalid)
	}

	return func(o *Options) { o.maxIter = n }
}

// WithThreshold enables the correlation pre-filter: off-diagonal elements of
// the normalized covariance whose correlation magnitude is below t are zeroed
// before projection. t == 0 disables it.
func WithThreshold(t float64) Option {
	if math.IsNaN(t) || t < 0 || t > 1 {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) { o.threshold = t }
}

// gatherOptions resolves opts over the defaults.
func gatherOptions(opts ...Option) Options {
	o := Options{
		solver:    DefaultSolver,
		tol:       DefaultTolerance,
		maxIter:   DefaultMaxIterations,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// autoMaxIter returns the rotation cap used when MaxIterations is 0.
func autoMaxIter(k int) int { return 100*k*k + 100 }
