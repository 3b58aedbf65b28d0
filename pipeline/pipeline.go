// SPDX-License-Identifier: MIT

// Package pipeline wires the theory-covariance validation chain:
//
//	predictions → shift vectors → process groups → combination vectors
//	→ orthonormal basis → projected eigenpairs → shift validation
//
// Run is a pure function of its inputs; identical inputs give bit-identical
// results. The only side effect is optional zerolog output.
package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/thcov/eigenbasis"
	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/prescription"
	"github.com/katalvlaran/thcov/process"
	"github.com/katalvlaran/thcov/shiftcheck"
	"github.com/katalvlaran/thcov/vecalg"
)

var (
	// ErrMissingInput is returned when a required input is nil.
	ErrMissingInput = errors.New("pipeline: missing input")

	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("pipeline: invalid config")
)

// Inputs are the already-loaded arrays of one validation run. All vectors and
// the covariance must share one index.
type Inputs struct {
	// Central is the central theory prediction T.
	Central *labeled.Vector
	// ScaleVaried holds one prediction per prescription direction, in the
	// order of prescription.Spec.Directions.
	ScaleVaried []*labeled.Vector
	// Covariance is the raw (absolute) theory covariance matrix.
	Covariance *labeled.Matrix
	// Shift is the relative reference shift. When nil it is derived from
	// ShiftBase and ShiftTarget with ReferenceShift.
	Shift       *labeled.Vector
	ShiftBase   *labeled.Vector
	ShiftTarget *labeled.Vector
}

// Config selects the prescription and numerical settings of a run.
type Config struct {
	Prescription prescription.Spec
	// Table classifies datasets; a table without rules selects process.DefaultTable.
	Table         process.Table
	Solver        eigenbasis.Solver
	Tolerance     float64 // 0 → eigenbasis.DefaultTolerance
	MaxIterations int     // 0 → automatic
	Threshold     float64 // 0 → no correlation filter
	// Logger receives stage logs; nil disables logging.
	Logger *zerolog.Logger
}

// Result bundles every intermediate product of Run.
type Result struct {
	Spec        prescription.Spec
	Groups      []process.Group
	Labels      []string
	Combination []*labeled.Vector
	Projection  *eigenbasis.Projection
	Validation  *shiftcheck.Result
}

// ShiftVectors returns the relative scale-variation shifts (T − Sₖ)/T.
func ShiftVectors(central *labeled.Vector, scaleVaried []*labeled.Vector) ([]*labeled.Vector, error) {
	if central == nil {
		return nil, fmt.Errorf("ShiftVectors: central: %w", ErrMissingInput)
	}
	out := make([]*labeled.Vector, len(scaleVaried))
	for k, s := range scaleVaried {
		if s == nil {
			return nil, fmt.Errorf("ShiftVectors: scale variation %d: %w", k, ErrMissingInput)
		}
		diff, err := central.Sub(s)
		if err != nil {
			return nil, fmt.Errorf("ShiftVectors: scale variation %d: %w", k, err)
		}
		if out[k], err = diff.DivElem(central); err != nil {
			return nil, fmt.Errorf("ShiftVectors: scale variation %d: %w", k, err)
		}
	}

	return out, nil
}

// ReferenceShift returns (target − base)/base, e.g. the NNLO−NLO shift
// relative to the NLO prediction.
func ReferenceShift(base, target *labeled.Vector) (*labeled.Vector, error) {
	if base == nil || target == nil {
		return nil, fmt.Errorf("ReferenceShift: %w", ErrMissingInput)
	}
	diff, err := target.Sub(base)
	if err != nil {
		return nil, fmt.Errorf("ReferenceShift: %w", err)
	}
	rel, err := diff.DivElem(base)
	if err != nil {
		return nil, fmt.Errorf("ReferenceShift: %w", err)
	}

	return rel, nil
}

// options translates the numeric settings into eigenbasis options.
func (c Config) options() ([]eigenbasis.Option, error) {
	solver, err := eigenbasis.ParseSolver(string(c.Solver))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	opts := []eigenbasis.Option{eigenbasis.WithSolver(solver)}
	switch {
	case math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) || c.Tolerance < 0:
		return nil, fmt.Errorf("tolerance %g: %w", c.Tolerance, ErrInvalidConfig)
	case c.Tolerance > 0:
		opts = append(opts, eigenbasis.WithTolerance(c.Tolerance))
	}
	if c.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations %d: %w", c.MaxIterations, ErrInvalidConfig)
	}
	opts = append(opts, eigenbasis.WithMaxIterations(c.MaxIterations))
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return nil, fmt.Errorf("threshold %g: %w", c.Threshold, ErrInvalidConfig)
	}
	opts = append(opts, eigenbasis.WithThreshold(c.Threshold))

	return opts, nil
}

// Run executes the whole chain.
//
// Stages: classify and group datasets, build the prescription's combination
// vectors from the relative shifts, orthonormalize them, project the
// covariance onto their span, and validate the reference shift against the
// eigenvectors.
//
// Errors from each stage are wrapped with the stage name; sentinels remain
// reachable with errors.Is. No partial result is returned on failure.
func Run(in Inputs, cfg Config) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if in.Central == nil || in.Covariance == nil {
		return nil, fmt.Errorf("Run: %w", ErrMissingInput)
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	ix := in.Central.Index()

	table := cfg.Table
	if len(table.Rules) == 0 {
		table = process.DefaultTable()
	}
	classifier, err := process.NewClassifier(table)
	if err != nil {
		return nil, fmt.Errorf("Run: classify: %w", err)
	}
	groups, err := process.GroupIndex(classifier, ix)
	if err != nil {
		return nil, fmt.Errorf("Run: classify: %w", err)
	}
	groups = prescription.PresentGroups(groups, ix)
	logger.Debug().Str("stage", "classify").Int("datasets", len(ix.Datasets())).
		Int("processes", len(groups)).Msg("grouped datasets by process")

	shifts, err := ShiftVectors(in.Central, in.ScaleVaried)
	if err != nil {
		return nil, fmt.Errorf("Run: shifts: %w", err)
	}
	combos, err := prescription.Build(groups, shifts, cfg.Prescription)
	if err != nil {
		return nil, fmt.Errorf("Run: prescription: %w", err)
	}
	labels, err := prescription.Labels(groups, cfg.Prescription)
	if err != nil {
		return nil, fmt.Errorf("Run: prescription: %w", err)
	}
	logger.Debug().Str("stage", "prescription").Stringer("prescription", cfg.Prescription).
		Int("vectors", len(combos)).Msg("built combination vectors")

	basis, err := vecalg.Orthonormalize(combos)
	if err != nil {
		return nil, fmt.Errorf("Run: orthonormalize: %w", err)
	}
	proj, err := eigenbasis.Project(in.Covariance, in.Central, basis, opts...)
	if err != nil {
		return nil, fmt.Errorf("Run: project: %w", err)
	}
	logger.Debug().Str("stage", "project").Int("subspace", len(proj.Eigenvalues)).
		Floats64("eigenvalues", proj.Eigenvalues).Msg("diagonalized projected covariance")

	shift := in.Shift
	if shift == nil {
		if shift, err = ReferenceShift(in.ShiftBase, in.ShiftTarget); err != nil {
			return nil, fmt.Errorf("Run: shift: %w", err)
		}
	}
	val, err := shiftcheck.Validate(shift, proj.Eigenvalues, proj.Eigenvectors)
	if err != nil {
		return nil, fmt.Errorf("Run: validate: %w", err)
	}
	for _, w := range val.Warnings {
		logger.Warn().Int("eigenpair", w.Index).Float64("projector", w.Projector).
			Msg("zero eigenvalue: theory chi2 is infinite")
	}
	eff, _ := val.Efficiency() // shift is non-zero after Validate
	logger.Debug().Str("stage", "validate").Float64("efficiency", eff).
		Float64("theory_chi2", val.TheoryChi2()).Msg("validated reference shift")

	return &Result{
		Spec:        cfg.Prescription,
		Groups:      groups,
		Labels:      labels,
		Combination: combos,
		Projection:  proj,
		Validation:  val,
	}, nil
}
