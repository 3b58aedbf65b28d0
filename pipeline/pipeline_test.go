// SPDX-License-Identifier: MIT

package pipeline_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/thcov/eigenbasis"
	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/matrix"
	"github.com/katalvlaran/thcov/pipeline"
	"github.com/katalvlaran/thcov/prescription"
	"github.com/katalvlaran/thcov/process"
	"github.com/katalvlaran/thcov/shiftcheck"
)

var (
	central = []float64{10, 20, 30, 40}
	pp      = []float64{0.05, 0.04, 0.03, 0.06}
	mm      = []float64{-0.04, -0.05, -0.02, -0.03}
)

// fixture returns two processes (DIS NC and DY) with two points each and the
// 3-point inputs whose covariance is spanned by the prescription's vectors.
func fixture(t *testing.T, datasets ...string) pipeline.Inputs {
	t.Helper()
	if len(datasets) == 0 {
		datasets = []string{"NMC", "DYE886R"}
	}
	ix, err := labeled.IndexFromLengths(datasets, []int{2, 2})
	require.NoError(t, err)

	vec := func(xs []float64) *labeled.Vector {
		v, err := labeled.NewVector(ix, xs)
		require.NoError(t, err)
		return v
	}
	varied := func(rel []float64) *labeled.Vector {
		xs := make([]float64, len(central))
		for i := range xs {
			xs[i] = central[i] * (1 - rel[i])
		}
		return vec(xs)
	}

	combos := [][]float64{
		pp,
		{mm[0], mm[1], pp[2], pp[3]},
		{pp[0], pp[1], mm[2], mm[3]},
	}
	n := len(central)
	cov, err := matrix.NewDense(n, n)
	require.NoError(t, err)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			var s float64
			for _, x := range combos {
				s += x[i] * x[j]
			}
			require.NoError(t, cov.Set(i, j, s/3*central[i]*central[j]))
		}
	}
	lcov, err := labeled.NewMatrix(ix, cov)
	require.NoError(t, err)

	return pipeline.Inputs{
		Central:     vec(central),
		ScaleVaried: []*labeled.Vector{varied(pp), varied(mm)},
		Covariance:  lcov,
		Shift:       vec([]float64{0.1, -0.05, 0.2, 0.0}),
	}
}

func threePoint() pipeline.Config {
	return pipeline.Config{Prescription: prescription.Spec{Points: 3}}
}

func TestShiftVectors(t *testing.T) {
	in := fixture(t)
	shifts, err := pipeline.ShiftVectors(in.Central, in.ScaleVaried)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	require.InDeltaSlice(t, pp, shifts[0].Values(), 1e-15)
	require.InDeltaSlice(t, mm, shifts[1].Values(), 1e-15)

	_, err = pipeline.ShiftVectors(nil, in.ScaleVaried)
	require.ErrorIs(t, err, pipeline.ErrMissingInput)
	_, err = pipeline.ShiftVectors(in.Central, []*labeled.Vector{nil})
	require.ErrorIs(t, err, pipeline.ErrMissingInput)
}

func TestReferenceShift(t *testing.T) {
	ix, _ := labeled.IndexFromLengths([]string{"A"}, []int{2})
	base, _ := labeled.NewVector(ix, []float64{2, 4})
	target, _ := labeled.NewVector(ix, []float64{3, 3})
	rel, err := pipeline.ReferenceShift(base, target)
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, -0.25}, rel.Values())

	zero, _ := labeled.NewVector(ix, []float64{0, 4})
	_, err = pipeline.ReferenceShift(zero, target)
	require.ErrorIs(t, err, labeled.ErrZeroDivisor)
	_, err = pipeline.ReferenceShift(nil, target)
	require.ErrorIs(t, err, pipeline.ErrMissingInput)
}

func TestRun_ThreePointTwoProcesses(t *testing.T) {
	in := fixture(t)
	res, err := pipeline.Run(in, threePoint())
	require.NoError(t, err)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, process.Tag("DIS NC"), res.Groups[0].Process)
	assert.Equal(t, process.Tag("DY"), res.Groups[1].Process)
	require.Len(t, res.Combination, 3)
	require.Len(t, res.Labels, 3)

	proj := res.Projection
	require.Len(t, proj.Eigenvalues, 3)
	require.Len(t, proj.Eigenvectors, 3)
	for i, w := range proj.Eigenvalues {
		require.Greater(t, w, 0.0, "eigenvalue %d", i)
		require.Equal(t, 4, proj.Eigenvectors[i].Len())
	}

	val := res.Validation
	require.Empty(t, val.Warnings)
	require.LessOrEqual(t, val.MissedNorm(), val.ShiftNorm()+1e-15)
	rebuilt := val.Missed
	for i, v := range val.Eigenvectors {
		rebuilt, err = rebuilt.AddScaled(val.Projectors[i], v)
		require.NoError(t, err)
	}
	require.InDeltaSlice(t, in.Shift.Values(), rebuilt.Values(), 1e-14)

	eff, err := val.Efficiency()
	require.NoError(t, err)
	require.GreaterOrEqual(t, eff, 0.0)
	require.LessOrEqual(t, eff, 1.0)
}

func TestRun_Idempotent(t *testing.T) {
	in := fixture(t)
	a, err := pipeline.Run(in, threePoint())
	require.NoError(t, err)
	b, err := pipeline.Run(in, threePoint())
	require.NoError(t, err)

	require.Equal(t, a.Projection.Eigenvalues, b.Projection.Eigenvalues)
	require.Equal(t, a.Validation.Projectors, b.Validation.Projectors)
	require.Equal(t, a.Validation.Missed.Values(), b.Validation.Missed.Values())
	require.Equal(t, a.Validation.TheoryChi2(), b.Validation.TheoryChi2())
}

func TestRun_ShiftFromPredictions(t *testing.T) {
	in := fixture(t)
	direct, err := pipeline.Run(in, threePoint())
	require.NoError(t, err)

	target := make([]float64, len(central))
	for i := range target {
		target[i] = central[i] * (1 + in.Shift.At(i))
	}
	in.ShiftBase = in.Central
	in.ShiftTarget, err = labeled.NewVector(in.Central.Index(), target)
	require.NoError(t, err)
	in.Shift = nil

	derived, err := pipeline.Run(in, threePoint())
	require.NoError(t, err)
	e1, _ := direct.Validation.Efficiency()
	e2, _ := derived.Validation.Efficiency()
	require.InDelta(t, e1, e2, 1e-12)
}

func TestRun_SolversAgree(t *testing.T) {
	in := fixture(t)
	jac, err := pipeline.Run(in, threePoint())
	require.NoError(t, err)
	cfg := threePoint()
	cfg.Solver = eigenbasis.SolverLAPACK
	lap, err := pipeline.Run(in, cfg)
	require.NoError(t, err)

	require.InDeltaSlice(t, jac.Projection.Eigenvalues, lap.Projection.Eigenvalues, 1e-12)
	require.InDelta(t, jac.Validation.TheoryChi2(), lap.Validation.TheoryChi2(), 1e-6*jac.Validation.TheoryChi2())
}

func TestRun_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*pipeline.Inputs, *pipeline.Config)
		want   error
	}{
		{"missing covariance", func(in *pipeline.Inputs, _ *pipeline.Config) { in.Covariance = nil }, pipeline.ErrMissingInput},
		{"bad threshold", func(_ *pipeline.Inputs, c *pipeline.Config) { c.Threshold = 2 }, pipeline.ErrInvalidConfig},
		{"bad tolerance", func(_ *pipeline.Inputs, c *pipeline.Config) { c.Tolerance = -1 }, pipeline.ErrInvalidConfig},
		{"bad solver", func(_ *pipeline.Inputs, c *pipeline.Config) { c.Solver = "qr" }, pipeline.ErrInvalidConfig},
		{"shift count", func(in *pipeline.Inputs, _ *pipeline.Config) { in.ScaleVaried = in.ScaleVaried[:1] }, prescription.ErrShiftCount},
		{"unsupported", func(_ *pipeline.Inputs, c *pipeline.Config) {
			c.Prescription = prescription.Spec{Points: 7, Variant: prescription.VariantOriginal}
		}, prescription.ErrUnsupportedPrescription},
		{"zero shift", func(in *pipeline.Inputs, _ *pipeline.Config) { in.Shift = labeled.Zeros(in.Central.Index()) }, shiftcheck.ErrEmptyShift},
		{"no shift", func(in *pipeline.Inputs, _ *pipeline.Config) { in.Shift = nil }, pipeline.ErrMissingInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, cfg := fixture(t), threePoint()
			tc.mutate(&in, &cfg)
			res, err := pipeline.Run(in, cfg)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, res)
		})
	}
}

func TestRun_UnknownDataset(t *testing.T) {
	_, err := pipeline.Run(fixture(t, "NMC", "MYSTERY"), threePoint())
	require.ErrorIs(t, err, process.ErrUnknownDataset)
}

func TestRun_CustomTable(t *testing.T) {
	table := process.Table{Rules: []process.Rule{{Process: "ALL", Patterns: []string{"*"}}}}
	cfg := threePoint()
	cfg.Table = table
	res, err := pipeline.Run(fixture(t, "X", "Y"), cfg)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	// one process: sum(pp) and a single flip
	require.Len(t, res.Combination, 2)
}

func TestRun_LogsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	cfg := threePoint()
	cfg.Logger = &logger
	_, err := pipeline.Run(fixture(t), cfg)
	require.NoError(t, err)

	out := buf.String()
	for _, stage := range []string{"classify", "prescription", "project", "validate"} {
		require.Contains(t, out, `"stage":"`+stage+`"`)
	}
}
