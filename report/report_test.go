// SPDX-License-Identifier: MIT

package report_test

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/matrix"
	"github.com/katalvlaran/thcov/pipeline"
	"github.com/katalvlaran/thcov/prescription"
	"github.com/katalvlaran/thcov/report"
	"github.com/katalvlaran/thcov/stats"
)

func run(t *testing.T) *pipeline.Result {
	t.Helper()
	ix, err := labeled.IndexFromLengths([]string{"NMC", "DYE886R"}, []int{2, 2})
	require.NoError(t, err)
	vec := func(xs ...float64) *labeled.Vector {
		v, err := labeled.NewVector(ix, xs)
		require.NoError(t, err)
		return v
	}
	cov, err := matrix.NewIdentity(4)
	require.NoError(t, err)
	lcov, err := labeled.NewMatrix(ix, cov)
	require.NoError(t, err)

	res, err := pipeline.Run(pipeline.Inputs{
		Central:     vec(1, 1, 1, 1),
		ScaleVaried: []*labeled.Vector{vec(0.95, 0.96, 0.97, 0.94), vec(1.04, 1.05, 1.02, 1.03)},
		Covariance:  lcov,
		Shift:       vec(0.1, -0.05, 0.2, 0),
	}, pipeline.Config{Prescription: prescription.Spec{Points: 3}})
	require.NoError(t, err)

	return res
}

func TestNew(t *testing.T) {
	_, err := report.New(nil)
	require.ErrorIs(t, err, report.ErrNilResult)

	s, err := report.New(run(t))
	require.NoError(t, err)
	_, err = uuid.Parse(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, "3pt", s.Prescription)
	assert.Equal(t, []string{"DIS NC", "DY"}, s.Processes)
	assert.Len(t, s.Vectors, 3)
	assert.Equal(t, 3, s.Subspace)
	require.Len(t, s.Eigen, 3)
	assert.Equal(t, 1, s.Eigen[0].Rank)
	require.Len(t, s.Points, 4)
	assert.Equal(t, "DYE886R", s.Points[2].Dataset)
	assert.Equal(t, 0, s.Points[2].Point)
	assert.InDelta(t, 0.2, float64(s.Points[2].Shift), 1e-15)
	assert.LessOrEqual(t, float64(s.MissedNorm), float64(s.ShiftNorm))

	other, err := report.New(run(t))
	require.NoError(t, err)
	assert.NotEqual(t, s.RunID, other.RunID)
}

func TestWriteText(t *testing.T) {
	s, err := report.New(run(t))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, s.WriteFormat(&buf, "text"))
	out := buf.String()
	for _, want := range []string{s.RunID, "efficiency", "theory chi2", "eigenvalue", "delta/s", "DYE886R", "DIS NC, DY"} {
		assert.Contains(t, out, want)
	}
	require.Error(t, s.WriteFormat(&buf, "xml"))
}

func TestWriteJSON(t *testing.T) {
	s, err := report.New(run(t))
	require.NoError(t, err)
	s.TheoryChi2 = report.Float(math.Inf(1))

	var buf bytes.Buffer
	require.NoError(t, s.WriteFormat(&buf, "json"))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, s.RunID, doc["run_id"])
	assert.Equal(t, 3.0, doc["subspace_dimension"])
	assert.Equal(t, "+Inf", doc["theory_chi2"])
	assert.Len(t, doc["points"], 4)
	assert.Len(t, doc["subspace_matrix"], 3)
}

func TestWriteMetrics(t *testing.T) {
	s, err := report.New(run(t))
	require.NoError(t, err)

	reg, err := report.Registry(s)
	require.NoError(t, err)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	series := make(map[string]int)
	for _, mf := range mfs {
		series[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, 3, series["thcov_eigenvalue"])
	assert.Equal(t, 1, series["thcov_efficiency"])
	assert.Equal(t, 1, series["thcov_missed_norm"])

	path := filepath.Join(t.TempDir(), "thcov.prom")
	require.NoError(t, report.WriteMetrics(path, s))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE thcov_theory_chi2 gauge")
	assert.Contains(t, text, `run_id="`+s.RunID+`"`)
	assert.True(t, strings.Contains(text, `rank="3"`))
}

func TestChi2Rows(t *testing.T) {
	rows := []report.Chi2Row{
		report.NewChi2Row("total", stats.Chi2Data{Replicas: []float64{3, 5}, Central: 2, NData: 2}),
		report.NewChi2Row("negative", stats.Chi2Data{Replicas: []float64{1}, Central: 2, NData: 1}),
	}
	assert.Equal(t, report.Float(1), rows[0].Chi2PerData)
	assert.InDelta(t, 1.0, float64(rows[0].Phi), 1e-15)
	assert.True(t, math.IsNaN(float64(rows[1].Phi)))

	var buf bytes.Buffer
	require.NoError(t, report.WriteChi2(&buf, rows, "text"))
	assert.Contains(t, buf.String(), "replica std")
	buf.Reset()
	require.NoError(t, report.WriteChi2(&buf, rows, "json"))
	assert.Contains(t, buf.String(), `"phi": "NaN"`)
}
