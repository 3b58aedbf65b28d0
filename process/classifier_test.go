// SPDX-License-Identifier: MIT

package process_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/thcov/labeled"
	"github.com/katalvlaran/thcov/process"
)

func TestDefaultTable_Classify(t *testing.T) {
	c, err := process.NewClassifier(process.DefaultTable())
	require.NoError(t, err)

	for name, want := range map[string]process.Tag{
		"NMCPD":             "DIS NC",
		"HERACOMBNCEP920":   "DIS NC",
		"CHORUSNU":          "DIS CC",
		"HERACOMBCCEM":      "DIS CC",
		"DYE886R":           "DY",
		"LHCBZ940PB":        "DY",
		"ATLAS1JET11":       "JETS",
		"CMSTTBARTOT":       "TOP",
		"ATLAS_2JET_7TEV":   "DIJET",
		"ATLASPHT15":        "PHT",
		"CMS_SINGLETOP_TCH": "SINGLETOP",
	} {
		got, err := c.Classify(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestClassify_UnknownNeverDefaults(t *testing.T) {
	c, err := process.NewClassifier(process.DefaultTable())
	require.NoError(t, err)
	_, err = c.Classify("MYSTERY")
	require.ErrorIs(t, err, process.ErrUnknownDataset)
	// matching is case-sensitive
	_, err = c.Classify("nmcpd")
	require.ErrorIs(t, err, process.ErrUnknownDataset)
}

func TestClassify_FirstRuleWins(t *testing.T) {
	c, err := process.NewClassifier(process.Table{Rules: []process.Rule{
		{Process: "A", Patterns: []string{"X*"}},
		{Process: "B", Patterns: []string{"XY*"}},
	}})
	require.NoError(t, err)
	tag, err := c.Classify("XYZ")
	require.NoError(t, err)
	require.Equal(t, process.Tag("A"), tag)
	require.Equal(t, []process.Tag{"A", "B"}, c.Processes())
}

func TestClassifier_TableIsCopied(t *testing.T) {
	tbl := process.Table{Rules: []process.Rule{{Process: "A", Patterns: []string{"X"}}}}
	c, err := process.NewClassifier(tbl)
	require.NoError(t, err)
	tbl.Rules[0].Patterns[0] = "Y"
	_, err = c.Classify("X")
	require.NoError(t, err)
}

func TestTable_Validate(t *testing.T) {
	for name, tbl := range map[string]process.Table{
		"empty":       {},
		"no process":  {Rules: []process.Rule{{Patterns: []string{"A"}}}},
		"no patterns": {Rules: []process.Rule{{Process: "A"}}},
		"bad pattern": {Rules: []process.Rule{{Process: "A", Patterns: []string{"[a"}}}},
	} {
		_, err := process.NewClassifier(tbl)
		require.ErrorIs(t, err, process.ErrInvalidTable, name)
	}
}

func TestParseAndLoadTable(t *testing.T) {
	data := []byte("rules:\n  - process: JETS\n    patterns: [\"CMSJETS*\"]\n")
	tbl, err := process.ParseTable(data)
	require.NoError(t, err)
	require.Len(t, tbl.Rules, 1)
	require.Equal(t, process.Tag("JETS"), tbl.Rules[0].Process)

	file := filepath.Join(t.TempDir(), "procs.yaml")
	require.NoError(t, os.WriteFile(file, data, 0o600))
	loaded, err := process.LoadTable(file)
	require.NoError(t, err)
	require.Equal(t, tbl, loaded)

	_, err = process.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	_, err = process.ParseTable([]byte("rules: {"))
	require.Error(t, err)
}

func TestGroupIndex(t *testing.T) {
	c, err := process.NewClassifier(process.DefaultTable())
	require.NoError(t, err)
	ix, err := labeled.IndexFromLengths(
		[]string{"DYE886R", "NMCPD", "CMSDY2D11", "SLACP"},
		[]int{2, 1, 1, 3},
	)
	require.NoError(t, err)

	groups, err := process.GroupIndex(c, ix)
	require.NoError(t, err)
	require.Equal(t, []process.Group{
		{Process: "DY", Datasets: []string{"DYE886R", "CMSDY2D11"}},
		{Process: "DIS NC", Datasets: []string{"NMCPD", "SLACP"}},
	}, groups)

	bad, err := labeled.IndexFromLengths([]string{"NMCPD", "UNKNOWN"}, []int{1, 1})
	require.NoError(t, err)
	_, err = process.GroupIndex(c, bad)
	require.ErrorIs(t, err, process.ErrUnknownDataset)
}
