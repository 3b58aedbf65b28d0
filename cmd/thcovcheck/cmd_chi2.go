// SPDX-License-Identifier: MIT

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/thcov/config"
	"github.com/katalvlaran/thcov/report"
	"github.com/katalvlaran/thcov/stats"
)

func newChi2Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chi2",
		Short: "Report central and per-replica chi2 and phi, in total and per dataset",
		Args:  cobra.NoArgs,
		RunE:  runChi2,
	}
	cmd.Flags().String("input", "", "Input file with data, data_covariance and replicas")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runChi2(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")
	if err := formatError(format); err != nil {
		return err
	}

	in, err := config.LoadInput(path)
	if err != nil {
		return err
	}
	c, err := in.Chi2()
	if err != nil {
		return err
	}

	total, err := stats.AbsChi2(c.Data.Values(), c.Covariance.Dense(), nil, c.Replicas)
	if err != nil {
		return err
	}
	rows := []report.Chi2Row{report.NewChi2Row("total", total)}

	ix := c.Data.Index()
	for _, ds := range ix.Datasets() {
		pos, err := ix.Positions(ds)
		if err != nil {
			return err
		}
		block, err := c.Covariance.Block(ds, ds)
		if err != nil {
			return err
		}
		data := pick(c.Data.RawValues(), pos)
		reps := make([][]float64, len(c.Replicas))
		for r, rep := range c.Replicas {
			reps[r] = pick(rep, pos)
		}
		d, err := stats.AbsChi2(data, block, nil, reps)
		if err != nil {
			return err
		}
		rows = append(rows, report.NewChi2Row(ds, d))
	}
	log.Debug().Int("datasets", len(rows)-1).Int("replicas", len(c.Replicas)).Msg("computed chi2")

	return report.WriteChi2(cmd.OutOrStdout(), rows, format)
}

func pick(xs []float64, pos []int) []float64 {
	out := make([]float64, len(pos))
	for i, p := range pos {
		out[i] = xs[p]
	}

	return out
}
