// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/thcov/config"
	"github.com/katalvlaran/thcov/pipeline"
	"github.com/katalvlaran/thcov/prescription"
	"github.com/katalvlaran/thcov/report"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Project the theory covariance and test it against the reference shift",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
	cmd.Flags().String("config", "", "Run configuration file (defaults apply when empty)")
	cmd.Flags().String("input", "", "Input file with predictions and covariance")
	cmd.Flags().String("prescription", "", "Override the configured prescription, e.g. 9pt-extended")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	cmd.Flags().String("metrics-out", "", "Write Prometheus textfile metrics to this path")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	inputPath, _ := cmd.Flags().GetString("input")
	override, _ := cmd.Flags().GetString("prescription")
	format, _ := cmd.Flags().GetString("format")
	metricsOut, _ := cmd.Flags().GetString("metrics-out")
	if err := formatError(format); err != nil {
		return err
	}

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if override != "" {
		spec, err := prescription.ParseSpec(override)
		if err != nil {
			return err
		}
		cfg.Prescription = spec
	}
	if !cmd.Root().PersistentFlags().Changed("log-level") {
		lvl, err := cfg.Level()
		if err != nil {
			return err
		}
		zerolog.SetGlobalLevel(lvl)
	}

	in, err := config.LoadInput(inputPath)
	if err != nil {
		return err
	}
	inputs, err := in.Pipeline()
	if err != nil {
		return err
	}
	pc, err := cfg.Pipeline(&log.Logger)
	if err != nil {
		return err
	}
	log.Info().Str("input", inputPath).Stringer("prescription", cfg.Prescription).
		Int("points", inputs.Central.Len()).Msg("starting validation")

	res, err := pipeline.Run(inputs, pc)
	if err != nil {
		return err
	}
	sum, err := report.New(res)
	if err != nil {
		return err
	}
	if err = sum.WriteFormat(cmd.OutOrStdout(), format); err != nil {
		return err
	}
	if metricsOut != "" {
		if err = report.WriteMetrics(metricsOut, sum); err != nil {
			return err
		}
		log.Debug().Str("path", metricsOut).Msg("wrote metrics")
	}
	log.Info().Str("run_id", sum.RunID).Float64("efficiency", float64(sum.Efficiency)).
		Int("subspace", sum.Subspace).Msg("validation complete")

	return nil
}

// formatError reports an unsupported --format before any work is done.
func formatError(format string) error {
	switch format {
	case "", "text", "json":
		return nil
	}

	return fmt.Errorf("unknown format %q (want text or json)", format)
}
