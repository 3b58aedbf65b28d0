// SPDX-License-Identifier: MIT

// Command thcovcheck validates a scale-variation theory covariance matrix
// against a reference shift and reports the χ² estimators of an input file.
//
//	thcovcheck validate --config run.yaml --input input.yaml --format json
//	thcovcheck classify NMC DYE886R
//	thcovcheck prescriptions --processes 5
//	thcovcheck chi2 --input input.yaml
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "thcovcheck"
	version = "v0.4.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg(appName + " failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Validate scale-variation theory covariance matrices",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Root().PersistentFlags().GetString("log-level")
			if level == "" {
				return nil
			}
			return setLevel(level)
		},
	}
	root.PersistentFlags().String("log-level", "", "Log level (trace|debug|info|warn|error); overrides the config file")

	root.AddCommand(newValidateCmd(), newClassifyCmd(), newPrescriptionsCmd(), newChi2Cmd())

	return root
}

func setLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	return nil
}
