// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/thcov/prescription"
)

func newPrescriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prescriptions",
		Short: "List supported prescriptions with their shift directions and vector counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("processes")
			if n < 1 {
				return fmt.Errorf("--processes must be at least 1, got %d", n)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "prescription\tdirections\tvectors (%d processes)\n", n)
			for _, spec := range prescription.Supported() {
				dirs, err := spec.Directions()
				if err != nil {
					return err
				}
				count, err := spec.VectorCount(n)
				if err != nil {
					return err
				}
				names := make([]string, len(dirs))
				for i, d := range dirs {
					names[i] = string(d)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", spec, strings.Join(names, " "), count)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("processes", 1, "Number of process types")

	return cmd
}
