// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/thcov/process"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify NAME...",
		Short: "Print the process type of each dataset name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("processes-file")
			table := process.DefaultTable()
			if path != "" {
				var err error
				if table, err = process.LoadTable(path); err != nil {
					return err
				}
			}
			c, err := process.NewClassifier(table)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range args {
				tag, err := c.Classify(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, tag)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("processes-file", "", "Process table YAML (embedded default when empty)")

	return cmd
}
