package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countsCmd = &cobra.Command{
	Use:     "counts",
	Short:   "Show recipe counters",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := api.Counts(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), counts)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "All:       %d\n", counts.All)
		fmt.Fprintf(cmd.OutOrStdout(), "Published: %d\n", counts.Published)
		return nil
	},
}
