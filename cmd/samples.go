package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the sample datasets available to `clean --sample`",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples := settings().Samples
		if len(samples) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No samples configured")
			return nil
		}
		names := make([]string, 0, len(samples))
		for n := range samples {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", n, samples[n])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}
