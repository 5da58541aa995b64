package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cleaner-cli/internal/analysis"
	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/session"
	"github.com/KaramelBytes/cleaner-cli/internal/utils"
)

var (
	profOutputPath string
	profSampleRows int
	profTopValues  int
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Summarize a CSV: types, missing values, statistics and outliers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		sopt, err := sessionOptions()
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		opt.IQRMultiplier = sopt.IQRMultiplier
		if profSampleRows > 0 {
			opt.SampleRows = profSampleRows
		}
		if profTopValues > 0 {
			opt.TopValues = profTopValues
		}
		ds, err := readFile(cmd.Context(), path, sopt.Read)
		if err != nil {
			return err
		}
		md := analysis.Profile(filepath.Base(path), ds, opt).Markdown()

		if profOutputPath != "" {
			if err := utils.SafeWriteFile(profOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", profOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func readFile(ctx context.Context, path string, opt dataset.ReadOptions) (*dataset.Dataset, error) {
	src := session.FileSource{Path: path}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &session.LoadError{Source: src.Name(), Err: err}
	}
	defer rc.Close()
	ds, err := dataset.ReadCSV(rc, opt)
	if err != nil {
		return nil, &session.LoadError{Source: src.Name(), Err: err}
	}
	return ds, nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profTopValues, "top", 8, "number of frequent values listed per categorical column")
}
