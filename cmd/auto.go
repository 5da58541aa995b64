package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cleaner-cli/internal/ops"
	"github.com/KaramelBytes/cleaner-cli/internal/session"
	"github.com/KaramelBytes/cleaner-cli/internal/shell"
	"github.com/KaramelBytes/cleaner-cli/internal/utils"
)

var (
	autoOutput    string
	autoThreshold float64
	autoQuiet     bool
)

var autoCmd = &cobra.Command{
	Use:   "auto <files...>",
	Short: "Run the automatic cleaning pipeline on one or more CSV files",
	Long: `Run, per file: drop duplicates, drop columns above the null threshold, fill numeric
nulls with the median and text nulls with the most frequent value, then export.
With one input --output is the file to write; with several it is a directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		opt, err := sessionOptions()
		if err != nil {
			return err
		}
		threshold := settings().AutoCleanNullThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = autoThreshold
		}
		out := autoOutput
		if out == "" {
			out = settings().OutputDir
		}
		single := len(files) == 1 && strings.EqualFold(filepath.Ext(out), ".csv")

		ctx := cmd.Context()
		store := session.NewStore(opt)
		total := len(files)
		used := make(map[string]bool, total)
		for i, path := range files {
			if !autoQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			sess := store.Create()
			w := cmd.OutOrStdout()
			if autoQuiet {
				w = io.Discard
			}
			sh := shell.New(sess, w, shellOptions())
			if err := sh.Load(ctx, session.FileSource{Path: path}); err != nil {
				return err
			}
			if _, err := sh.AutoClean(ops.AutoCleanOptions{NullThreshold: threshold}); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			dest := out
			if !single {
				dest = batchExportPath(out, path, used)
			}
			written, err := sh.Export(dest)
			if err != nil {
				return err
			}
			if autoQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), written)
			}
			store.Delete(sess.ID())
		}
		return nil
	},
}

// batchExportPath returns cleaned_<name>.csv in dir, prefixing the parent
// directory name (then a counter) when an earlier input already took it.
func batchExportPath(dir, path string, used map[string]bool) string {
	name := filepath.Base(path)
	dest := shell.ExportPath(dir, name)
	if used[dest] {
		parent := filepath.Base(filepath.Dir(path))
		dest = shell.ExportPath(dir, parent+"_"+name)
		for n := 2; used[dest]; n++ {
			dest = shell.ExportPath(dir, fmt.Sprintf("%s_%s_%d", parent, strings.TrimSuffix(name, filepath.Ext(name)), n))
		}
	}
	used[dest] = true
	return dest
}

func init() {
	rootCmd.AddCommand(autoCmd)
	autoCmd.Flags().StringVarP(&autoOutput, "output", "o", "", "output CSV (one input) or directory (default: output_dir from config, else current dir)")
	autoCmd.Flags().Float64Var(&autoThreshold, "threshold", 50, "drop columns with more than this percentage of missing values")
	autoCmd.Flags().BoolVarP(&autoQuiet, "quiet", "q", false, "only print the written paths")
}
