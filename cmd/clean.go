package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cleaner-cli/internal/session"
	"github.com/KaramelBytes/cleaner-cli/internal/shell"
)

var (
	cleanSample string
	cleanScript string
	cleanOutput string
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Start a cleaning session (interactive, or from a script)",
	Long: `Start a cleaning session on a CSV file or a named sample. Commands are read from
stdin, or from --script. Type "help" inside the session for the command list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && cleanSample != "" {
			return fmt.Errorf("give either a file or --sample, not both")
		}
		opt, err := sessionOptions()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		sess := session.New(opt)
		sh := shell.New(sess, cmd.OutOrStdout(), shellOptions())

		switch {
		case len(args) == 1:
			if err := sh.Load(ctx, session.FileSource{Path: args[0]}); err != nil {
				return err
			}
		case cleanSample != "":
			if err := sh.LoadSample(ctx, cleanSample); err != nil {
				return err
			}
		}

		if cleanScript != "" {
			f, err := os.Open(cleanScript)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer f.Close()
			if err := sh.Run(ctx, f, false); err != nil {
				return err
			}
		} else {
			in := cmd.InOrStdin()
			prompt := in == io.Reader(os.Stdin) && isTerminal(os.Stdin)
			if err := sh.Run(ctx, in, prompt); err != nil {
				return err
			}
		}

		if cleanOutput != "" {
			if _, err := sh.Export(cleanOutput); err != nil {
				return err
			}
		}
		return nil
	},
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanSample, "sample", "s", "", "load a named sample dataset (see `cleaner samples`)")
	cleanCmd.Flags().StringVar(&cleanScript, "script", "", "read commands from a file instead of stdin")
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "write the cleaned CSV here when the session ends")
}
