package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/cleaner-cli/internal/config"
	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/logging"
	"github.com/KaramelBytes/cleaner-cli/internal/session"
	"github.com/KaramelBytes/cleaner-cli/internal/shell"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// HTTP/CSV flags (override config if set)
	flagHTTPTimeoutSec int
	flagDelimiter      string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "cleaner",
	Short: "Cleaner: interactive CSV cleaning with undo",
	Long: `Cleaner loads a CSV dataset and applies cleaning operations (duplicate removal,
column dropping, null handling, outlier handling, type conversion) with snapshot-based
undo and reset, then exports the result.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cleaner/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP timeout in seconds for sample downloads (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logging disabled: %v\n", err)
		return
	}
	logger = l
}

func settings() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

func sessionOptions() (session.Options, error) {
	c := settings()
	delim, err := parseDelimiter(flagDelimiter)
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Logger:        logger,
		Read:          dataset.ReadOptions{Delimiter: delim, MissingTokens: c.MissingTokens},
		IQRMultiplier: c.IQRMultiplier,
	}, nil
}

func shellOptions() shell.Options {
	c := settings()
	return shell.Options{
		Samples:       c.Samples,
		HTTPTimeout:   time.Duration(c.HTTPTimeoutSec) * time.Second,
		PreviewRows:   c.PreviewRows,
		IQRMultiplier: c.IQRMultiplier,
		NullThreshold: c.AutoCleanNullThreshold,
		OutputDir:     c.OutputDir,
		Logger:        logger,
	}
}
