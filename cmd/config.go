package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cleaner-cli/internal/config"
	"github.com/KaramelBytes/cleaner-cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cleaner configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(w, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(w, "missing_tokens: %s\n", strings.Join(c.MissingTokens, ", "))
		fmt.Fprintf(w, "auto_clean_null_threshold: %.2f\n", c.AutoCleanNullThreshold)
		fmt.Fprintf(w, "iqr_multiplier: %.3f\n", c.IQRMultiplier)
		fmt.Fprintf(w, "preview_rows: %d\n", c.PreviewRows)
		if c.OutputDir != "" {
			fmt.Fprintf(w, "output_dir: %s\n", c.OutputDir)
		}
		names := make([]string, 0, len(c.Samples))
		for n := range c.Samples {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "samples: %s\n", strings.Join(names, ", "))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := settings()
		switch key {
		case "log_level":
			if _, err := logging.New(val, c.LogFormat); err != nil {
				return err
			}
			c.LogLevel = val
		case "log_format":
			switch val {
			case "console", "json":
				c.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use console or json)", val)
			}
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "missing_tokens":
			var toks []string
			for _, t := range strings.Split(val, ",") {
				if t = strings.TrimSpace(t); t != "" {
					toks = append(toks, t)
				}
			}
			c.MissingTokens = toks
		case "auto_clean_null_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for auto_clean_null_threshold: %w", err)
			}
			c.AutoCleanNullThreshold = f
		case "iqr_multiplier":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for iqr_multiplier: %w", err)
			}
			c.IQRMultiplier = f
		case "preview_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for preview_rows: %w", err)
			}
			c.PreviewRows = i
		case "output_dir":
			c.OutputDir = val
		default:
			if name, ok := strings.CutPrefix(key, "samples."); ok && name != "" {
				if c.Samples == nil {
					c.Samples = map[string]string{}
				}
				c.Samples[strings.ToLower(name)] = val
				break
			}
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
