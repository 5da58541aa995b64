package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// DefaultSamples are the bundled sample datasets, keyed by lowercase name.
var DefaultSamples = map[string]string{
	"imdb":        "https://raw.githubusercontent.com/aravindmarri10/data-cleaning-assistant/main/sample_data/imdb_data.csv",
	"books":       "https://raw.githubusercontent.com/aravindmarri10/data-cleaning-assistant/main/sample_data/books.csv",
	"youtube":     "https://raw.githubusercontent.com/aravindmarri10/data-cleaning-assistant/main/sample_data/Youtube.csv",
	"automobile":  "https://raw.githubusercontent.com/aravindmarri10/data-cleaning-assistant/main/sample_data/automobile_data.csv",
	"ameshousing": "https://raw.githubusercontent.com/aravindmarri10/data-cleaning-assistant/main/sample_data/AmesHousing.csv",
}

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Cleaning defaults
	MissingTokens          []string `mapstructure:"missing_tokens" yaml:"missing_tokens"`
	AutoCleanNullThreshold float64  `mapstructure:"auto_clean_null_threshold" yaml:"auto_clean_null_threshold"`
	IQRMultiplier          float64  `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
	PreviewRows            int      `mapstructure:"preview_rows" yaml:"preview_rows"`

	Samples   map[string]string `mapstructure:"samples" yaml:"samples"`
	OutputDir string            `mapstructure:"output_dir" yaml:"output_dir"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cleaner"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cleaner/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.cleaner/config.yaml) > defaults.
// A .env file in the working directory is read first when present.
func Load(cfgFile string) (*Global, error) {
	// optional; a missing .env is not an error
	_ = godotenv.Load()

	v := newViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func newViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetEnvPrefix("CLEANER")
	v.AutomaticEnv()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("http_timeout_sec", d.HTTPTimeoutSec)
	v.SetDefault("missing_tokens", d.MissingTokens)
	v.SetDefault("auto_clean_null_threshold", d.AutoCleanNullThreshold)
	v.SetDefault("iqr_multiplier", d.IQRMultiplier)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("samples", d.Samples)
	v.SetDefault("output_dir", d.OutputDir)
	return v
}

// Default returns the built-in configuration, ignoring files and env.
func Default() *Global {
	samples := make(map[string]string, len(DefaultSamples))
	for k, v := range DefaultSamples {
		samples[k] = v
	}
	return &Global{
		LogLevel:               "warn",
		LogFormat:              "console",
		HTTPTimeoutSec:         30,
		MissingTokens:          append([]string(nil), dataset.DefaultMissingTokens...),
		AutoCleanNullThreshold: 50,
		IQRMultiplier:          1.5,
		PreviewRows:            5,
		Samples:                samples,
	}
}

// Validate rejects settings the cleaning operations cannot use.
func (c *Global) Validate() error {
	if c.AutoCleanNullThreshold < 0 || c.AutoCleanNullThreshold > 100 {
		return fmt.Errorf("auto_clean_null_threshold must be within 0-100, got %v", c.AutoCleanNullThreshold)
	}
	if c.IQRMultiplier <= 0 {
		return fmt.Errorf("iqr_multiplier must be positive, got %v", c.IQRMultiplier)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("preview_rows must not be negative, got %d", c.PreviewRows)
	}
	if c.HTTPTimeoutSec < 0 {
		return fmt.Errorf("http_timeout_sec must not be negative, got %d", c.HTTPTimeoutSec)
	}
	return nil
}
