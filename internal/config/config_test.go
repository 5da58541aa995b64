package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "warn", c.LogLevel)
	require.Equal(t, 30, c.HTTPTimeoutSec)
	require.Equal(t, 50.0, c.AutoCleanNullThreshold)
	require.Equal(t, 1.5, c.IQRMultiplier)
	require.Equal(t, 5, c.PreviewRows)
	require.Contains(t, c.Samples, "imdb")
	require.Contains(t, c.MissingTokens, "n/a")
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("iqr_multiplier: 3\npreview_rows: 10\n"), 0o644))
	t.Setenv("CLEANER_PREVIEW_ROWS", "2")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3.0, c.IQRMultiplier)
	require.Equal(t, 2, c.PreviewRows)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_clean_null_threshold: 120\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit config file must exist")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "c.yaml")
	c, err := Load("")
	require.NoError(t, err)
	c.OutputDir = "/tmp/out"
	c.IQRMultiplier = 2
	require.NoError(t, Save(c, path))

	back, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/out", back.OutputDir)
	require.Equal(t, 2.0, back.IQRMultiplier)
}

func TestDefaultIsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	d.Samples["extra"] = "http://example.invalid"
	require.NotContains(t, DefaultSamples, "extra")
}
