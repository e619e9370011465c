package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8, cfg.Index.K)
	require.Equal(t, 0, cfg.Run.Threads)
	require.Equal(t, "window", cfg.Engine.Mode)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmertax.yaml")
	data := `
index:
  k: 6
  compression: xz
engine:
  mode: global
run:
  threads: 4
output:
  format: jsonl
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Index.K)
	require.Equal(t, "xz", cfg.Index.Compression)
	require.Equal(t, "global", cfg.Engine.Mode)
	require.Equal(t, 4, cfg.Run.Threads)
	require.Equal(t, "jsonl", cfg.Output.Format)
	require.Equal(t, 0.5, cfg.Scoring.TRatio, "unset fields keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: [1, 2"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvThreads, "3")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvIndexPath, "/tmp/x.sqlite")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Run.Threads)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/x.sqlite", cfg.Index.Path)

	t.Setenv(EnvThreads, "many")
	_, err = Load("")
	require.ErrorContains(t, err, EnvThreads)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Query.Orient = true
	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"k":         func(c *Config) { c.Index.K = 16 },
		"codec":     func(c *Config) { c.Index.Compression = "zstd" },
		"mode":      func(c *Config) { c.Engine.Mode = "gapped" },
		"threads":   func(c *Config) { c.Run.Threads = -1 },
		"t_ratio":   func(c *Config) { c.Scoring.TRatio = 0 },
		"precision": func(c *Config) { c.Scoring.Precision = 0 },
		"min_score": func(c *Config) { c.Scoring.MinScore = 2 },
		"min_zero":  func(c *Config) { c.Scoring.MinScore = 0 },
		"format":    func(c *Config) { c.Output.Format = "csv" },
		"log":       func(c *Config) { c.Logging.Format = "xml" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
