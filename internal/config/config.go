// Package config holds kmertax run settings loaded from YAML, the
// environment, and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"kmertax/internal/engine"
	"kmertax/internal/kmer"
	"kmertax/internal/store"
)

// Environment overrides.
const (
	EnvThreads   = "KMERTAX_THREADS"
	EnvLogLevel  = "KMERTAX_LOG_LEVEL"
	EnvIndexPath = "KMERTAX_INDEX_PATH"
)

// Config holds all kmertax configuration.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Query   QueryConfig   `yaml:"query"`
	Engine  EngineConfig  `yaml:"engine"`
	Scoring ScoringConfig `yaml:"scoring"`
	Run     RunConfig     `yaml:"run"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexConfig configures index building.
type IndexConfig struct {
	K           int    `yaml:"k"`
	Path        string `yaml:"path"` // empty: <reference stem>_data.sqlite
	Redo        bool   `yaml:"redo"`
	Compression string `yaml:"compression"` // none, xz
}

type QueryConfig struct {
	Orient bool `yaml:"orient"`
}

type EngineConfig struct {
	Mode string `yaml:"mode"` // window, global
}

// ScoringConfig configures confidence scoring and ranking.
type ScoringConfig struct {
	MinScore  float64 `yaml:"min_score"`
	Precision int     `yaml:"precision"`
	TRatio    float64 `yaml:"t_ratio"`
}

type RunConfig struct {
	Threads  int  `yaml:"threads"` // 0 runs serially
	Progress bool `yaml:"progress"`
}

// OutputConfig configures result files.
type OutputConfig struct {
	Format string `yaml:"format"` // text, tsv, json, jsonl
	Dir    string `yaml:"dir"`    // empty: results go to stdout
	Matrix bool   `yaml:"matrix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			K:           kmer.DefaultK,
			Compression: string(store.CodecNone),
		},
		Engine: EngineConfig{Mode: string(engine.ModeWindow)},
		Scoring: ScoringConfig{
			MinScore:  0.005,
			Precision: 2,
			TRatio:    0.5,
		},
		Output:  OutputConfig{Format: "text"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThreads, err)
		}
		c.Run.Threads = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvIndexPath); v != "" {
		c.Index.Path = v
	}
	return nil
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := kmer.ValidateK(c.Index.K); err != nil {
		return err
	}
	if _, err := store.ParseCodec(c.Index.Compression); err != nil {
		return err
	}
	if _, err := engine.ParseMode(c.Engine.Mode); err != nil {
		return err
	}
	if c.Run.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Run.Threads)
	}
	if c.Scoring.TRatio <= 0 || c.Scoring.TRatio > 1 {
		return fmt.Errorf("t_ratio must be in (0, 1], got %g", c.Scoring.TRatio)
	}
	if c.Scoring.Precision < 1 || c.Scoring.Precision > 10 {
		return fmt.Errorf("precision must be in [1, 10], got %d", c.Scoring.Precision)
	}
	if c.Scoring.MinScore <= 0 || c.Scoring.MinScore > 1 {
		return fmt.Errorf("min_score must be in (0, 1], got %g", c.Scoring.MinScore)
	}
	switch c.Output.Format {
	case "text", "tsv", "json", "jsonl":
	default:
		return fmt.Errorf("unknown output format %q (want text|tsv|json|jsonl)", c.Output.Format)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q (want json|console)", c.Logging.Format)
	}
	return nil
}
