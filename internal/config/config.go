// Package config handles application configuration and command-line argument parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
)

// DefaultWorkers is the default copy concurrency.
const DefaultWorkers = 4

// Config holds the application configuration
type Config struct {
	InputPath    string `arg:"-i,--input" help:"Input directory path (or sftp:// URL)"`
	OutputPath   string `arg:"-o,--output" help:"Output directory path (or sftp:// URL)"`
	Pattern      string `arg:"-p,--pattern" help:"Optional glob filter applied to both trees (e.g. '**/*.mov')"`
	Workers      int    `arg:"-w,--workers" default:"4" help:"Number of concurrent workers"`
	NoClean      bool   `arg:"--no-clean" help:"Keep output files absent from the input tree"`
	NoPrune      bool   `arg:"--no-prune" help:"Keep directories left empty after cleanup"`
	DeleteHidden bool   `arg:"--delete-hidden" help:"Treat OS marker files (.DS_Store, Thumbs.db, desktop.ini) as deletable when pruning"`
	MaxDepth     int    `arg:"--max-depth" help:"Prune recursion bound (0 = unlimited)"`
	Quiet        bool   `arg:"-q,--quiet" help:"Suppress progress output"`
	Plain        bool   `arg:"--plain" help:"Plain line-based progress instead of the TUI"`
	LogFile      string `arg:"--log-file" help:"Write a debug log to the given path"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "One-way directory reconciliation: make the output tree's file set match the input tree's"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "mirror-tree 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		Workers: DefaultWorkers,
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	if err := cfg.ValidatePaths(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidatePaths validates that input and output paths are usable.
// Remote sftp:// URLs are validated at connection time instead.
func (cfg *Config) ValidatePaths() error {
	if cfg.InputPath == "" {
		return fmt.Errorf("input path is required")
	}

	if cfg.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}

	if err := validateLocalDir("input", cfg.InputPath); err != nil {
		return err
	}

	return validateLocalDir("output", cfg.OutputPath)
}

func validateLocalDir(role, path string) error {
	if strings.HasPrefix(path, "sftp://") {
		return nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s path does not exist: %s", role, path)
	}

	if err != nil {
		return fmt.Errorf("cannot access %s path: %w", role, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s path is not a directory: %s", role, path)
	}

	return nil
}
