package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joe/mirror-tree/internal/config"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		InputPath:  t.TempDir(),
		OutputPath: t.TempDir(),
		Workers:    config.DefaultWorkers,
	}
}

func TestPostProcessConfigDefaultsWorkers(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.Workers = 0

	processed, err := config.PostProcessConfig(cfg)
	if err != nil {
		t.Fatalf("PostProcessConfig failed: %v", err)
	}

	if processed.Workers != config.DefaultWorkers {
		t.Errorf("expected %d workers, got %d", config.DefaultWorkers, processed.Workers)
	}
}

func TestPostProcessConfigKeepsExplicitWorkers(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.Workers = 16

	processed, err := config.PostProcessConfig(cfg)
	if err != nil {
		t.Fatalf("PostProcessConfig failed: %v", err)
	}

	if processed.Workers != 16 {
		t.Errorf("expected 16 workers, got %d", processed.Workers)
	}
}

func TestValidatePathsMissingInput(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.InputPath = ""

	if err := cfg.ValidatePaths(); err == nil {
		t.Error("expected error for empty input path")
	}
}

func TestValidatePathsMissingOutput(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.OutputPath = ""

	if err := cfg.ValidatePaths(); err == nil {
		t.Error("expected error for empty output path")
	}
}

func TestValidatePathsNonexistentInput(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "does-not-exist")

	if err := cfg.ValidatePaths(); err == nil {
		t.Error("expected error for nonexistent input path")
	}
}

func TestValidatePathsInputIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := validConfig(t)
	cfg.InputPath = file

	if err := cfg.ValidatePaths(); err == nil {
		t.Error("expected error for input path that is a file")
	}
}

func TestValidatePathsAcceptsDirectories(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)

	if err := cfg.ValidatePaths(); err != nil {
		t.Errorf("expected valid paths, got %v", err)
	}
}

func TestValidatePathsSkipsSFTPURLs(t *testing.T) {
	t.Parallel()

	// Remote paths cannot be checked locally; validation defers to
	// connection time.
	cfg := validConfig(t)
	cfg.InputPath = "sftp://joe@myserver.com/backups"

	if err := cfg.ValidatePaths(); err != nil {
		t.Errorf("expected sftp URL to skip local validation, got %v", err)
	}
}
