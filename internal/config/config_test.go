package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Remesh.Tolerance != 0.001 {
		t.Errorf("default tolerance = %g, want 0.001", cfg.Remesh.Tolerance)
	}
	if cfg.Remesh.Iterations != 5 {
		t.Errorf("default iterations = %d, want 5", cfg.Remesh.Iterations)
	}
	if cfg.Remesh.Attempts != 3 {
		t.Errorf("default attempts = %d, want 3", cfg.Remesh.Attempts)
	}
	if cfg.Output.Precision != 17 {
		t.Errorf("default precision = %d, want 17", cfg.Output.Precision)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	doc := `remesh:
  tolerance: 0.01
  iterations: 8
output:
  binary_ply: true
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Remesh.Tolerance != 0.01 {
		t.Errorf("tolerance = %g, want 0.01", cfg.Remesh.Tolerance)
	}
	if cfg.Remesh.Iterations != 8 {
		t.Errorf("iterations = %d, want 8", cfg.Remesh.Iterations)
	}
	// Untouched keys keep their defaults.
	if cfg.Remesh.Attempts != 3 {
		t.Errorf("attempts = %d, want default 3", cfg.Remesh.Attempts)
	}
	if !cfg.Output.BinaryPLY {
		t.Error("binary_ply not applied")
	}
	if cfg.Output.Precision != 17 {
		t.Errorf("precision = %d, want default 17", cfg.Output.Precision)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing explicit config file accepted")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Remesh.Tolerance != Default().Remesh.Tolerance {
		t.Error("empty path did not fall back to defaults")
	}
}
