package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Output.Format != "table" {
		t.Errorf("expected default format 'table', got %s", cfg.Output.Format)
	}
	if cfg.Analysis.Concurrency != 0 {
		t.Errorf("expected default concurrency 0, got %d", cfg.Analysis.Concurrency)
	}
	if cfg.Serve.Port != 4173 {
		t.Errorf("expected default port 4173, got %d", cfg.Serve.Port)
	}
	if cfg.Serve.Host != "localhost" {
		t.Errorf("expected default host 'localhost', got %s", cfg.Serve.Host)
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.File != "" {
		t.Errorf("expected no config file, got %s", cfg.File)
	}

	def := Default()
	if *def != *cfg {
		t.Errorf("expected Default() to match loaded defaults, got %+v vs %+v", def, cfg)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	configContent := `
output:
  format: json
analysis:
  concurrency: 2
serve:
  port: 8080
  host: 0.0.0.0
watch:
  debounce: 250ms
`
	if err := os.WriteFile("filemap.yml", []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Output.Format != "json" {
		t.Errorf("expected format 'json', got %s", cfg.Output.Format)
	}
	if cfg.Analysis.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Analysis.Concurrency)
	}
	if cfg.Serve.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Serve.Port)
	}
	if cfg.Serve.Host != "0.0.0.0" {
		t.Errorf("expected host '0.0.0.0', got %s", cfg.Serve.Host)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
	if filepath.Base(cfg.File) != "filemap.yml" {
		t.Errorf("expected config file filemap.yml, got %s", cfg.File)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: yaml\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format 'yaml', got %s", cfg.Output.Format)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FILEMAP_SERVE_PORT", "9000")
	t.Setenv("FILEMAP_OUTPUT_FORMAT", "yaml")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Serve.Port != 9000 {
		t.Errorf("expected port 9000 from environment, got %d", cfg.Serve.Port)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format 'yaml' from environment, got %s", cfg.Output.Format)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "unknown format", modify: func(c *Config) { c.Output.Format = "xml" }, wantErr: "output.format"},
		{name: "port zero", modify: func(c *Config) { c.Serve.Port = 0 }, wantErr: "serve.port"},
		{name: "port too large", modify: func(c *Config) { c.Serve.Port = 70000 }, wantErr: "serve.port"},
		{name: "negative concurrency", modify: func(c *Config) { c.Analysis.Concurrency = -1 }, wantErr: "analysis.concurrency"},
		{name: "negative debounce", modify: func(c *Config) { c.Watch.Debounce = -time.Second }, wantErr: "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	chdir(t, t.TempDir())
	if err := os.WriteFile("filemap.yml", []byte("serve:\n  port: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(""); err == nil {
		t.Error("expected validation error for port 0")
	}
}
