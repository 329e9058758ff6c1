package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devtools.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Rewrite.Root != "crates/mcp-proxy-server/src" || cfg.Rewrite.Suffix != ".rs" {
		t.Errorf("unexpected rewrite defaults: %+v", cfg.Rewrite)
	}
	if err := cfg.ValidateRewrite(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := cfg.ValidateSmoke(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
rewrite:
  root: src
  exclude: ["generated/**"]
  formatter: []
  watch:
    debounce_window: 1s
smoke:
  command: ./server
  args: ["--stdio"]
  timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Log.Level = "debug"
	want.Rewrite.Root = "src"
	want.Rewrite.Exclude = []string{"generated/**"}
	want.Rewrite.Formatter = []string{}
	want.Rewrite.Watch.DebounceWindow = time.Second
	want.Smoke.Command = "./server"
	want.Smoke.Args = []string{"--stdio"}
	want.Smoke.Timeout = 5 * time.Second

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "rewrite:\n  roots: src\n")
	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateRewrite(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Rewrite.Root = "" }},
		{"empty suffix", func(c *Config) { c.Rewrite.Suffix = "" }},
		{"suffix with slash", func(c *Config) { c.Rewrite.Suffix = "src/.rs" }},
		{"bad exclude", func(c *Config) { c.Rewrite.Exclude = []string{"[unclosed"} }},
		{"bad ignore", func(c *Config) { c.Rewrite.Watch.IgnorePatterns = []string{"{a,b"} }},
		{"zero batch", func(c *Config) { c.Rewrite.Watch.MaxBatchSize = 0 }},
		{"zero window", func(c *Config) { c.Rewrite.Watch.DebounceWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.ValidateRewrite(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateSmoke(t *testing.T) {
	cfg := Default()
	cfg.Smoke.Command = ""
	if err := cfg.ValidateSmoke(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty command, got %v", err)
	}

	cfg = Default()
	cfg.Smoke.Timeout = -time.Second
	if err := cfg.ValidateSmoke(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for negative timeout, got %v", err)
	}
}
