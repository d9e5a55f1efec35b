package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Basename != "/hw/store" {
		t.Fatalf("expected default basename, got %q", cfg.Basename)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
base_url: https://shop.example.com/
basename: /store
catalog_fixture: fixtures/catalog.cue
journal_path: /var/lib/storefront/journal.db
log_level: debug
`)
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://shop.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.Basename != "/store" {
		t.Fatalf("unexpected basename %q", cfg.Basename)
	}
	if want := filepath.Join(dir, "fixtures", "catalog.cue"); cfg.CatalogFixture != want {
		t.Fatalf("expected fixture resolved to %q, got %q", want, cfg.CatalogFixture)
	}
	if cfg.JournalPath != "/var/lib/storefront/journal.db" {
		t.Fatalf("absolute journal path changed: %q", cfg.JournalPath)
	}
	if cfg.Listen != Default().Listen {
		t.Fatalf("expected default listen, got %q", cfg.Listen)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"version":   "version: 2\n",
		"base_url":  "base_url: ftp://x\n",
		"basename":  "basename: store\n",
		"log_level": "log_level: loud\n",
		"syntax":    "version: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestDefaultYAMLRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(DefaultYAML()), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("default file should load as Default(), got %+v", cfg)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	cfg := Default()
	cfg.LogLevel = "warn"
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, got)
	}
}
