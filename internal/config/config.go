// Package config loads storefront.yaml, the settings shared by the CLI
// commands. Every field has a default, so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "storefront.yaml"

const defaultConfigYAML = `# storefront configuration
version: 1

# Where the store backend lives, and the path the store is mounted under.
base_url: http://localhost:3000
basename: /hw/store

# Demo backend (storefront serve).
listen: 127.0.0.1:3000
# Catalog fixture (.cue or .yaml). Empty serves the built-in catalog.
catalog_fixture: ""

# Action journal. Empty keeps it in memory for the session.
journal_path: ""

# debug, info, warn or error
log_level: info
`

// Config models storefront.yaml.
type Config struct {
	Version        int    `yaml:"version" json:"version"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	Basename       string `yaml:"basename" json:"basename"`
	Listen         string `yaml:"listen" json:"listen"`
	CatalogFixture string `yaml:"catalog_fixture" json:"catalog_fixture"`
	JournalPath    string `yaml:"journal_path" json:"journal_path"`
	LogLevel       string `yaml:"log_level" json:"log_level"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Version:  1,
		BaseURL:  "http://localhost:3000",
		Basename: "/hw/store",
		Listen:   "127.0.0.1:3000",
		LogLevel: "info",
	}
}

// DefaultYAML returns the commented default config file.
func DefaultYAML() string {
	return defaultConfigYAML
}

// Load reads path. A missing file yields Default(). Relative file paths in
// the config are resolved against the config file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(filepath.Dir(path))
	if err := parsed.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return parsed, nil
}

// Write saves cfg to path.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the commands cannot work with.
func (c Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported version %d", c.Version)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url %q must be an http(s) URL", c.BaseURL)
	}
	if !strings.HasPrefix(c.Basename, "/") {
		return fmt.Errorf("basename %q must start with /", c.Basename)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level %q: want debug, info, warn or error", s)
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Basename == "" {
		c.Basename = def.Basename
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

func (c *Config) normalize(base string) {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Basename = strings.TrimSpace(c.Basename)
	c.CatalogFixture = resolve(base, c.CatalogFixture)
	c.JournalPath = resolve(base, c.JournalPath)
}

func resolve(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
