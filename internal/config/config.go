// Package config loads the CLI's YAML configuration file. Flags override
// anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults loaded from the config file.
type Config struct {
	Model    string      `yaml:"model"`
	Language string      `yaml:"language"`
	Format   string      `yaml:"format"`
	CacheDir string      `yaml:"cache_dir"`
	LogLevel string      `yaml:"log_level"`
	GPU      bool        `yaml:"gpu"`
	Audio    AudioConfig `yaml:"audio"`
}

// AudioConfig holds the optional audio processing toggles.
type AudioConfig struct {
	RemoveDCOffset bool `yaml:"dc_offset_removal"`
	Normalize      bool `yaml:"normalize"`
	TrimSilence    bool `yaml:"trim_silence"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "voxscribe")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model:    "large-v3",
		Language: "auto",
		Format:   "text",
		LogLevel: "info",
		GPU:      true,
	}
}

// Load reads and parses a YAML config file. Missing fields are filled with
// defaults. Tilde (~) in cache_dir is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.CacheDir = expandTilde(cfg.CacheDir)
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}

	switch c.Format {
	case "text", "srt", "vtt", "json":
	default:
		return fmt.Errorf("format must be text, srt, vtt, or json, got %q", c.Format)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
