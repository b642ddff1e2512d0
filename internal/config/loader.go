// Package config loads runtime configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures the settings the studygroup binary needs.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates the persisted document.
type StorageConfig struct {
	// DSN is the SQLite data source name holding the documents table.
	DSN string `yaml:"dsn"`
	// Document names the row the store reads and writes.
	Document string `yaml:"document"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name onto slog's scale.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Load reads the YAML file at path when path is non-empty, then applies
// environment overrides (STUDYGROUP_STORAGE_DSN, STUDYGROUP_DOCUMENT,
// STUDYGROUP_LOG_LEVEL). Defaults cover every field, so an empty path and an
// empty environment still produce a usable configuration.
func Load(path string) (Config, error) {
	cfg := Config{
		Storage: StorageConfig{
			DSN:      "file:studygroup.db",
			Document: "studygroup",
		},
		Logging: LoggingConfig{Level: "info"},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	invalid := make([]string, 0, 1)

	if dsn := strings.TrimSpace(os.Getenv("STUDYGROUP_STORAGE_DSN")); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if name := strings.TrimSpace(os.Getenv("STUDYGROUP_DOCUMENT")); name != "" {
		cfg.Storage.Document = name
	}
	if level := strings.TrimSpace(os.Getenv("STUDYGROUP_LOG_LEVEL")); level != "" {
		if _, ok := logLevels[strings.ToLower(level)]; !ok {
			invalid = append(invalid, "STUDYGROUP_LOG_LEVEL")
		} else {
			cfg.Logging.Level = strings.ToLower(level)
		}
	}

	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		invalid = append(invalid, "storage.dsn")
	}
	if strings.TrimSpace(cfg.Storage.Document) == "" {
		invalid = append(invalid, "storage.document")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid values for: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
