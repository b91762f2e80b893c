// Package config loads tuimigrate settings from a YAML file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	ErrInvalidExtension   = errors.New("extensions must start with a dot")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
)

// Config holds all tuimigrate configuration.
type Config struct {
	Project   ProjectConfig   `mapstructure:"project"`
	Migration MigrationConfig `mapstructure:"migration"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ProjectConfig controls which files are loaded.
type ProjectConfig struct {
	Extensions []string `mapstructure:"extensions"`
	// MaxFileSize is a human readable size such as "1MB"; "0" disables the limit.
	MaxFileSize   string `mapstructure:"max_file_size"`
	IncludeVendor bool   `mapstructure:"include_vendor"`
}

// MigrationConfig controls the migration run.
type MigrationConfig struct {
	// Rules are extra rule files appended after the built-in rules.
	Rules []string `mapstructure:"rules"`
	// Strict rejects overlapping edits instead of applying them.
	Strict bool `mapstructure:"strict"`
}

// BackupConfig controls the snapshot written before files are saved.
type BackupConfig struct {
	Dir     string `mapstructure:"dir"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	if _, err := c.Project.MaxFileSizeBytes(); err != nil {
		return err
	}

	for _, ext := range c.Project.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

// MaxFileSizeBytes parses MaxFileSize. Zero means unlimited.
func (p ProjectConfig) MaxFileSizeBytes() (uint64, error) {
	if p.MaxFileSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(p.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, p.MaxFileSize, err)
	}

	return size, nil
}

// LoadOptions converts the project settings for [project.Load].
func (p ProjectConfig) LoadOptions() (project.LoadOptions, error) {
	size, err := p.MaxFileSizeBytes()
	if err != nil {
		return project.LoadOptions{}, err
	}

	return project.LoadOptions{
		Extensions:    p.Extensions,
		MaxFileSize:   size,
		IncludeVendor: p.IncludeVendor,
	}, nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}
}
