package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// FileName is the config file name without extension.
	FileName = "tuimigrate"

	configType      = "yaml"
	envPrefix       = "TUIMIGRATE"
	envKeySeparator = "_"
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, tuimigrate.yaml is searched in dir and $HOME.
// A missing config file is not an error.
func LoadConfig(configPath, dir string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("project.extensions", DefaultExtensions)
	v.SetDefault("project.max_file_size", DefaultMaxFileSize)
	v.SetDefault("project.include_vendor", DefaultIncludeVendor)

	v.SetDefault("migration.rules", []string{})
	v.SetDefault("migration.strict", DefaultStrict)

	v.SetDefault("backup.enabled", DefaultBackupEnabled)
	v.SetDefault("backup.dir", DefaultBackupDir)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.json", DefaultLogJSON)

	v.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.environment", "")
	v.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	v.SetDefault("telemetry.debug_trace", false)
}
