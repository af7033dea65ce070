package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration for one project root.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DECLSCAN_*)
// 2. Config file (.declscan/config.yml or .declscan/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".declscan")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("DECLSCAN")
	v.AutomaticEnv()
	// DECLSCAN_SCAN_WORKERS overrides scan.workers, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("paths.source")
	v.BindEnv("paths.ignore")
	v.BindEnv("scan.workers")
	v.BindEnv("scan.max_file_size_mb")
	v.BindEnv("output.format")
	v.BindEnv("output.line_numbers")
	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults + env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.source", defaults.Paths.Source)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.max_file_size_mb", defaults.Scan.MaxFileSizeMB)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.line_numbers", defaults.Output.LineNumbers)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}
