// Package config loads declscan configuration from .declscan/config.yml
// with DECLSCAN_* environment overrides.
package config

import (
	"github.com/declscan/declscan/internal/report"
)

// Config is the complete declscan configuration.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which files to scan and which to skip.
type PathsConfig struct {
	Source []string `yaml:"source" mapstructure:"source"` // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to skip
}

// ScanConfig tunes the extraction run.
type ScanConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`                   // 0 = one per CPU
	MaxFileSizeMB int `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"` // per-file cap
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format      string `yaml:"format" mapstructure:"format"`
	LineNumbers bool   `yaml:"line_numbers" mapstructure:"line_numbers"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Source: nil, // every supported file
			Ignore: []string{
				"**/.git/**",
				"**/node_modules/**",
				"**/build/**",
				"**/target/**",
				"**/vendor/**",
			},
		},
		Scan: ScanConfig{
			Workers:       0,
			MaxFileSizeMB: 10,
		},
		Output: OutputConfig{
			Format:      string(report.FormatTree),
			LineNumbers: false,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}
