package config

import (
	"errors"
	"fmt"

	"github.com/declscan/declscan/internal/report"
)

var (
	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidFileSize indicates a non-positive file size cap.
	ErrInvalidFileSize = errors.New("invalid max file size")

	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidDebounce indicates a negative debounce period.
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is usable.
func Validate(cfg *Config) error {
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means one per CPU)",
			ErrInvalidWorkers, cfg.Scan.Workers)
	}
	if cfg.Scan.MaxFileSizeMB <= 0 {
		return fmt.Errorf("%w: %d MB (must be > 0)",
			ErrInvalidFileSize, cfg.Scan.MaxFileSizeMB)
	}
	if _, err := report.ParseFormat(cfg.Output.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("%w: %d ms (must be >= 0)",
			ErrInvalidDebounce, cfg.Watch.DebounceMs)
	}
	return nil
}
