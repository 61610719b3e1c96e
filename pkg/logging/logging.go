// Package logging builds the structured logger used by the monitor loop.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level (debug|info|warn|error).
	Level string

	// JSON switches from console to JSON encoding.
	JSON bool
}

// New creates a zap logger for the monitor loop.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "console"
	if cfg.JSON {
		zapCfg.Encoding = "json"
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = level
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
