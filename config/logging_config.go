package config

import (
	"fmt"
	"log/slog"
	"strings"
)

type loggingConfig struct {
	// minimum level: debug, info, warn, error
	Level string `yaml:"level"`
	// handler format: text or json
	Format string `yaml:"format"`
}

// Returns the slog level corresponding to the configured level.
func (c loggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func validateLogging(params loggingConfig) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(params.Level)); err != nil {
		return fmt.Errorf("Invalid logging level: %s", params.Level)
	}
	switch strings.ToLower(params.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("Invalid logging format: %s (must be text or json)", params.Format)
	}
	return nil
}
