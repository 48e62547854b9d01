package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogConfig selects the minimum level written by the service logger. Empty means info.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  log.level: %s\n", c.SlogLevel())
}

func (c *LogConfig) Validate() error {
	if _, ok := parseLevel(c.Level); !ok {
		return fmt.Errorf("unknown log level: %q", c.Level)
	}
	return nil
}

// SlogLevel returns the configured level, falling back to info for unknown values.
func (c *LogConfig) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Level)
	return level
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
