package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// Environment helpers for the operator scripts, which run without a config file.

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// GetEnv returns the trimmed value of key, or defaultValue when unset or blank
func GetEnv(key, defaultValue string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvAsBool parses key with strconv.ParseBool. Unparsable values fall back to defaultValue.
func GetEnvAsBool(key string, defaultValue bool) bool {
	value, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Ignoring invalid boolean environment value", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}

// GetEnvAsDuration parses key with time.ParseDuration ("90s", "5m").
// Unparsable or non-positive values fall back to defaultValue.
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		slog.Warn("Ignoring invalid duration environment value", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}
