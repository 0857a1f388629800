package cli

import (
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvPort      = "HTTPSPY_PORT"
	EnvLogLevel  = "HTTPSPY_LOG_LEVEL"
	EnvLogFormat = "HTTPSPY_LOG_FORMAT"
)

// envInt returns the integer value of key, or def when unset or malformed.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envString returns the value of key, or def when unset.
func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
