// Package sysutil holds small process-startup helpers shared by cmd/server:
// zerolog global configuration and build-version resolution.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SetLogLevel configures the global zerolog level based on a string value.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
// Unknown or empty values fall back to info.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// LogWriter returns the writer the root logger should emit to. When pretty is
// true it wraps stderr in zerolog's ConsoleWriter for local development;
// otherwise raw JSON goes to stderr for log shippers.
func LogWriter(pretty bool) io.Writer {
	if pretty {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return os.Stderr
}

// Version resolves the reported build version: the first non-empty candidate
// wins, and "dev" is returned when every candidate is blank. Callers typically
// pass the -ldflags build version followed by the APP_VERSION env value.
func Version(candidates ...string) string {
	for _, v := range candidates {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "dev"
}
