// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at stderr and sets the level. Console output
// is used unless jsonLogs is set. Unknown levels fall back to info.
func Setup(level string, jsonLogs bool) {
	SetupWriter(os.Stderr, level, jsonLogs)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level string, jsonLogs bool) {
	if jsonLogs {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	}

	lvl, ok := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	if !ok {
		log.Warn().Str("level", level).Msg("unknown log level, defaulting to info")
	}
}

// ParseLevel maps a level name to a zerolog level. The bool is false when
// the name was not recognised.
func ParseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, true
	case "info", "":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
