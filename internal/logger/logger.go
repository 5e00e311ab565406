// Package logger configures zerolog for the server, worker and queue UI binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process logger set by Init
var Logger = zerolog.Nop()

// levelAliases covers spellings zerolog.ParseLevel does not accept
var levelAliases = map[string]zerolog.Level{
	"warning": zerolog.WarnLevel,
	"off":     zerolog.Disabled,
}

// Init sets the global level, builds the process logger tagged with service
// and installs it as zerolog's global logger.
func Init(level, format, service string) {
	zerolog.SetGlobalLevel(parseLogLevel(level))

	Logger = New(os.Stdout, format).With().Str("service", service).Logger()
	log.Logger = Logger
}

// New builds a logger writing to w. "json" writes one object per line,
// anything else gets the human readable console writer.
func New(w io.Writer, format string) zerolog.Logger {
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

// parseLogLevel falls back to info for empty or unknown levels
func parseLogLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if lvl, ok := levelAliases[level]; ok {
		return lvl
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// GetLogger returns the process logger
func GetLogger() zerolog.Logger {
	return Logger
}
