package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLogLevel is used when log.level is empty or unknown
const DefaultLogLevel = zerolog.InfoLevel

// ParseLevel converts the configured level, defaulting to info
func (l LogConfig) ParseLevel() zerolog.Level {
	if l.Level == "" {
		return DefaultLogLevel
	}
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || level == zerolog.NoLevel {
		return DefaultLogLevel
	}
	return level
}

// Writer returns the log sink: a console writer when pretty, JSON otherwise
func (l LogConfig) Writer(out io.Writer) io.Writer {
	if l.Pretty {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

// SetupLogging configures the global zerolog logger
func (l LogConfig) SetupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(l.ParseLevel())
	log.Logger = zerolog.New(l.Writer(os.Stderr)).With().Timestamp().Logger()
}
