// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger and returns it.
// Development output is human readable, everything else is JSON.
func Setup(level string, pretty bool) zerolog.Logger {
	return setup(os.Stdout, level, pretty)
}

func setup(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = l
	// log.Ctx falls back to this for contexts without a request logger.
	zerolog.DefaultContextLogger = &log.Logger
	return l
}

// PgxTraceLevel maps a zerolog level to the pgx tracelog level.
// SQL statements are only traced when debug logging is on, otherwise only
// failed queries are logged.
func PgxTraceLevel(level zerolog.Level) tracelog.LogLevel {
	if level <= zerolog.DebugLevel {
		return tracelog.LogLevelDebug
	}
	return tracelog.LogLevelError
}
