package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Setup initializes the global zerolog logger based on environment configuration.
//   - level: log level string (trace, debug, info, warn, error, fatal, panic)
//   - format: "json" for production, "pretty" for human-readable dev output,
//     "auto" to pick "pretty" only when stdout is a terminal
//
// Returns the configured logger instance.
func Setup(level, format string) zerolog.Logger {
	return New(os.Stdout, level, resolveFormat(format, isTerminal(os.Stdout)))
}

// New builds a logger writing to w. Split out of Setup so tests can capture output.
func New(w io.Writer, level, format string) zerolog.Logger {
	var writer io.Writer = w
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}

func resolveFormat(format string, tty bool) string {
	if format != "auto" {
		return format
	}
	if tty {
		return "pretty"
	}
	return "json"
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
