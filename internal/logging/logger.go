package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Fields map[string]interface{}

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLevel changes the minimum level written. Unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger = logger.Level(lvl)
}

func output(ev *zerolog.Event, msg string, fields Fields) {
	if fields != nil {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	ev.Msg(msg)
}

// Debug logs a diagnostic message with optional fields.
func Debug(msg string, fields Fields) {
	output(logger.Debug(), msg, fields)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output(logger.Info(), msg, fields)
}

func Warn(msg string, fields Fields) {
	output(logger.Warn(), msg, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	output(logger.Error().Err(err), msg, fields)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	output(logger.WithLevel(zerolog.FatalLevel).Err(err), msg, fields)
	os.Exit(1)
}
