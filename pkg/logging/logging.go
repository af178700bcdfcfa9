package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Fields carries structured context attached to a single log entry.
type Fields map[string]interface{}

// Logger is the logging port handed to handlers, services and repositories.
// It wraps zerolog so callers only deal with (level, message, context).
type Logger struct {
	z zerolog.Logger
}

// New creates a console logger writing to out at the given level.
// Unknown level strings fall back to "info".
func New(out io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: "02-01-2006 15:04:05"}
	z := zerolog.New(cw).With().
		Timestamp().
		Str("service", "product-api").
		Logger().
		Level(lvl)

	return &Logger{z: z}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// Info logs an informational message with optional context.
func (l *Logger) Info(msg string, f Fields) {
	l.emit(l.z.Info(), msg, f)
}

// Warn logs a warning with optional context.
func (l *Logger) Warn(msg string, f Fields) {
	l.emit(l.z.Warn(), msg, f)
}

// Error logs an error with optional context.
func (l *Logger) Error(msg string, f Fields) {
	l.emit(l.z.Error(), msg, f)
}

func (l *Logger) emit(e *zerolog.Event, msg string, f Fields) {
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}
