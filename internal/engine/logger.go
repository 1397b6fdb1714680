package engine

import (
	"log"
	"os"
)

// Logger is the narrow logging seam the engine writes status lines through.
// The teacher repo prints progress directly with fmt.Printf; tests want a
// quiet seam instead of fighting -v output, so status lines go through this
// interface and the default implementation wraps the standard logger.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger writes to os.Stdout with no timestamp prefix, matching the
// teacher's bare progress lines.
type StdLogger struct {
	*log.Logger
}

// NewStdLogger returns the default Logger used outside of tests.
func NewStdLogger() *StdLogger {
	return &StdLogger{Logger: log.New(os.Stdout, "", 0)}
}

func (l *StdLogger) Printf(format string, args ...any) {
	l.Logger.Printf(format, args...)
}

// NopLogger discards everything. Used by tests.
type NopLogger struct{}

func (NopLogger) Printf(string, ...any) {}
