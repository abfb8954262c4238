package logger

import (
	"io"
	"os"
)

// stdLogger writes to a writer it does not own.
type stdLogger struct {
	io.Writer
}

// NewStdLogger returns a logger that logs to the given writer.
// Closing it does not close w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{
		Writer: w,
	}
}

// NewStdoutLogger returns a logger that logs to os.Stdout.
func NewStdoutLogger() Logger {
	return NewStdLogger(os.Stdout)
}

// NewStderrLogger returns a logger that logs to os.Stderr.
func NewStderrLogger() Logger {
	return NewStdLogger(os.Stderr)
}

func (l *stdLogger) Close() error {
	return nil
}
