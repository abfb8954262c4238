// Package logger captures the output of provisioning commands.
package logger

import (
	"io"
	"strings"
)

// Logger receives the stdout/stderr output of provisioning commands.
type Logger interface {
	io.WriteCloser
}

// Default size limits for transcript files.
const (
	DefaultMaxBytes = 50 * 1024 * 1024
	DefaultBackups  = 10
)

// New returns a logger writing to every destination in the comma separated
// logFile list. The special names /dev/stdout, /dev/stderr and /dev/null are
// recognised; other names are files rotated when they reach maxBytes.
func New(logFile string, maxBytes int64, backups int) (Logger, error) {
	files := splitLogFile(logFile)
	loggers := make([]Logger, 0, len(files))
	for _, f := range files {
		l, err := createLogger(f, maxBytes, backups)
		if err != nil {
			for _, opened := range loggers {
				opened.Close()
			}
			return nil, err
		}
		loggers = append(loggers, l)
	}
	return NewCompositeLogger(loggers...), nil
}

func splitLogFile(logFile string) []string {
	files := strings.Split(logFile, ",")
	for i, f := range files {
		files[i] = strings.TrimSpace(f)
	}
	return files
}

func createLogger(logFile string, maxBytes int64, backups int) (Logger, error) {
	switch logFile {
	case "/dev/stdout":
		return NewStdoutLogger(), nil
	case "/dev/stderr":
		return NewStderrLogger(), nil
	case "/dev/null", "":
		return NewNullLogger(), nil
	default:
		l, err := newFileLogger(logFile, maxBytes, backups)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}
