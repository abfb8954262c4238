package logger

import "sync"

// CompositeLogger dispatches command output to several loggers.
type CompositeLogger struct {
	mu      sync.Mutex
	loggers []Logger
}

// NewCompositeLogger returns a Logger that writes to all the given loggers.
//
// The first logger is special: Write and Close errors from all but the first
// logger are ignored, so a broken transcript file never hides output from
// the terminal.
func NewCompositeLogger(loggers ...Logger) *CompositeLogger {
	return &CompositeLogger{loggers: loggers}
}

// Write implements Logger.Write by writing to all the loggers in cl.
func (cl *CompositeLogger) Write(p []byte) (n int, err error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if len(cl.loggers) == 0 {
		return len(p), nil
	}
	for i, logger := range cl.loggers {
		if i == 0 {
			n, err = logger.Write(p)
		} else {
			_, _ = logger.Write(p)
		}
	}
	return
}

// Close closes all the loggers in cl.
func (cl *CompositeLogger) Close() (err error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	for i, logger := range cl.loggers {
		if i == 0 {
			err = logger.Close()
		} else {
			_ = logger.Close()
		}
	}
	return
}
