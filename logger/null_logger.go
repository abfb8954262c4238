package logger

// nullLogger discards command output.
type nullLogger struct{}

// NewNullLogger returns a logger that discards everything.
func NewNullLogger() Logger {
	return nullLogger{}
}

// Write write the log to this logger
func (l nullLogger) Write(p []byte) (int, error) {
	return len(p), nil
}

// Close close the logger
func (l nullLogger) Close() error {
	return nil
}
