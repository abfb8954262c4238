package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// fileLogger appends command output to a transcript file, rotating it
// when it grows past maxSize.
type fileLogger struct {
	baseName string
	maxSize  int64
	backups  int
	fileSize int64
	file     *os.File
}

// newFileLogger returns a logger that logs to the file with the given name
// limiting file size to about maxSize bytes and retaining the given
// maximum number of backups. A non-positive maxSize disables rotation.
func newFileLogger(name string, maxSize int64, backups int) (*fileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	logger := &fileLogger{
		baseName: name,
		maxSize:  maxSize,
		backups:  backups,
	}
	if err := logger.openFile(false); err != nil {
		return nil, err
	}
	return logger, nil
}

// openFile opens the current log file, truncating it if trunc is true.
func (l *fileLogger) openFile(trunc bool) error {
	name := l.name(0)
	fileInfo, err := os.Stat(name)
	if trunc || err != nil {
		l.file, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
		l.fileSize = 0
	} else {
		l.fileSize = fileInfo.Size()
		l.file, err = os.OpenFile(name, os.O_RDWR|os.O_APPEND, 0o600)
	}
	return err
}

func (l *fileLogger) backupFiles() {
	for i := l.backups - 1; i >= 0; i-- {
		if _, err := os.Stat(l.name(i)); err == nil {
			if err := os.Rename(l.name(i), l.name(i+1)); err != nil {
				zap.L().Error("cannot rename backup log file", zap.Error(err), zap.String("from", l.name(i)), zap.String("to", l.name(i+1)))
			}
		}
	}
}

func (l *fileLogger) name(n int) string {
	if n == 0 {
		return l.baseName
	}
	return fmt.Sprintf("%s.%d", l.baseName, n)
}

// Write appends p to the transcript, rotating afterwards if needed.
func (l *fileLogger) Write(p []byte) (int, error) {
	if l.file == nil {
		return 0, fmt.Errorf("log file %q is closed", l.baseName)
	}
	n, err := l.file.Write(p)
	l.fileSize += int64(n)
	if l.maxSize > 0 && l.fileSize >= l.maxSize {
		l.Close()
		if l.backups > 0 {
			l.backupFiles()
		}
		if err := l.openFile(true); err != nil {
			zap.L().Error("cannot open fresh log file", zap.Error(err))
		}
	}
	return n, err
}

// Close closes the file logger
func (l *fileLogger) Close() error {
	if file := l.file; file != nil {
		l.file = nil
		return file.Close()
	}
	return nil
}
