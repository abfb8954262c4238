// Package sockwatch waits for a file, typically a listening unix socket,
// to appear.
package sockwatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrTimeout is returned by Wait when the file does not appear in time.
var ErrTimeout = errors.New("timed out waiting for file")

// Wait blocks until path exists and returns its file information.
// It gives up when ctx is done or, if timeout is positive, when timeout
// has elapsed. The parent directory of path must exist.
func Wait(ctx context.Context, path string, timeout time.Duration) (os.FileInfo, error) {
	path = filepath.Clean(path)
	if info, err := os.Stat(path); err == nil {
		return info, nil
	}
	dir := filepath.Dir(path)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("provided directory %q must be an existing directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return nil, fmt.Errorf("cannot watch %q: %w", dir, err)
	}
	// The file may have been created between the first check and the
	// watch being established.
	if info, err := os.Stat(path); err == nil {
		return info, nil
	}

	var timeoutC <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timeoutC = t.C
	}
	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil, errors.New("watcher closed")
			}
			if filepath.Clean(e.Name) != path || e.Op&(fsnotify.Create|fsnotify.Chmod) == 0 {
				continue
			}
			if info, err := os.Stat(path); err == nil {
				return info, nil
			}
		case err, ok := <-w.Errors:
			if ok {
				return nil, fmt.Errorf("watch %q: %w", dir, err)
			}
		case <-timeoutC:
			return nil, fmt.Errorf("%s: %w", path, ErrTimeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// IsSocket reports whether info describes a unix socket.
func IsSocket(info os.FileInfo) bool {
	return info != nil && info.Mode()&os.ModeSocket != 0
}
