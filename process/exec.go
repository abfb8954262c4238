package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stuartcarnie/siteprov/logger"
)

// DefaultTailLines is the number of output lines kept for failure reports.
const DefaultTailLines = 20

const tailBytes = 16 * 1024

// ExecRunner runs commands as child processes, waiting for each to exit.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Transcript, if non-nil, receives a copy of all captured output.
	Transcript logger.Logger

	// TailLines is the number of output lines attached to an ExitError.
	TailLines int
}

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner(transcript logger.Logger) *ExecRunner {
	return &ExecRunner{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Transcript: transcript,
		TailLines:  DefaultTailLines,
	}
}

// Run starts cmd and waits for it to exit. A non-zero exit status is
// reported as an *ExitError.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Args) == 0 {
		return errors.New("empty command")
	}
	zlog := zap.L().With(zap.Strings("argv", cmd.Args))
	if cmd.Dir != "" {
		if info, err := os.Stat(cmd.Dir); err != nil {
			return &ExitError{Command: cmd, Code: -1, Err: fmt.Errorf("invalid directory: %v", err)}
		} else if !info.IsDir() {
			return &ExitError{Command: cmd, Code: -1, Err: fmt.Errorf("invalid directory: %q is not a directory", cmd.Dir)}
		}
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	transcript := r.Transcript
	if transcript == nil {
		transcript = logger.NewNullLogger()
	}
	fmt.Fprintf(transcript, "$ %s\n", cmd)

	tail := NewBacklog(tailBytes)
	switch {
	case cmd.Interactive:
		c.Stdin = r.Stdin
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	default:
		if cmd.Stdin != "" {
			c.Stdin = strings.NewReader(cmd.Stdin)
		} else {
			c.Stdin = r.Stdin
		}
		// stdout and stderr are copied by separate goroutines; capture
		// serializes their writes to the shared transcript and tail.
		capture := logger.NewCompositeLogger(transcript, logger.NewStdLogger(tail))
		c.Stdout = logger.NewCompositeLogger(logger.NewStdLogger(r.Stdout), capture)
		c.Stderr = logger.NewCompositeLogger(logger.NewStdLogger(r.Stderr), capture)
	}

	zlog.Debug("start", zap.String("dir", cmd.Dir), zap.Bool("interactive", cmd.Interactive))
	start := time.Now()
	err := c.Run()
	code := ExitCode(err)
	zlog.Debug("exited", zap.Int("exit_code", code), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	if err == nil {
		return nil
	}
	fmt.Fprintf(transcript, "# exit status %d\n", code)

	lines := r.TailLines
	if lines == 0 {
		lines = DefaultTailLines
	}
	return &ExitError{
		Command: cmd,
		Code:    code,
		Tail:    logger.LastNLines(tail.Bytes(), lines),
		Err:     err,
	}
}
