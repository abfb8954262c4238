package process

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted is returned by Retry when the strategy allows no
// more attempts.
var ErrRetriesExhausted = errors.New("retries exhausted")

// ExitError is returned by a Runner when a command fails.
type ExitError struct {
	Command Command
	// Code is the exit status, or -1 if the command could not be run.
	Code int
	// Tail holds the last lines of the command's output, if captured.
	Tail []byte
	Err  error
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// BatchError reports the command that stopped a batch.
type BatchError struct {
	Batch   string
	Index   int
	Command Command
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %q stopped at command %d: %v", e.Batch, e.Index+1, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
