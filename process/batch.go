package process

import (
	"context"
	"fmt"
)

// Reporter receives progress messages from a batch.
type Reporter interface {
	Info(msg string)
	Error(msg string)
}

// Batch is a named, ordered list of commands.
type Batch struct {
	Name     string
	Commands []Command
}

// NewBatch returns a batch with the given name and commands.
func NewBatch(name string, cmds ...Command) Batch {
	return Batch{Name: name, Commands: cmds}
}

// RunBatch runs the commands of b in order. The first failing command
// stops the batch; the remaining commands are not run and a *BatchError
// is returned.
func RunBatch(ctx context.Context, r Runner, rep Reporter, b Batch) error {
	for i, cmd := range b.Commands {
		if err := ctx.Err(); err != nil {
			return &BatchError{Batch: b.Name, Index: i, Command: cmd, Err: err}
		}
		rep.Info(fmt.Sprintf("Running command: %s", cmd))
		if err := r.Run(ctx, cmd); err != nil {
			rep.Error(fmt.Sprintf("Error executing command: %s", cmd))
			return &BatchError{Batch: b.Name, Index: i, Command: cmd, Err: err}
		}
	}
	return nil
}
