package process

import (
	"context"
	"sync"
)

// DryRunner records commands without running them.
type DryRunner struct {
	mu   sync.Mutex
	cmds []Command
}

// Run records cmd and reports success.
func (r *DryRunner) Run(ctx context.Context, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return nil
}

// Commands returns the commands recorded so far.
func (r *DryRunner) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.cmds...)
}
