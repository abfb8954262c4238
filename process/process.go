// Package process runs the external commands of a provisioning run.
package process

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Command describes one invocation of an external program. Arguments are
// passed to the program as-is; no shell is involved.
type Command struct {
	// Args holds the program followed by its arguments.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds KEY=VALUE pairs added to the inherited environment.
	// Later entries override earlier ones and the inherited values.
	Env []string

	// Stdin, when non-empty, is written to the program's standard
	// input, which is then closed.
	Stdin string

	// Interactive connects the program directly to the terminal.
	// Its output is not captured.
	Interactive bool
}

// Cmd returns a command running args[0] with the remaining arguments.
func Cmd(args ...string) Command {
	return Command{Args: args}
}

// Sudo returns a command running args with elevated privileges.
func Sudo(args ...string) Command {
	return Cmd(append([]string{"sudo"}, args...)...)
}

// In returns a copy of c that runs in dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// WithEnv returns a copy of c with kv added to its environment.
func (c Command) WithEnv(kv ...string) Command {
	c.Env = append(append([]string(nil), c.Env...), kv...)
	return c
}

// WithStdin returns a copy of c that reads input from s.
func (c Command) WithStdin(s string) Command {
	c.Stdin = s
	return c
}

// Interact returns a copy of c attached to the terminal.
func (c Command) Interact() Command {
	c.Interactive = true
	return c
}

// String returns the command as an operator would type it.
func (c Command) String() string {
	argv := make([]string, len(c.Args))
	for i, a := range c.Args {
		argv[i] = quote(a)
	}
	return strings.Join(argv, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=@,+%", r)
}

// Runner runs a single command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) error

func (f RunnerFunc) Run(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// ExitCode returns the exit status carried by err: 0 for nil, -1 when
// the program could not be run or its status is unknown.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	var exitError *exec.ExitError
	if !errors.As(err, &exitError) {
		return -1
	}
	return exitError.ExitCode()
}
