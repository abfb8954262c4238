// Package console provides the operator-facing output of a provisioning run.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/mgutz/ansi"
)

// Console is the output surface used by the provisioner.
type Console interface {
	// Header starts a new section of output.
	Header(title string)
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

const rule = "####################################################################################################"

// Terminal writes colorized messages to a writer.
type Terminal struct {
	out    io.Writer
	au     aurora.Aurora
	banner func(string) string
}

// NewTerminal returns a Console writing to out. When color is false
// no escape sequences are emitted.
func NewTerminal(out io.Writer, color bool) *Terminal {
	banner := func(s string) string { return s }
	if color {
		banner = ansi.ColorFunc("magenta+h")
	}
	return &Terminal{
		out:    out,
		au:     aurora.NewAurora(color),
		banner: banner,
	}
}

// Header prints title framed by rules, padded so every line is the same width.
func (c *Terminal) Header(title string) {
	line := "## " + title + " "
	if pad := len(rule) - len(line); pad > 0 {
		line += strings.Repeat("#", pad)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.banner(rule))
	fmt.Fprintln(c.out, c.banner(line))
	fmt.Fprintln(c.out, c.banner(rule))
	fmt.Fprintln(c.out)
}

func (c *Terminal) Info(msg string) {
	fmt.Fprintln(c.out, c.au.Blue(msg))
}

func (c *Terminal) Success(msg string) {
	fmt.Fprintln(c.out, c.au.Green(msg))
}

func (c *Terminal) Warn(msg string) {
	fmt.Fprintln(c.out, c.au.Yellow(msg))
}

func (c *Terminal) Error(msg string) {
	fmt.Fprintln(c.out, c.au.Red(msg))
}
