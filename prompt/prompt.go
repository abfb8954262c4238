// Package prompt reads answers to interactive questions.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer is given.
var ErrNoInput = errors.New("no input")

// Prompter asks questions on out and reads answers from in.
//
// Answers are read one byte at a time so that input following an answer
// stays unread for the commands that share the same standard input.
type Prompter struct {
	in  io.Reader
	out io.Writer
	tty *os.File
}

// New returns a Prompter. When in is a terminal, passwords are
// read without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		in:  in,
		out: out,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = f
	}
	return p
}

// YesNo asks a yes/no question. Only the exact answer "y" counts as yes;
// end of input counts as no.
func (p *Prompter) YesNo(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/n]: ", question)
	line, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return line == "y", nil
}

// Input asks for a line of text. Surrounding whitespace is removed.
func (p *Prompter) Input(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: %w", label, ErrNoInput)
		}
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// Password asks for a secret. The answer is not echoed when reading
// from a terminal, and is returned without trimming spaces.
func (p *Prompter) Password(label string) (string, error) {
	if p.tty == nil {
		fmt.Fprintf(p.out, "%s: ", label)
		line, err := p.readLine()
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%s: %w", label, ErrNoInput)
			}
			return "", fmt.Errorf("read %s: %w", label, err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(int(p.tty.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(b), nil
}

// readLine reads up to and including the next newline, returning the
// line without its line ending.
func (p *Prompter) readLine() (string, error) {
	var line []byte
	var b [1]byte
	for {
		n, err := p.in.Read(b[:])
		if n > 0 {
			if b[0] == '\n' {
				return strings.TrimRight(string(line), "\r"), nil
			}
			line = append(line, b[0])
		}
		if err != nil {
			return strings.TrimRight(string(line), "\r"), err
		}
	}
}
