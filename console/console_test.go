package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	c := NewTerminal(&buf, false)
	c.Info("running")
	c.Success("done")
	c.Warn("careful")
	c.Error("broken")
	assert.Equal(t, "running\ndone\ncareful\nbroken\n", buf.String())
}

func TestTerminalColorEmitsEscapes(t *testing.T) {
	var buf bytes.Buffer
	c := NewTerminal(&buf, true)
	c.Error("broken")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "broken")
}

func TestTerminalHeaderWidth(t *testing.T) {
	var buf bytes.Buffer
	c := NewTerminal(&buf, false)
	c.Header("Step 1 - Initial Server Setup")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	for _, l := range lines {
		assert.Len(t, l, len(rule))
	}
	assert.True(t, strings.HasPrefix(lines[1], "## Step 1 - Initial Server Setup #"))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Header("h")
	r.Info("one")
	r.Error("two")
	r.Info("three")
	assert.Equal(t, []string{"one", "three"}, r.Messages(LevelInfo))
	assert.True(t, r.Contains(LevelError, "tw"))
	assert.False(t, r.Contains(LevelWarn, "two"))
	assert.Len(t, r.Entries(), 4)
}
