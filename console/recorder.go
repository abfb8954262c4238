package console

import (
	"strings"
	"sync"
)

// Level identifies the kind of a recorded message.
type Level string

const (
	LevelHeader  Level = "header"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Entry is a single recorded message.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a Console that keeps every message in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: l, Message: msg})
}

func (r *Recorder) Header(title string) { r.add(LevelHeader, title) }
func (r *Recorder) Info(msg string)     { r.add(LevelInfo, msg) }
func (r *Recorder) Success(msg string)  { r.add(LevelSuccess, msg) }
func (r *Recorder) Warn(msg string)     { r.add(LevelWarn, msg) }
func (r *Recorder) Error(msg string)    { r.add(LevelError, msg) }

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the text of all messages recorded at level l.
func (r *Recorder) Messages(l Level) []string {
	var msgs []string
	for _, e := range r.Entries() {
		if e.Level == l {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Contains reports whether any message at level l contains substr.
func (r *Recorder) Contains(l Level, substr string) bool {
	for _, m := range r.Messages(l) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
