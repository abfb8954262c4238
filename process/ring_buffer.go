package process

import (
	"bytes"
	"sync"
)

// RingBuffer keeps the most recent bytes written to it.
type RingBuffer struct {
	mu   sync.Mutex
	data []byte
	size int
	w    int
	full bool
}

// NewBacklog creates a new RingBuffer of a specific size in bytes.
func NewBacklog(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]byte, size),
		size: size,
	}
}

// Empty discards the buffered data.
func (l *RingBuffer) Empty() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.w = 0
	l.full = false
}

// Write writes data to the RingBuffer.
func (l *RingBuffer) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	// If we are writing more bytes than are available in the ring-buffer, skip
	// to the bytes that would not be overwritten by the wrapping behavior.
	tn := len(b)
	if tn > l.size {
		b = b[tn-l.size:]
	}

	copy(l.data[l.w:], b)
	left := l.size - l.w
	n := len(b)
	if n > left {
		copy(l.data, b[left:])
	}
	if n >= left {
		l.full = true
	}
	l.w = (l.w + n) % l.size

	return tn, nil
}

// Bytes returns the buffered data in write order. Once the buffer has
// wrapped, the partial line at the start is dropped.
func (l *RingBuffer) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		return append([]byte(nil), l.data[:l.w]...)
	}
	out := make([]byte, l.size)
	copy(out, l.data[l.w:])
	copy(out[l.size-l.w:], l.data[:l.w])

	if idx := bytes.IndexByte(out, '\n'); idx > -1 {
		return out[idx+1:]
	}
	return out
}
