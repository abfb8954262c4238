package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBacklog_NotFull(t *testing.T) {
	b := NewBacklog(64)
	_, err := b.Write([]byte("Reading package lists...\n"))
	require.NoError(t, err)
	_, err = b.Write([]byte("Done\n"))
	require.NoError(t, err)
	assert.Equal(t, "Reading package lists...\nDone\n", string(b.Bytes()))
}

func TestBacklog_MultipleWrites(t *testing.T) {
	b := NewBacklog(8)
	n, err := b.Write([]byte("hello world\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = b.Write([]byte("more\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "more\n", string(b.Bytes()))
}

func TestBacklog_NewlineAtEndOfBuffer(t *testing.T) {
	b := NewBacklog(10)
	n, err := b.Write([]byte("hello world\nhello world\n"))
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, "", string(b.Bytes()))
}

func TestBacklog_Empty(t *testing.T) {
	b := NewBacklog(4)
	_, _ = b.Write([]byte("abcdef"))
	b.Empty()
	assert.Equal(t, "", string(b.Bytes()))
	_, _ = b.Write([]byte("x"))
	assert.Equal(t, "x", string(b.Bytes()))
}
