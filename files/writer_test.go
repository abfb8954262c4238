package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitMissingRootDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, nil)
	files, err := w.Commit("/srv/app/tmp")
	assert.NoError(t, err)
	assert.Len(t, files, 0)
	ok, err := afero.DirExists(fs, "/srv/app/tmp")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCommitRelativeRoot(t *testing.T) {
	w := NewWriter(afero.NewMemMapFs(), nil)
	_, err := w.Commit("srv/app")
	assert.Error(t, err)
}

func TestCommitCreatesNestedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, nil)
	files, err := w.Commit("/srv/app",
		File{Name: "settings", Path: "core/settings/prod.py", Content: "DEBUG = False\n"},
		File{Name: "socket", Path: "tmp/gunicorn.socket", Content: "[Unit]\n"},
	)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/srv/app/core/settings/prod.py", files[0].FullPath)
	assert.Equal(t, "/srv/app/tmp/gunicorn.socket", files[1].FullPath)
	assert.False(t, files[0].Unchanged)

	data, err := afero.ReadFile(fs, "/srv/app/core/settings/prod.py")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG = False\n", string(data))
}

func TestCommitTruncatesChangedContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/app/tmp/site.conf", []byte("a much longer previous site block\n"), 0o644))
	w := NewWriter(fs, nil)
	files, err := w.Commit("/srv/app", File{Name: "site", Path: "tmp/site.conf", Content: "server {}\n"})
	require.NoError(t, err)
	assert.False(t, files[0].Unchanged)
	data, err := afero.ReadFile(fs, "/srv/app/tmp/site.conf")
	require.NoError(t, err)
	assert.Equal(t, "server {}\n", string(data))
}

func TestCommitRejectsEscapingPaths(t *testing.T) {
	w := NewWriter(afero.NewMemMapFs(), nil)
	_, err := w.Commit("/srv/app", File{Name: "x", Path: "../etc/passwd", Content: "x"})
	assert.Error(t, err)
	_, err = w.Commit("/srv/app", File{Name: "x", Path: "/etc/passwd", Content: "x"})
	assert.Error(t, err)
}

func TestCommitDoesNotRewriteMatchingContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w := NewOSWriter()
	files, err := w.Commit(dir, File{Name: "service", Path: "tmp/gunicorn.service", Content: "[Service]\n"})
	require.NoError(t, err)
	path := filepath.Join(dir, "tmp", "gunicorn.service")
	require.Equal(t, path, files[0].FullPath)

	info, err := os.Stat(path)
	require.NoError(t, err)

	// mtime resolution is often a second, so wait at least that long.
	time.Sleep(time.Second)
	files1, err := w.Commit(dir, File{Name: "service", Path: "tmp/gunicorn.service", Content: "[Service]\n"})
	require.NoError(t, err)
	assert.True(t, files1[0].Unchanged)
	assert.Equal(t, files[0].Hash, files1[0].Hash)

	info1, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), info1.ModTime())
}

func TestMkdirAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, nil)
	require.NoError(t, w.MkdirAll("/srv/app/tmp"))
	ok, err := afero.DirExists(w.Fs(), "/srv/app/tmp")
	require.NoError(t, err)
	assert.True(t, ok)
}
