// Package files writes generated configuration files below a root directory.
package files

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// File is a generated file. Path is relative to the root it is written under.
type File struct {
	Name    string
	Path    string
	Content string
}

// LocalFile describes a file after it has been written.
type LocalFile struct {
	Name     string
	FullPath string
	Hash     []byte
	// Unchanged reports that the file already held the same content
	// and was not rewritten.
	Unchanged bool
}

// Writer writes files to a file system.
type Writer struct {
	fs   afero.Afero
	hash hash.Hash
}

// NewWriter returns a Writer over fs. A nil hasher uses SHA-256.
func NewWriter(fs afero.Fs, hasher hash.Hash) *Writer {
	w := &Writer{
		fs:   afero.Afero{Fs: fs},
		hash: hasher,
	}
	if w.hash == nil {
		w.hash = sha256.New()
	}
	return w
}

// NewOSWriter returns a Writer over the real file system.
func NewOSWriter() *Writer {
	return NewWriter(afero.NewOsFs(), nil)
}

// Fs returns the underlying file system.
func (w *Writer) Fs() afero.Fs {
	return w.fs.Fs
}

// MkdirAll creates dir and any missing parents.
func (w *Writer) MkdirAll(dir string) error {
	if err := w.fs.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("unable to create dir %q: %w", dir, err)
	}
	return nil
}

// Commit writes files below root, creating directories as needed. Files
// whose current content already matches are left untouched; others are
// truncated and rewritten.
func (w *Writer) Commit(root string, files ...File) ([]*LocalFile, error) {
	dir, err := w.checkRoot(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	fs := afero.Afero{Fs: afero.NewBasePathFs(w.fs.Fs, dir)}

	localFiles := make([]*LocalFile, 0, len(files))
	for _, f := range files {
		lf, err := w.writeFile(fs, f)
		if err != nil {
			return nil, err
		}
		localFiles = append(localFiles, lf)
	}
	return localFiles, nil
}

func (w *Writer) writeFile(fs afero.Afero, f File) (*LocalFile, error) {
	if filepath.IsAbs(f.Path) {
		return nil, fmt.Errorf("file path error: %q file must be relative path: %q", f.Name, f.Path)
	}
	path := filepath.Clean(f.Path)
	if path == ".." || strings.HasPrefix(path, "../") {
		return nil, fmt.Errorf("%q refers to file outside root", f.Path)
	}

	dir := filepath.Dir(path)
	if ok, err := fs.DirExists(dir); err != nil {
		return nil, fmt.Errorf("DirExists error: %q: %w", dir, err)
	} else if !ok {
		if err := fs.MkdirAll(dir, dirMode); err != nil {
			return nil, fmt.Errorf("file path error: unable to create dir %q: %w", dir, err)
		}
	}

	var dstHash []byte
	if ok, err := fs.Exists(path); err != nil {
		return nil, fmt.Errorf("exists error: %q: %w", path, err)
	} else if ok {
		w.hash.Reset()
		if file, err := fs.Open(path); err == nil {
			_, _ = io.Copy(w.hash, file)
			file.Close()
		}
		dstHash = w.hash.Sum(nil)
	}

	fullPath, err := fs.Fs.(*afero.BasePathFs).RealPath(path)
	if err != nil {
		return nil, fmt.Errorf("RealPath error: %q: %w", path, err)
	}

	lf := &LocalFile{Name: f.Name, FullPath: fullPath}
	w.hash.Reset()
	_, _ = io.WriteString(w.hash, f.Content)
	lf.Hash = w.hash.Sum(nil)

	if bytes.Equal(lf.Hash, dstHash) {
		lf.Unchanged = true
		return lf, nil
	}
	if err := fs.WriteFile(path, []byte(f.Content), fileMode); err != nil {
		return nil, fmt.Errorf("file write: unable to write file %q: %w", path, err)
	}
	return lf, nil
}

func (w *Writer) checkRoot(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		return "", fmt.Errorf("root %q must be an absolute path but is not", dir)
	}
	if ok, err := w.fs.DirExists(dir); err != nil {
		return "", err
	} else if !ok {
		if err := w.fs.MkdirAll(dir, os.FileMode(dirMode)); err != nil {
			return "", err
		}
	}
	return dir, nil
}
