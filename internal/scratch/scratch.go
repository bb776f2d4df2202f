// Package scratch hands out short-lived files inside one private directory per run.
package scratch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// Arena owns a temporary directory. Files acquired from it are removed by Release,
// and whatever is still there is removed by Close.
type Arena struct {
	dir    string
	logger logger.Logger
}

// New creates an arena under parent.
func New(parent string, log logger.Logger) (*Arena, error) {
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}
	dir, err := os.MkdirTemp(parent, "run-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Arena{dir: dir, logger: log}, nil
}

// Dir returns the arena directory.
func (a *Arena) Dir() string {
	return a.dir
}

// Acquire reserves a path for name inside the arena. The file itself is created by the caller.
func (a *Arena) Acquire(name string) *File {
	return &File{
		path:   filepath.Join(a.dir, filepath.Base(name)),
		logger: a.logger,
	}
}

// Close removes the arena and everything left in it.
func (a *Arena) Close() error {
	if err := os.RemoveAll(a.dir); err != nil {
		return fmt.Errorf("remove temp dir: %w", err)
	}
	return nil
}

// File is a scratch file handle. Release is safe to call more than once.
type File struct {
	path   string
	logger logger.Logger
	once   sync.Once
}

// Path returns where the file lives.
func (f *File) Path() string {
	return f.path
}

// ReadAll returns the file content.
func (f *File) ReadAll() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Release deletes the file; a file that was never created is not an error.
func (f *File) Release() {
	f.once.Do(func() {
		err := os.Remove(f.path)
		switch {
		case err == nil:
			f.logger.Debug(context.Background(), "Cleaned up temp file: %s", f.path)
		case errors.Is(err, os.ErrNotExist):
		default:
			f.logger.Warn(context.Background(), "Failed to cleanup temp file %s: %v", f.path, err)
		}
	})
}
