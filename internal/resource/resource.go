// Package resource scopes on-disk run artifacts to one directory that is
// removed when the run ends.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-sod/clamp/internal/logging"
	"github.com/google/uuid"
)

const (
	dirPrefix = "clamp-"
	shmDir    = "/dev/shm"
)

type Config struct {
	// BaseDir overrides the parent of the run directory.
	BaseDir string `envconfig:"CLAMP_TMP_DIR" toml:"base_dir"`
}

// DefaultBase prefers shared memory and falls back to the OS temp dir.
func DefaultBase() string {
	if fi, err := os.Stat(shmDir); err == nil && fi.IsDir() {
		return shmDir
	}
	return os.TempDir()
}

// Scope owns a run directory and the closers of artifacts inside it.
type Scope struct {
	dir      string
	closers  []io.Closer
	released bool
}

// Acquire creates <base>/clamp-<uuid>. An empty base means DefaultBase.
func Acquire(ctx context.Context, base string) (*Scope, error) {
	if base == "" {
		base = DefaultBase()
	}
	dir := filepath.Join(base, dirPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	logging.FromContext(ctx).Infof("using %s as temp folder", dir)
	return &Scope{dir: dir}, nil
}

func (s *Scope) Dir() string {
	return s.dir
}

// Track registers c to be closed, in reverse order, before the directory
// is removed.
func (s *Scope) Track(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Release closes tracked artifacts and removes the directory. It is safe to
// call more than once.
func (s *Scope) Release(ctx context.Context) error {
	if s == nil || s.released {
		return nil
	}
	s.released = true

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close run artifact: %w", err))
		}
	}
	s.closers = nil
	if err := os.RemoveAll(s.dir); err != nil {
		errs = append(errs, fmt.Errorf("remove run directory: %w", err))
	}
	logging.FromContext(ctx).Debugf("released %s", s.dir)
	return errors.Join(errs...)
}
