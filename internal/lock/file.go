package lock

import (
	"context"
	"fmt"

	"github.com/gofrs/flock"
)

// File is a Lock backed by an advisory lock on a file, shared by every
// process on the host that uses the same path
type File struct {
	flock *flock.Flock
}

var _ Lock = (*File)(nil)

// NewFile returns a file lock at path. The file is created on first acquire.
func NewFile(path string) *File {
	return &File{flock: flock.New(path)}
}

// TryAcquire implements Lock
func (f *File) TryAcquire(_ context.Context) (bool, error) {
	ok, err := f.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to lock %s: %w", f.flock.Path(), err)
	}
	return ok, nil
}

// Release implements Lock
func (f *File) Release(_ context.Context) error {
	if !f.flock.Locked() {
		return ErrNotHeld
	}
	if err := f.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", f.flock.Path(), err)
	}
	return nil
}

// Close implements Lock
func (f *File) Close() error {
	return f.flock.Close()
}
