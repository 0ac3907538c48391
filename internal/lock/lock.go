// Package lock keeps at most one sync pass in flight. Local guards a single
// process; File and Redis extend the guard across processes and replicas.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotHeld is returned by Release when the caller does not own the lock
var ErrNotHeld = errors.New("lock not held")

// Lock is a non-blocking mutual exclusion guard
type Lock interface {
	// TryAcquire takes the lock if it is free and reports whether it did
	TryAcquire(ctx context.Context) (bool, error)
	// Release gives the lock back
	Release(ctx context.Context) error
	// Close frees the resources behind the lock
	Close() error
}

// Local is an in-process Lock
type Local struct {
	mu   sync.Mutex
	held bool
}

var _ Lock = (*Local)(nil)

// NewLocal returns an unlocked in-process lock
func NewLocal() *Local {
	return &Local{}
}

// TryAcquire implements Lock
func (l *Local) TryAcquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

// Release implements Lock
func (l *Local) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return ErrNotHeld
	}
	l.held = false
	return nil
}

// Close implements Lock
func (*Local) Close() error {
	return nil
}
