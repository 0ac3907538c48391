// Package state persists the status of the most recent sync pass.
package state

import (
	"context"
	"errors"

	"github.com/stacklok/usersync/internal/status"
)

// DefaultSyncName keys the status row written by the user sync job
const DefaultSyncName = "users"

// ErrStatusNotFound is returned before the first pass has recorded a status
var ErrStatusNotFound = errors.New("sync status not found")

// StateService reads and writes the sync status.
//
//nolint:revive // This name is fine
type StateService interface {
	// GetSyncStatus returns the stored status or ErrStatusNotFound
	GetSyncStatus(ctx context.Context) (*status.SyncStatus, error)
	// UpdateSyncStatus replaces the stored status
	UpdateSyncStatus(ctx context.Context, syncStatus *status.SyncStatus) error
}
