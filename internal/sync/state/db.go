package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/stacklok/usersync/internal/db/sqlc"
	"github.com/stacklok/usersync/internal/status"
)

type dbStateService struct {
	queries *sqlc.Queries
	name    string
}

// NewDBStateService creates a StateService backed by the sync_status table
func NewDBStateService(db sqlc.DBTX, name string) StateService {
	if name == "" {
		name = DefaultSyncName
	}
	return &dbStateService{
		queries: sqlc.New(db),
		name:    name,
	}
}

func (d *dbStateService) GetSyncStatus(ctx context.Context) (*status.SyncStatus, error) {
	row, err := d.queries.GetSyncStatus(ctx, d.name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	return &status.SyncStatus{
		Phase:        status.SyncPhase(row.Phase),
		Message:      row.Message,
		LastAttempt:  fromTimestamptz(row.LastAttempt),
		AttemptCount: int(row.AttemptCount),
		CreatedCount: int(row.CreatedCount),
		LastSyncTime: fromTimestamptz(row.LastSyncTime),
	}, nil
}

func (d *dbStateService) UpdateSyncStatus(ctx context.Context, syncStatus *status.SyncStatus) error {
	if syncStatus == nil {
		return fmt.Errorf("sync status is required")
	}

	err := d.queries.UpsertSyncStatus(ctx, sqlc.UpsertSyncStatusParams{
		Name:         d.name,
		Phase:        string(syncStatus.Phase),
		Message:      syncStatus.Message,
		AttemptCount: int32(syncStatus.AttemptCount), //nolint:gosec // bounded by the retry limit
		CreatedCount: int32(syncStatus.CreatedCount), //nolint:gosec // bounded by the directory size
		LastAttempt:  toTimestamptz(syncStatus.LastAttempt),
		LastSyncTime: toTimestamptz(syncStatus.LastSyncTime),
	})
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func fromTimestamptz(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
