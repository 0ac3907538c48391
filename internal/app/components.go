package app

import (
	"context"
	"log/slog"

	"github.com/stacklok/usersync/internal/db"
	"github.com/stacklok/usersync/internal/lock"
	"github.com/stacklok/usersync/internal/sync/coordinator"
	"github.com/stacklok/usersync/internal/sync/state"
	"github.com/stacklok/usersync/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator schedules background passes
	SyncCoordinator coordinator.Coordinator

	// Runner executes a single pass
	Runner coordinator.Runner

	// StatusService stores the outcome of the last pass
	StatusService state.StateService

	// Lock prevents overlapping passes
	Lock lock.Lock

	// Telemetry holds the tracer and meter providers
	Telemetry *telemetry.Telemetry

	// Database is the database connection (nil when storage was injected)
	Database *db.Connection
}

// Close releases every component that holds external resources
func (c *AppComponents) Close(ctx context.Context) {
	if c.Lock != nil {
		if err := c.Lock.Close(); err != nil {
			slog.Error("Failed to close pass lock", "error", err)
		}
	}
	if c.Database != nil {
		c.Database.Close()
	}
	if c.Telemetry != nil {
		if err := c.Telemetry.Shutdown(ctx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}
}
