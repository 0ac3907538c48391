package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/usersync/internal/config"
)

// Coordinator manages background synchronization scheduling and execution
type Coordinator interface {
	// Start runs a pass immediately and then one per interval.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator and waits for the running pass
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	runner   Runner
	interval time.Duration

	// Lifecycle management
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// New creates a new coordinator with injected dependencies
func New(runner Runner, cfg *config.SyncConfig) Coordinator {
	return &defaultCoordinator{
		runner:   runner,
		interval: getSyncInterval(cfg),
		done:     make(chan struct{}),
	}
}

// Start begins background sync coordination
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background sync coordinator", "interval", c.interval)

	// Create cancellable context for this coordinator
	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		slog.Info("Background sync coordinator shutting down")
	}()

	// Perform initial sync
	c.runPass(coordCtx)

	ticker := time.NewTicker(calculatePollingInterval(c.interval))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runPass(coordCtx)

			// Recalculate interval with new jitter for next iteration
			ticker.Reset(calculatePollingInterval(c.interval))
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		// Wait for coordinator to finish
		<-c.done
	}
	return nil
}

// runPass runs one pass. Failures are logged by the runner and the loop carries on.
func (c *defaultCoordinator) runPass(ctx context.Context) {
	report, err := c.runner.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			slog.Info("Sync pass interrupted by shutdown")
		}
		return
	}
	if report.Skipped {
		slog.Debug("Sync pass skipped")
	}
}
