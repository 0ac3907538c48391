package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/stacklok/usersync/internal/config"
	"github.com/stacklok/usersync/internal/lock"
	"github.com/stacklok/usersync/internal/otel"
	"github.com/stacklok/usersync/internal/status"
	"github.com/stacklok/usersync/internal/store"
	pkgsync "github.com/stacklok/usersync/internal/sync"
	"github.com/stacklok/usersync/internal/sync/state"
	"github.com/stacklok/usersync/internal/telemetry"
)

// RunReport summarizes one pass including its retries
type RunReport struct {
	// Outcome of the last attempt
	Outcome pkgsync.Outcome
	// Created is the number of users committed
	Created int
	// Attempts is the number of attempts made, zero when the pass was skipped
	Attempts int
	// Skipped is set when another pass held the lock
	Skipped  bool
	Duration time.Duration
}

// Message is the human readable pass summary
func (r *RunReport) Message() string {
	return fmt.Sprintf("Total new users processed: %d", r.Created)
}

// Runner executes sync passes inside a transaction with bounded retries
//
//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/stacklok/usersync/internal/sync/coordinator Runner
type Runner interface {
	// RunOnce performs one pass. It returns the last attempt's error once the
	// retries are used up.
	RunOnce(ctx context.Context) (*RunReport, error)
}

type defaultRunner struct {
	synchronizer pkgsync.Synchronizer
	txBeginner   store.TxBeginner
	statusSvc    state.StateService

	lock        lock.Lock
	cooldown    time.Duration
	maxRetries  int
	syncMetrics *telemetry.SyncMetrics
	tracer      trace.Tracer
}

// RunnerOption configures the default Runner
type RunnerOption func(*defaultRunner)

// WithLock replaces the in-process pass lock
func WithLock(l lock.Lock) RunnerOption {
	return func(r *defaultRunner) {
		r.lock = l
	}
}

// WithSyncMetrics sets the sync metrics for the runner
func WithSyncMetrics(metrics *telemetry.SyncMetrics) RunnerOption {
	return func(r *defaultRunner) {
		r.syncMetrics = metrics
	}
}

// WithTracer records a span per pass
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *defaultRunner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// NewRunner creates a Runner. The retry policy comes from cfg.
func NewRunner(
	synchronizer pkgsync.Synchronizer,
	txBeginner store.TxBeginner,
	statusSvc state.StateService,
	cfg *config.SyncConfig,
	opts ...RunnerOption,
) Runner {
	if cfg == nil {
		cfg = &config.SyncConfig{}
	}
	r := &defaultRunner{
		synchronizer: synchronizer,
		txBeginner:   txBeginner,
		statusSvc:    statusSvc,
		lock:         lock.NewLocal(),
		cooldown:     cfg.GetRetryCooldown(),
		maxRetries:   cfg.GetMaxRetries(),
		tracer:       noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *defaultRunner) RunOnce(ctx context.Context) (*RunReport, error) {
	acquired, err := r.lock.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !acquired {
		slog.Info("Another sync pass is in progress, skipping")
		return &RunReport{Skipped: true}, nil
	}
	defer func() {
		// the pass context may be cancelled already
		if err := r.lock.Release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to release sync lock", "error", err)
		}
	}()

	ctx, span := otel.StartSpan(ctx, r.tracer, "coordinator.RunOnce")
	defer span.End()

	startTime := time.Now()
	report := &RunReport{Outcome: pkgsync.OutcomeAborted}

	// Set a default error here in case the pass is killed by an unexpected error.
	syncStatus := r.previousStatus(ctx)
	syncStatus.Phase = status.SyncPhaseFailed
	syncStatus.Message = "Unexpected failure during sync pass"
	defer func() {
		if err := r.statusSvc.UpdateSyncStatus(context.WithoutCancel(ctx), syncStatus); err != nil {
			slog.Error("Error updating sync status", "error", err)
		}
	}()

	operation := func() (*pkgsync.Result, error) {
		report.Attempts++
		span.SetAttributes(otel.AttrAttempt.Int(report.Attempts))
		r.markSyncing(ctx, syncStatus, report.Attempts)

		result, err := r.attempt(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return result, nil
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(r.cooldown)),
		backoff.WithMaxTries(uint(r.maxRetries+1)), //nolint:gosec // maxRetries is validated non-negative
		// zero disables the elapsed time limit; MaxTries bounds the pass
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Sync attempt failed, retrying after cooldown",
				"attempt", report.Attempts,
				"max_retries", r.maxRetries,
				"cooldown", next,
				"error", err)
		}),
	)
	report.Duration = time.Since(startTime)

	now := time.Now()
	if err != nil {
		otel.RecordError(span, err)
		syncStatus.Phase = status.SyncPhaseFailed
		syncStatus.Message = err.Error()
		slog.Error("Sync pass failed permanently",
			"attempts", report.Attempts,
			"duration", report.Duration,
			"error", err)
		r.syncMetrics.RecordPass(ctx, string(pkgsync.OutcomeAborted), report.Duration, 0)
		return report, err
	}

	report.Outcome = result.Outcome
	report.Created = result.CreatedCount()
	span.SetAttributes(
		otel.AttrOutcome.String(string(report.Outcome)),
		otel.AttrCreatedCount.Int(report.Created),
	)

	syncStatus.Phase = status.SyncPhaseComplete
	syncStatus.Message = report.Message()
	syncStatus.LastSyncTime = &now
	syncStatus.CreatedCount = report.Created
	slog.Info(report.Message(),
		"outcome", report.Outcome,
		"attempts", report.Attempts,
		"duration", report.Duration)

	r.syncMetrics.RecordPass(ctx, string(report.Outcome), report.Duration, report.Created)
	return report, nil
}

// attempt runs the synchronizer inside one transaction, committing on success
func (r *defaultRunner) attempt(ctx context.Context) (*pkgsync.Result, error) {
	tx, err := r.txBeginner.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := r.synchronizer.Run(ctx, tx.Store())
	if err != nil {
		rollback(ctx, tx)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		rollback(ctx, tx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func rollback(ctx context.Context, tx store.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		slog.Error("Failed to roll back transaction", "error", err)
		return
	}
	slog.Debug("Transaction rolled back")
}

// previousStatus returns a copy of the stored status, or a fresh one
func (r *defaultRunner) previousStatus(ctx context.Context) *status.SyncStatus {
	previous, err := r.statusSvc.GetSyncStatus(ctx)
	if err != nil {
		if !errors.Is(err, state.ErrStatusNotFound) {
			slog.Warn("Failed to read previous sync status", "error", err)
		}
		return &status.SyncStatus{}
	}
	return previous
}

// markSyncing persists the Syncing phase so it is visible while the attempt runs
func (r *defaultRunner) markSyncing(ctx context.Context, syncStatus *status.SyncStatus, attempt int) {
	now := time.Now()
	syncing := *syncStatus
	syncing.Phase = status.SyncPhaseSyncing
	syncing.Message = "Sync in progress"
	syncing.LastAttempt = &now
	syncing.AttemptCount = attempt

	syncStatus.LastAttempt = &now
	syncStatus.AttemptCount = attempt

	if err := r.statusSvc.UpdateSyncStatus(ctx, &syncing); err != nil {
		slog.Warn("Failed to persist syncing status", "attempt", attempt, "error", err)
	}
}
