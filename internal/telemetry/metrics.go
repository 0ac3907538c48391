package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/stacklok/usersync/sync"

// SyncMetrics holds the instruments recorded once per sync pass
type SyncMetrics struct {
	passDuration metric.Float64Histogram
	passesTotal  metric.Int64Counter
	usersCreated metric.Int64Counter
}

// NewSyncMetrics creates the sync instruments. A nil provider yields nil, which
// every Record method treats as a no-op.
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	passDuration, err := meter.Float64Histogram(
		"usersync_pass_duration_seconds",
		metric.WithDescription("Duration of sync passes in seconds, retries included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	passesTotal, err := meter.Int64Counter(
		"usersync_passes_total",
		metric.WithDescription("Number of sync passes by outcome"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	usersCreated, err := meter.Int64Counter(
		"usersync_users_created_total",
		metric.WithDescription("Number of users committed by sync passes"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		passDuration: passDuration,
		passesTotal:  passesTotal,
		usersCreated: usersCreated,
	}, nil
}

// RecordPass records the outcome of one pass and the users it committed
func (m *SyncMetrics) RecordPass(ctx context.Context, outcome string, duration time.Duration, created int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.passDuration.Record(ctx, duration.Seconds(), attrs)
	m.passesTotal.Add(ctx, 1, attrs)
	if created > 0 {
		m.usersCreated.Add(ctx, int64(created))
	}
}
