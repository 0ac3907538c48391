package coordinator

import (
	"math/rand/v2"
	"time"

	"github.com/stacklok/usersync/internal/config"
)

// jitterFraction is the maximum relative offset applied to each tick
const jitterFraction = 10

// getSyncInterval returns the configured interval between passes
func getSyncInterval(cfg *config.SyncConfig) time.Duration {
	if cfg == nil {
		return config.DefaultSyncInterval
	}
	return cfg.GetInterval()
}

// calculatePollingInterval returns base with a random offset of up to ±10%
// so replicas started together drift apart.
func calculatePollingInterval(base time.Duration) time.Duration {
	jitter := base / jitterFraction
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return base + offset
}
