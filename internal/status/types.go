// Package status defines the sync status record reported by the service.
package status

import "time"

// SyncPhase represents the current phase of a synchronization pass
type SyncPhase string

const (
	// SyncPhaseSyncing means a pass is currently in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last pass committed, possibly with nothing to create
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last pass exhausted its retries
	SyncPhaseFailed SyncPhase = "Failed"
)

// SyncStatus is the state of the most recent synchronization pass
type SyncStatus struct {
	// Phase represents the current synchronization phase
	Phase SyncPhase `json:"phase" yaml:"phase"`

	// Message is the pass summary or the last error
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// LastAttempt is the timestamp of the last attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty" yaml:"lastAttempt,omitempty"`

	// AttemptCount is the number of attempts made by the last pass
	AttemptCount int `json:"attemptCount" yaml:"attemptCount"`

	// CreatedCount is the number of users committed by the last successful pass
	CreatedCount int `json:"createdCount" yaml:"createdCount"`

	// LastSyncTime is the timestamp of the last successful pass
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty" yaml:"lastSyncTime,omitempty"`
}
