package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/stacklok/usersync/internal/status"
)

type memoryStateService struct {
	mu     sync.RWMutex
	status *status.SyncStatus
}

// NewMemoryStateService creates a StateService that keeps the status in process memory
func NewMemoryStateService() StateService {
	return &memoryStateService{}
}

func (m *memoryStateService) GetSyncStatus(_ context.Context) (*status.SyncStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.status == nil {
		return nil, ErrStatusNotFound
	}
	cp := *m.status
	return &cp, nil
}

func (m *memoryStateService) UpdateSyncStatus(_ context.Context, syncStatus *status.SyncStatus) error {
	if syncStatus == nil {
		return fmt.Errorf("sync status is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *syncStatus
	m.status = &cp
	return nil
}
