package coordinator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/usersync/internal/config"
	"github.com/stacklok/usersync/internal/sync/coordinator"
	"github.com/stacklok/usersync/internal/sync/coordinator/mocks"
)

func TestCoordinator_RunsImmediatelyAndOnTicks(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)

	var calls atomic.Int32
	runner.EXPECT().RunOnce(gomock.Any()).DoAndReturn(func(context.Context) (*coordinator.RunReport, error) {
		calls.Add(1)
		return &coordinator.RunReport{}, nil
	}).MinTimes(3)

	c := coordinator.New(runner, &config.SyncConfig{Interval: "20ms"})
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Start(context.Background())
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop())
	require.NoError(t, <-errCh)
}

func TestCoordinator_KeepsRunningAfterFailedPass(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)

	var calls atomic.Int32
	runner.EXPECT().RunOnce(gomock.Any()).DoAndReturn(func(context.Context) (*coordinator.RunReport, error) {
		calls.Add(1)
		return &coordinator.RunReport{}, errors.New("pass failed")
	}).MinTimes(2)

	c := coordinator.New(runner, &config.SyncConfig{Interval: "10ms"})
	go func() {
		_ = c.Start(context.Background())
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop())
}

func TestCoordinator_StopsWhenContextCancelled(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().RunOnce(gomock.Any()).Return(&coordinator.RunReport{Skipped: true}, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	c := coordinator.New(runner, &config.SyncConfig{Interval: "1h"})

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Start(ctx)
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
	// Stop after the loop exited must not block
	require.NoError(t, c.Stop())
}

func TestCoordinator_StopBeforeStart(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	c := coordinator.New(mocks.NewMockRunner(ctrl), nil)
	assert.NoError(t, c.Stop())
}
