// Package coordinator runs sync passes on a schedule.
//
// It sits on top of internal/sync.Synchronizer and handles:
//
//   - the transaction boundary of a pass (commit on success, rollback on error)
//   - bounded retries with a fixed cooldown
//   - the pass lock, so at most one pass is in flight
//   - status persistence and metrics
//   - the periodic schedule with an initial pass on startup
//
// # Usage Example
//
//	synchronizer := sync.NewSynchronizer(directoryClient, creditCardClient)
//	runner := coordinator.NewRunner(synchronizer, store.NewPostgresTxBeginner(pool),
//		state.NewDBStateService(pool, state.DefaultSyncName), &cfg.Sync)
//
//	// one pass, as the sync command does
//	report, err := runner.RunOnce(ctx)
//
//	// or in the background, as serve does
//	c := coordinator.New(runner, &cfg.Sync)
//	go c.Start(ctx)
//	defer c.Stop()
//
// # Error Handling
//
//   - a failed attempt is rolled back and retried after the cooldown
//   - once the retries are used up the status is set to Failed
//   - the coordinator keeps ticking after a failed pass
//   - status persistence errors are logged but don't stop the pass
package coordinator
