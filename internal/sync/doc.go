// Package sync implements one synchronization pass from the upstream user
// directory into the store.
//
// A pass fetches the directory, keeps the users the store does not know yet,
// requests exactly one credit card per new user in a single batch call, and
// then creates an address, a company and a card for each new user before
// linking them to the user row. The pass never commits or rolls back: it works
// on a store.Store bound to a transaction owned by the caller.
//
// # Outcomes
//
//   - OutcomeSuccess: at least one user was created
//   - OutcomeEmpty: the directory was empty or unavailable, or every user already exists
//   - OutcomeAborted: the pass returned an error and the caller must roll back
//
// A pass aborts without creating anything when the credit card batch is
// smaller than the number of new users (ErrInsufficientCreditCards).
//
// # Coordinator Package
//
// The sync/coordinator subpackage owns the transaction boundary, retries and
// the periodic schedule.
package sync
