// Package engine runs onboarding commands against the record store.
//
// Each command is an explicit handler that returns a result value:
// InitializeAgent, ToggleItem, Refresh, CheckStall and the read-only
// queries. A toggle is the primary mutation; after it lands the engine
// re-reads the agent's snapshot and runs the derived passes (alert
// correlation, then badge evaluation) on that fresh view.
//
// ERROR MODEL:
//
// Primary mutations (initialize, toggle) fail hard: the error is returned and
// nothing else runs. Derived passes never undo the primary mutation; their
// failures are reported as warnings on the result.
//
// CONCURRENCY:
//
// No lock spans store round-trips. Two commands racing for the same agent are
// reconciled by idempotent writes in the store: one badge per type and one
// open alert per type. The leaderboard loads its three collections
// concurrently.
package engine
