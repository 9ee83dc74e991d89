// Package harness runs onboarding scenarios end to end.
//
// A scenario is a YAML document with reference fixtures, a list of steps
// (init, toggle, refresh, advance) and expectations on the final state
// (badges, points, progress, open alerts, stall status, leaderboard order).
// Each run uses a fresh in-memory store, a fixed clock starting at the
// scenario's start time and sequential record IDs, so the produced trace is
// identical on every run and can be compared against a golden file.
package harness
