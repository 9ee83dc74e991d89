// Package badge awards achievement badges from an agent snapshot.
//
// Rules form a data table (Rules); each rule's predicate is a pure function
// of the snapshot and the set of badges already earned. EvaluateAndAward runs
// every rule not yet earned and creates a badge for each satisfied predicate.
//
// Awarding is idempotent: the store allows one badge per (agent, type), and a
// uniqueness conflict from a concurrent pass is treated as already awarded.
package badge
