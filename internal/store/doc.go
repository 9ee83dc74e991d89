// Package store provides SQLite-backed storage for onboarding records.
//
// The store implements the record-store contract consumed by the onboarding
// core:
//   - Checklist items: bulk-created once per agent, then only toggled
//   - Badges: created once, never updated or deleted
//   - Alerts: created and resolved, never deleted
//   - Reference data (agents, documents, licenses, carrier appointments,
//     contracts): read by snapshot assembly, written only by fixture import
//
// # Idempotent Writes
//
// Cross-record races are absorbed by uniqueness constraints rather than
// transactions spanning several round-trips:
//   - UNIQUE(agent_id, item_key) on checklist_items
//   - UNIQUE(agent_id, badge_type) on badges
//   - partial UNIQUE(agent_id, alert_type) WHERE is_resolved = 0 on alerts
//
// Conflicting inserts return ErrDuplicate; callers treat that as "already
// done" rather than as a failure.
//
// # Ordering
//
// List methods accept a sort field from a per-collection whitelist. A leading
// "-" means descending ("-created_date"). Every query appends "id ASC" so
// results are deterministic when sort keys tie.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
