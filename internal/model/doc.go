// Package model provides the record types shared by the onboarding core.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal, so it stays the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Nullable timestamps are pointers (*time.Time); a nil pointer is "null"
//   - All JSON and YAML tags use snake_case, matching the record-store fields
//   - Derived read models (Snapshot, EarnedSet) are never persisted
package model
