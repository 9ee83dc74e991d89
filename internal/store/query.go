package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timeLayout is the on-disk timestamp format: RFC 3339 with a fixed-width
// fraction. Values are always written in UTC so lexical order in SQLite
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	// AgentID restricts results to one agent (equality filter).
	AgentID string

	// Sort names a whitelisted column; a leading "-" means descending.
	// Empty uses the collection default.
	Sort string

	// Unresolved restricts alert listings to open alerts. Ignored elsewhere.
	Unresolved bool
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// orderBy builds an ORDER BY clause for sort, validated against columns.
// The id column is always appended as the final tie-breaker.
func orderBy(sort string, columns map[string]bool, fallback string) (string, error) {
	if sort == "" {
		sort = fallback
	}

	dir := "ASC"
	field := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		field = sort[1:]
	}

	if !columns[field] {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}

	if field == "id" {
		return fmt.Sprintf(" ORDER BY id %s", dir), nil
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", field, dir), nil
}

// where builds a WHERE clause from equality conditions in declaration order.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
