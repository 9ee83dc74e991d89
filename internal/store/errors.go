package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicate is returned when an insert collides with a uniqueness
	// constraint. For badges and open alerts this means "already done".
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound is returned when a record lookup by ID matches nothing.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a conditional update finds the record in a
	// different state than the caller read.
	ErrConflict = errors.New("record changed concurrently")

	// ErrInvalidSort is returned for a sort field outside the collection's whitelist.
	ErrInvalidSort = errors.New("invalid sort field")

	// ErrUnavailable marks a failed round-trip to the database. Callers treat it
	// as a hard failure for the operation in progress.
	ErrUnavailable = errors.New("store unavailable")
)

// IsDuplicate reports whether err is (or wraps) ErrDuplicate.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is (or wraps) ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnavailable reports whether err is (or wraps) ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// isUniqueViolation detects UNIQUE / PRIMARY KEY conflicts from the driver.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrConstraint &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// unavailable wraps a database error so it matches ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
