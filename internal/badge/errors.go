package badge

import (
	"errors"
	"fmt"
)

// ErrNoAgent is returned by predicates that read agent fields when the
// snapshot carries no agent record.
var ErrNoAgent = errors.New("snapshot has no agent")

// RuleError reports a predicate that failed or panicked. The rule is skipped
// for this pass; other rules still run.
type RuleError struct {
	// BadgeType identifies the rule.
	BadgeType string

	// Err is the predicate error, or a description of the recovered panic.
	Err error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("badge rule %s: %v", e.BadgeType, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// AwardError reports a satisfied rule whose badge could not be stored.
type AwardError struct {
	BadgeType string
	Err       error
}

func (e *AwardError) Error() string {
	return fmt.Sprintf("award badge %s: %v", e.BadgeType, e.Err)
}

func (e *AwardError) Unwrap() error {
	return e.Err
}

// IsRuleError reports whether err is (or wraps) a RuleError.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
