package badge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/store"
)

// Creator is the slice of the record store the engine writes to.
type Creator interface {
	CreateBadge(ctx context.Context, b model.Badge) (model.Badge, error)
}

// Outcome is the result of one evaluation pass.
type Outcome struct {
	// Awarded lists badges created by this pass only.
	Awarded []model.Badge

	// Warnings holds RuleError and AwardError values for rules that were
	// skipped. A non-empty list never invalidates Awarded.
	Warnings []error
}

// Engine evaluates the badge table against agent snapshots.
type Engine struct {
	store Creator
	rules []Rule
	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine over rules. now stamps earned_date and newID
// supplies badge record IDs.
func NewEngine(s Creator, rules []Rule, now func() time.Time, newID func() string) *Engine {
	return &Engine{store: s, rules: rules, now: now, newID: newID}
}

// EvaluateAndAward evaluates every rule whose type is not in existing and
// creates a badge for each satisfied predicate.
//
// Rules are independent: a failing or panicking predicate is skipped with a
// RuleError warning, and a failed create is skipped with an AwardError
// warning. A uniqueness conflict means another pass already awarded the
// badge and is omitted silently. Only a cancelled ctx stops the pass early.
func (e *Engine) EvaluateAndAward(ctx context.Context, agentID string, snap model.Snapshot, existing []model.Badge) Outcome {
	earned := model.NewEarnedSet(existing)
	out := Outcome{Awarded: []model.Badge{}}

	for _, rule := range e.rules {
		if earned.Has(rule.Type) {
			continue
		}
		if err := ctx.Err(); err != nil {
			out.Warnings = append(out.Warnings, fmt.Errorf("badge evaluation stopped: %w", err))
			return out
		}

		ok, err := evaluate(rule, snap, earned)
		if err != nil {
			slog.Warn("badge rule failed",
				"agent_id", agentID,
				"badge_type", rule.Type,
				"error", err,
			)
			out.Warnings = append(out.Warnings, err)
			continue
		}
		if !ok {
			continue
		}

		b, err := e.store.CreateBadge(ctx, model.Badge{
			ID:               e.newID(),
			AgentID:          agentID,
			BadgeType:        rule.Type,
			BadgeName:        rule.Name,
			BadgeDescription: rule.Description,
			Points:           rule.Points,
			EarnedDate:       e.now(),
		})
		if store.IsDuplicate(err) {
			slog.Debug("badge already awarded, skipping (idempotent)",
				"agent_id", agentID,
				"badge_type", rule.Type,
			)
			continue
		}
		if err != nil {
			slog.Warn("badge award failed",
				"agent_id", agentID,
				"badge_type", rule.Type,
				"error", err,
			)
			out.Warnings = append(out.Warnings, &AwardError{BadgeType: rule.Type, Err: err})
			continue
		}

		slog.Info("badge awarded",
			"agent_id", agentID,
			"badge_type", b.BadgeType,
			"points", b.Points,
		)
		out.Awarded = append(out.Awarded, b)
	}
	return out
}

// evaluate runs one predicate, converting errors and panics to RuleError.
func evaluate(rule Rule, snap model.Snapshot, earned model.EarnedSet) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &RuleError{BadgeType: rule.Type, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if rule.Predicate == nil {
		return false, &RuleError{BadgeType: rule.Type, Err: fmt.Errorf("no predicate")}
	}
	ok, err = rule.Predicate.Evaluate(snap, earned)
	if err != nil {
		return false, &RuleError{BadgeType: rule.Type, Err: err}
	}
	return ok, nil
}

// TotalPoints sums badge points.
func TotalPoints(badges []model.Badge) int {
	total := 0
	for _, b := range badges {
		total += b.Points
	}
	return total
}
