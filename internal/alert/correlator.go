package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/store"
)

const day = 24 * time.Hour

// Store is the slice of the record store the correlator reads and writes.
type Store interface {
	ListAlerts(ctx context.Context, f store.Filter) ([]model.Alert, error)
	CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error)
	ResolveAlert(ctx context.Context, id string, at time.Time) (model.Alert, error)
}

// Result is the outcome of one correlation pass.
type Result struct {
	Resolved []model.Alert
	Raised   []model.Alert

	// Warnings holds per-alert write failures. The pass continues past them.
	Warnings []error
}

// Correlator runs correlation passes against a template's stale thresholds.
type Correlator struct {
	store    Store
	template *checklist.Template
	now      func() time.Time
	newID    func() string
}

// NewCorrelator creates a Correlator.
func NewCorrelator(s Store, template *checklist.Template, now func() time.Time, newID func() string) *Correlator {
	return &Correlator{store: s, template: template, now: now, newID: newID}
}

// Correlate raises overdue alerts for stale incomplete items and, when
// completedKey names an item that just became completed, resolves the open
// alerts that item answers. Items completed earlier never resolve anything,
// so an external alert raised after its item was done stays open. Pass an
// empty completedKey for a raise-only pass.
//
// The only returned error is a failure to read the agent's open alerts; in
// that case nothing was written. Individual create and resolve failures are
// collected in Result.Warnings.
func (c *Correlator) Correlate(ctx context.Context, agent model.Agent, items []model.ChecklistItem, completedKey string) (Result, error) {
	open, err := c.store.ListAlerts(ctx, store.Filter{AgentID: agent.ID, Unresolved: true})
	if err != nil {
		return Result{}, fmt.Errorf("correlate alerts for %s: %w", agent.ID, err)
	}

	openByType := make(map[string][]model.Alert, len(open))
	for _, a := range open {
		openByType[a.AlertType] = append(openByType[a.AlertType], a)
	}

	now := c.now()
	res := Result{Resolved: []model.Alert{}, Raised: []model.Alert{}}

	if item, ok := findCompleted(items, completedKey); ok {
		for _, alertType := range ResolvesFor(item.ItemKey) {
			for _, a := range openByType[alertType] {
				resolved, err := c.store.ResolveAlert(ctx, a.ID, now)
				if err != nil {
					slog.Warn("alert resolve failed",
						"agent_id", agent.ID,
						"alert_id", a.ID,
						"alert_type", a.AlertType,
						"error", err,
					)
					res.Warnings = append(res.Warnings, fmt.Errorf("resolve alert %s: %w", a.ID, err))
					continue
				}
				slog.Info("alert resolved",
					"agent_id", agent.ID,
					"alert_type", a.AlertType,
					"item_key", item.ItemKey,
				)
				res.Resolved = append(res.Resolved, resolved)
			}
			delete(openByType, alertType)
		}
	}

	for _, item := range items {
		if item.IsCompleted {
			continue
		}
		days, ok := c.template.StaleAfter(item.Category)
		if !ok {
			continue
		}
		threshold := time.Duration(days) * day
		if now.Sub(agent.CreatedDate) <= threshold {
			continue
		}

		alertType := OverdueType(item.ItemKey)
		if len(openByType[alertType]) > 0 {
			continue
		}

		due := agent.CreatedDate.Add(threshold)
		created, err := c.store.CreateAlert(ctx, model.Alert{
			ID:          c.newID(),
			AgentID:     agent.ID,
			AlertType:   alertType,
			Severity:    model.SeverityWarning,
			Title:       fmt.Sprintf("%s overdue", item.ItemName),
			Message:     fmt.Sprintf("%s is still incomplete %d days after onboarding started (expected within %d).", item.ItemName, wholeDays(now.Sub(agent.CreatedDate)), days),
			DueDate:     &due,
			CreatedDate: now,
		})
		if store.IsDuplicate(err) {
			slog.Debug("overdue alert already open, skipping (idempotent)",
				"agent_id", agent.ID,
				"alert_type", alertType,
			)
			continue
		}
		if err != nil {
			slog.Warn("alert raise failed",
				"agent_id", agent.ID,
				"alert_type", alertType,
				"error", err,
			)
			res.Warnings = append(res.Warnings, fmt.Errorf("raise alert %s: %w", alertType, err))
			continue
		}
		slog.Info("alert raised",
			"agent_id", agent.ID,
			"alert_type", alertType,
		)
		openByType[alertType] = append(openByType[alertType], created)
		res.Raised = append(res.Raised, created)
	}

	return res, nil
}

// findCompleted returns the item keyed key if it is completed.
func findCompleted(items []model.ChecklistItem, key string) (model.ChecklistItem, bool) {
	if key == "" {
		return model.ChecklistItem{}, false
	}
	for _, item := range items {
		if item.ItemKey == key {
			return item, item.IsCompleted
		}
	}
	return model.ChecklistItem{}, false
}

func wholeDays(d time.Duration) int {
	return int(d / day)
}
