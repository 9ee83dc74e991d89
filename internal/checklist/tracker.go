package checklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/store"
)

// ErrAlreadyInitialized is returned when an agent's checklist already exists.
var ErrAlreadyInitialized = errors.New("checklist already initialized")

// Store is the slice of the record store the tracker writes to.
type Store interface {
	CountChecklistItems(ctx context.Context, agentID string) (int, error)
	BulkCreateChecklistItems(ctx context.Context, items []model.ChecklistItem) ([]model.ChecklistItem, error)
}

// Tracker owns per-agent checklist creation.
type Tracker struct {
	store    Store
	template *Template
	newID    func() string
}

// NewTracker creates a Tracker that stamps items from template using newID
// for record IDs.
func NewTracker(s Store, template *Template, newID func() string) *Tracker {
	return &Tracker{store: s, template: template, newID: newID}
}

// Template returns the template the tracker initializes from.
func (t *Tracker) Template() *Template {
	return t.template
}

// Initialize bulk-creates the template checklist for agentID.
//
// Returns ErrAlreadyInitialized if the agent has any checklist items, including
// when a concurrent Initialize wins the race and the store rejects the insert.
func (t *Tracker) Initialize(ctx context.Context, agentID string) ([]model.ChecklistItem, error) {
	n, err := t.store.CountChecklistItems(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("initialize checklist: %w", err)
	}
	if n > 0 {
		return nil, fmt.Errorf("initialize checklist for %s: %w", agentID, ErrAlreadyInitialized)
	}

	created, err := t.store.BulkCreateChecklistItems(ctx, NewItems(agentID, t.template, t.newID))
	if store.IsDuplicate(err) {
		return nil, fmt.Errorf("initialize checklist for %s: %w", agentID, ErrAlreadyInitialized)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize checklist: %w", err)
	}
	return created, nil
}

// NewItems builds incomplete checklist items for agentID in template order.
func NewItems(agentID string, template *Template, newID func() string) []model.ChecklistItem {
	items := make([]model.ChecklistItem, len(template.Items))
	for i, ti := range template.Items {
		items[i] = model.ChecklistItem{
			ID:        newID(),
			AgentID:   agentID,
			ItemKey:   ti.Key,
			ItemName:  ti.Name,
			Category:  ti.Category,
			SortOrder: ti.Order,
		}
	}
	return items
}

// Toggle flips item's completion state and reports whether the item is now
// completed. Completing stamps CompletedDate and CompletedBy with now and
// actor; un-completing clears both, so toggling twice restores the original
// record exactly.
func Toggle(item model.ChecklistItem, actor string, now time.Time) (model.ChecklistItem, bool) {
	if item.IsCompleted {
		item.IsCompleted = false
		item.CompletedDate = nil
		item.CompletedBy = nil
		return item, false
	}

	at := now
	by := actor
	item.IsCompleted = true
	item.CompletedDate = &at
	item.CompletedBy = &by
	return item, true
}
