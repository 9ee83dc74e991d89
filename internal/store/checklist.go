package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/agentboard/internal/model"
)

var checklistSortColumns = map[string]bool{
	"id": true, "agent_id": true, "item_key": true, "category": true,
	"sort_order": true, "is_completed": true, "completed_date": true,
}

const checklistColumns = `id, agent_id, item_key, item_name, category, sort_order, is_completed, completed_date, completed_by`

// ListChecklistItems returns checklist items matching f.
// Default order is sort_order ascending. Returns an empty slice (not nil)
// when nothing matches.
func (s *Store) ListChecklistItems(ctx context.Context, f Filter) ([]model.ChecklistItem, error) {
	order, err := orderBy(f.Sort, checklistSortColumns, "sort_order")
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}

	conds, args := agentCond(f)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+checklistColumns+" FROM checklist_items"+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list checklist items", err)
	}
	defer rows.Close()

	items := []model.ChecklistItem{}
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list checklist items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate checklist items", err)
	}

	return items, nil
}

// GetChecklistItem retrieves a single checklist item by ID.
// Returns ErrNotFound if no such item exists.
func (s *Store) GetChecklistItem(ctx context.Context, id string) (model.ChecklistItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+checklistColumns+" FROM checklist_items WHERE id = ?", id)

	item, err := scanChecklistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChecklistItem{}, fmt.Errorf("get checklist item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.ChecklistItem{}, unavailable("get checklist item", err)
	}
	return item, nil
}

// GetChecklistItemByKey retrieves the item for (agentID, itemKey).
// Returns ErrNotFound if the agent has no such item.
func (s *Store) GetChecklistItemByKey(ctx context.Context, agentID, itemKey string) (model.ChecklistItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+checklistColumns+" FROM checklist_items WHERE agent_id = ? AND item_key = ?",
		agentID, itemKey)

	item, err := scanChecklistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChecklistItem{}, fmt.Errorf("get checklist item %s/%s: %w", agentID, itemKey, ErrNotFound)
	}
	if err != nil {
		return model.ChecklistItem{}, unavailable("get checklist item", err)
	}
	return item, nil
}

// CountChecklistItems returns how many checklist items exist for agentID.
func (s *Store) CountChecklistItems(ctx context.Context, agentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM checklist_items WHERE agent_id = ?", agentID).Scan(&n)
	if err != nil {
		return 0, unavailable("count checklist items", err)
	}
	return n, nil
}

// BulkCreateChecklistItems inserts items in a single transaction.
// Either every item is written or none is. A (agent_id, item_key) collision
// returns ErrDuplicate.
func (s *Store) BulkCreateChecklistItems(ctx context.Context, items []model.ChecklistItem) ([]model.ChecklistItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("bulk create checklist items: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO checklist_items (`+checklistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, unavailable("bulk create checklist items: prepare", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx,
			item.ID,
			item.AgentID,
			item.ItemKey,
			item.ItemName,
			string(item.Category),
			item.SortOrder,
			boolInt(item.IsCompleted),
			formatNullTime(item.CompletedDate),
			nullString(item.CompletedBy),
		)
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("bulk create checklist items: %s/%s: %w", item.AgentID, item.ItemKey, ErrDuplicate)
		}
		if err != nil {
			return nil, unavailable("bulk create checklist items: insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("bulk create checklist items: commit", err)
	}

	created := make([]model.ChecklistItem, len(items))
	copy(created, items)
	return created, nil
}

// UpdateChecklistItem writes the completion fields of item and returns the
// stored record. The write only applies while the stored is_completed still
// equals wasCompleted, so two toggles racing on the same item cannot both
// win. Returns ErrNotFound if the item does not exist and ErrConflict if
// another writer changed it first.
func (s *Store) UpdateChecklistItem(ctx context.Context, item model.ChecklistItem, wasCompleted bool) (model.ChecklistItem, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE checklist_items
		SET is_completed = ?, completed_date = ?, completed_by = ?
		WHERE id = ? AND is_completed = ?
	`,
		boolInt(item.IsCompleted),
		formatNullTime(item.CompletedDate),
		nullString(item.CompletedBy),
		item.ID,
		boolInt(wasCompleted),
	)
	if err != nil {
		return model.ChecklistItem{}, unavailable("update checklist item", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return model.ChecklistItem{}, unavailable("update checklist item: rows affected", err)
	}
	if n == 0 {
		// Either the row is gone or its state moved on.
		if _, err := s.GetChecklistItem(ctx, item.ID); err != nil {
			return model.ChecklistItem{}, fmt.Errorf("update checklist item %s: %w", item.ID, err)
		}
		return model.ChecklistItem{}, fmt.Errorf("update checklist item %s: %w", item.ID, ErrConflict)
	}

	return s.GetChecklistItem(ctx, item.ID)
}

func scanChecklistItem(sc scanner) (model.ChecklistItem, error) {
	var item model.ChecklistItem
	var category string
	var completedDate, completedBy sql.NullString

	if err := sc.Scan(
		&item.ID, &item.AgentID, &item.ItemKey, &item.ItemName, &category,
		&item.SortOrder, &item.IsCompleted, &completedDate, &completedBy,
	); err != nil {
		return model.ChecklistItem{}, err
	}

	item.Category = model.Category(category)
	item.CompletedBy = stringPtr(completedBy)

	t, err := parseNullTime(completedDate)
	if err != nil {
		return model.ChecklistItem{}, fmt.Errorf("scan checklist item: %w", err)
	}
	item.CompletedDate = t

	return item, nil
}
