package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/agentboard/internal/model"
)

var alertSortColumns = map[string]bool{
	"id": true, "agent_id": true, "alert_type": true, "severity": true,
	"is_resolved": true, "resolved_date": true, "due_date": true, "created_date": true,
}

const alertColumns = `id, agent_id, alert_type, severity, title, message, is_resolved, resolved_date, due_date, created_date`

// ListAlerts returns alerts matching f. Default order is created_date ascending.
func (s *Store) ListAlerts(ctx context.Context, f Filter) ([]model.Alert, error) {
	order, err := orderBy(f.Sort, alertSortColumns, "created_date")
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	conds, args := agentCond(f)
	if f.Unresolved {
		conds = append(conds, "is_resolved = 0")
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+alertColumns+" FROM alerts"+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list alerts", err)
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate alerts", err)
	}

	return alerts, nil
}

// GetAlert retrieves a single alert by ID. Returns ErrNotFound if absent.
func (s *Store) GetAlert(ctx context.Context, id string) (model.Alert, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+alertColumns+" FROM alerts WHERE id = ?", id)

	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Alert{}, fmt.Errorf("get alert %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Alert{}, unavailable("get alert", err)
	}
	return a, nil
}

// CreateAlert inserts an alert.
// Uses ON CONFLICT DO NOTHING: while an unresolved alert of the same
// (agent_id, alert_type) exists, the insert is ignored and ErrDuplicate is
// returned. Resolved alerts never block a new one.
func (s *Store) CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		a.ID,
		a.AgentID,
		a.AlertType,
		string(a.Severity),
		a.Title,
		a.Message,
		boolInt(a.IsResolved),
		formatNullTime(a.ResolvedDate),
		formatNullTime(a.DueDate),
		formatTime(a.CreatedDate),
	)
	if err != nil {
		return model.Alert{}, unavailable("create alert", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return model.Alert{}, unavailable("create alert: rows affected", err)
	}
	if n == 0 {
		return model.Alert{}, fmt.Errorf("create alert %s/%s: %w", a.AgentID, a.AlertType, ErrDuplicate)
	}

	return a, nil
}

// ResolveAlert marks an open alert resolved at the given time and returns the
// stored record. Resolving an already-resolved alert is a no-op that returns
// the record unchanged (its original resolved_date is kept).
func (s *Store) ResolveAlert(ctx context.Context, id string, at time.Time) (model.Alert, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE alerts
		SET is_resolved = 1, resolved_date = ?
		WHERE id = ? AND is_resolved = 0
	`, formatTime(at), id)
	if err != nil {
		return model.Alert{}, unavailable("resolve alert", err)
	}

	return s.GetAlert(ctx, id)
}

func scanAlert(sc scanner) (model.Alert, error) {
	var a model.Alert
	var severity, created string
	var resolved, due sql.NullString

	if err := sc.Scan(
		&a.ID, &a.AgentID, &a.AlertType, &severity, &a.Title, &a.Message,
		&a.IsResolved, &resolved, &due, &created,
	); err != nil {
		return model.Alert{}, err
	}
	a.Severity = model.Severity(severity)

	var err error
	if a.ResolvedDate, err = parseNullTime(resolved); err != nil {
		return model.Alert{}, fmt.Errorf("scan alert: %w", err)
	}
	if a.DueDate, err = parseNullTime(due); err != nil {
		return model.Alert{}, fmt.Errorf("scan alert: %w", err)
	}
	if a.CreatedDate, err = parseTime(created); err != nil {
		return model.Alert{}, fmt.Errorf("scan alert: %w", err)
	}

	return a, nil
}
