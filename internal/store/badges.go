package store

import (
	"context"
	"fmt"

	"github.com/roach88/agentboard/internal/model"
)

var badgeSortColumns = map[string]bool{
	"id": true, "agent_id": true, "badge_type": true, "points": true, "earned_date": true,
}

const badgeColumns = `id, agent_id, badge_type, badge_name, badge_description, points, earned_date`

// ListBadges returns badges matching f. Default order is earned_date ascending.
func (s *Store) ListBadges(ctx context.Context, f Filter) ([]model.Badge, error) {
	order, err := orderBy(f.Sort, badgeSortColumns, "earned_date")
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	conds, args := agentCond(f)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+badgeColumns+" FROM badges"+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list badges", err)
	}
	defer rows.Close()

	badges := []model.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("list badges: %w", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate badges", err)
	}

	return badges, nil
}

// CreateBadge inserts a badge.
// Uses ON CONFLICT DO NOTHING: if the agent already holds this badge type the
// existing row is left untouched and ErrDuplicate is returned.
func (s *Store) CreateBadge(ctx context.Context, b model.Badge) (model.Badge, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (`+badgeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		b.ID,
		b.AgentID,
		b.BadgeType,
		b.BadgeName,
		b.BadgeDescription,
		b.Points,
		formatTime(b.EarnedDate),
	)
	if err != nil {
		return model.Badge{}, unavailable("create badge", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return model.Badge{}, unavailable("create badge: rows affected", err)
	}
	if n == 0 {
		return model.Badge{}, fmt.Errorf("create badge %s/%s: %w", b.AgentID, b.BadgeType, ErrDuplicate)
	}

	return b, nil
}

func scanBadge(sc scanner) (model.Badge, error) {
	var b model.Badge
	var earned string

	if err := sc.Scan(
		&b.ID, &b.AgentID, &b.BadgeType, &b.BadgeName, &b.BadgeDescription, &b.Points, &earned,
	); err != nil {
		return model.Badge{}, err
	}

	t, err := parseTime(earned)
	if err != nil {
		return model.Badge{}, fmt.Errorf("scan badge: %w", err)
	}
	b.EarnedDate = t

	return b, nil
}
