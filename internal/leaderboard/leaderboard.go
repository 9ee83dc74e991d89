// Package leaderboard scores and ranks agents.
//
// An agent's score is its badge points plus five points per progress percent.
// Ranking is total: higher score first, ties broken by ascending agent ID, so
// the same population always produces the same order.
package leaderboard

import (
	"sort"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/model"
)

// ProgressWeight is the score per progress percentage point.
const ProgressWeight = 5

// Entry is one agent's leaderboard row.
type Entry struct {
	AgentID         string `json:"agent_id"`
	AgentName       string `json:"agent_name"`
	BadgeCount      int    `json:"badge_count"`
	Points          int    `json:"points"`
	ProgressPercent int    `json:"progress_percent"`
	TotalScore      int    `json:"total_score"`
}

// Score returns badgePoints + progressPercent × ProgressWeight.
func Score(badgePoints, progressPercent int) int {
	return badgePoints + progressPercent*ProgressWeight
}

// Member is the per-agent input to Build.
type Member struct {
	Agent  model.Agent
	Badges []model.Badge
	Items  []model.ChecklistItem
}

// NewEntry scores one member.
func NewEntry(m Member) Entry {
	points := 0
	for _, b := range m.Badges {
		points += b.Points
	}
	percent := checklist.ComputeProgress(m.Items).Percent
	return Entry{
		AgentID:         m.Agent.ID,
		AgentName:       m.Agent.Name,
		BadgeCount:      len(m.Badges),
		Points:          points,
		ProgressPercent: percent,
		TotalScore:      Score(points, percent),
	}
}

// Build scores every member and returns the ranked entries.
func Build(members []Member) []Entry {
	entries := make([]Entry, len(members))
	for i, m := range members {
		entries[i] = NewEntry(m)
	}
	Rank(entries)
	return entries
}

// Rank sorts entries in place by TotalScore descending, then AgentID ascending.
func Rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].AgentID < entries[j].AgentID
	})
}

// RankOf returns agentID's 1-based position in ranked entries, or 0 when
// the agent is absent.
func RankOf(agentID string, entries []Entry) int {
	for i, e := range entries {
		if e.AgentID == agentID {
			return i + 1
		}
	}
	return 0
}

// Top returns at most n leading entries. A non-positive n returns all.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
