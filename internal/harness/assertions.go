package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/agentboard/internal/engine"
	"github.com/roach88/agentboard/internal/leaderboard"
)

// EvaluateExpectations checks scenario expectations against final state.
// Returns a list of error messages (empty if all pass).
func EvaluateExpectations(ctx context.Context, eng *engine.Engine, scenario *Scenario, entries []leaderboard.Entry) []string {
	var errors []string

	for i, exp := range scenario.Expect {
		for _, msg := range evaluateAgent(ctx, eng, exp, entries) {
			errors = append(errors, fmt.Sprintf("expect[%d] (%s): %s", i, exp.Agent, msg))
		}
	}

	if scenario.Leaderboard != nil {
		got := make([]string, len(entries))
		for i, e := range entries {
			got[i] = e.AgentID
		}
		if !slices.Equal(scenario.Leaderboard, got) {
			errors = append(errors, fmt.Sprintf("leaderboard: expected order %v, got %v", scenario.Leaderboard, got))
		}
	}
	return errors
}

func evaluateAgent(ctx context.Context, eng *engine.Engine, exp Expectation, entries []leaderboard.Entry) []string {
	var errors []string

	if exp.Badges != nil {
		badges, err := eng.Badges(ctx, exp.Agent)
		if err != nil {
			return []string{fmt.Sprintf("failed to list badges: %v", err)}
		}
		got := make([]string, len(badges))
		for i, b := range badges {
			got[i] = b.BadgeType
		}
		if !sameSet(exp.Badges, got) {
			errors = append(errors, fmt.Sprintf("badges: expected %v, got %v", sorted(exp.Badges), sorted(got)))
		}
	}

	if exp.Points != nil {
		points, err := eng.Points(ctx, exp.Agent)
		if err != nil {
			return append(errors, fmt.Sprintf("failed to sum points: %v", err))
		}
		if points != *exp.Points {
			errors = append(errors, fmt.Sprintf("points: expected %d, got %d", *exp.Points, points))
		}
	}

	if exp.Progress != nil {
		report, err := eng.Progress(ctx, exp.Agent)
		if err != nil {
			return append(errors, fmt.Sprintf("failed to compute progress: %v", err))
		}
		if report.Overall.Percent != *exp.Progress {
			errors = append(errors, fmt.Sprintf("progress: expected %d%%, got %d%%", *exp.Progress, report.Overall.Percent))
		}
	}

	if exp.OpenAlerts != nil {
		alerts, err := eng.Alerts(ctx, exp.Agent, true)
		if err != nil {
			return append(errors, fmt.Sprintf("failed to list alerts: %v", err))
		}
		got := make([]string, len(alerts))
		for i, a := range alerts {
			got[i] = a.AlertType
		}
		if !sameSet(exp.OpenAlerts, got) {
			errors = append(errors, fmt.Sprintf("open_alerts: expected %v, got %v", sorted(exp.OpenAlerts), sorted(got)))
		}
	}

	if exp.Stalled != nil {
		res, err := eng.CheckStall(ctx, exp.Agent)
		if err != nil {
			return append(errors, fmt.Sprintf("failed to check stall: %v", err))
		}
		if res.Report.Stalled != *exp.Stalled {
			errors = append(errors, fmt.Sprintf("stalled: expected %t, got %t (%d days since progress)",
				*exp.Stalled, res.Report.Stalled, res.Report.DaysSinceProgress))
		}
	}

	if exp.Rank != nil {
		if rank := leaderboard.RankOf(exp.Agent, entries); rank != *exp.Rank {
			errors = append(errors, fmt.Sprintf("rank: expected %d, got %d", *exp.Rank, rank))
		}
	}

	return errors
}

func sorted(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

func sameSet(want, got []string) bool {
	return slices.Equal(sorted(want), sorted(got))
}
