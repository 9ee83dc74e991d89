package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return scenario
}

func requirePass(t *testing.T, result *Result) {
	t.Helper()
	require.True(t, result.Pass, "scenario failed: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestRun_ProgressAndPoints(t *testing.T) {
	result, err := Run(loadScenario(t, "progress_and_points"))
	require.NoError(t, err)
	requirePass(t, result)

	require.Len(t, result.Trace, 7)
	assert.Equal(t, []string{"quick_starter", "document_master"}, result.Trace[1].Awarded)

	require.Len(t, result.Leaderboard, 2)
	assert.Equal(t, 450, result.Leaderboard[0].TotalScore)
}

func TestRun_SamePassCompletion(t *testing.T) {
	result, err := Run(loadScenario(t, "same_pass_completion"))
	require.NoError(t, err)
	requirePass(t, result)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, "product_training", last.Item)
	assert.ElementsMatch(t, []string{"speed_demon", "onboarding_complete"}, last.Awarded)
	assert.Equal(t, "2026-03-07T09:00:00Z", last.At)
}

func TestRun_StalledWithoutCarriers(t *testing.T) {
	result, err := Run(loadScenario(t, "stalled_without_carriers"))
	require.NoError(t, err)
	requirePass(t, result)

	byStep := result.Trace
	require.Len(t, byStep, 10)

	assert.Contains(t, byStep[1].Error, "ALREADY_INITIALIZED")
	assert.Contains(t, byStep[3].Error, "ITEM_NOT_FOUND")

	assert.Equal(t, []string{"overdue_direct_deposit", "overdue_eo_certificate"}, byStep[5].Raised)
	assert.Empty(t, byStep[6].Raised, "second refresh raises nothing")
	assert.Equal(t, []string{"overdue_direct_deposit"}, byStep[7].Resolved)
	assert.Equal(t, []string{"license_expiring"}, byStep[8].Resolved)

	for _, ev := range byStep {
		assert.NotContains(t, ev.Awarded, "first_carrier")
		assert.NotContains(t, ev.Awarded, "multi_carrier")
	}
}

func TestRun_FailedExpectationsAreReported(t *testing.T) {
	points := 999
	stalled := true
	rank := 3
	scenario := loadScenario(t, "progress_and_points")
	scenario.Expect = []Expectation{{
		Agent:      "alice",
		Badges:     []string{"quick_starter"},
		Points:     &points,
		OpenAlerts: []string{"overdue_w9_form"},
		Stalled:    &stalled,
		Rank:       &rank,
	}}
	scenario.Leaderboard = []string{"erin", "alice"}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "badges:")
	assert.Contains(t, result.Errors[1], "points: expected 999, got 150")
	assert.Contains(t, result.Errors[2], "open_alerts:")
	assert.Contains(t, result.Errors[3], "stalled: expected true, got false")
	assert.Contains(t, result.Errors[4], "rank: expected 3, got 1")
	assert.Contains(t, result.Errors[5], "leaderboard: expected order")
}

func TestRun_UnexpectedStepError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_agent",
		Description: "Initialize an agent that is not in the fixtures",
		Start:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Steps:       []Step{{Init: "ghost"}, {Refresh: "ghost", ExpectError: "AGENT_NOT_FOUND"}, {Init: "ghost", ExpectError: "ALREADY_INITIALIZED"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[0]: init failed: AGENT_NOT_FOUND")
	assert.Contains(t, result.Errors[1], `steps[2]: expected error containing "ALREADY_INITIALIZED"`)
	assert.Empty(t, result.Leaderboard)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_error",
		Description: "Expect an error from a step that succeeds",
		Start:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Steps:       []Step{{Advance: "1h", ExpectError: "boom"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "got success")
	assert.Equal(t, "2026-03-02T10:00:00Z", result.Trace[0].At)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(loadScenario(t, "stalled_without_carriers"))
	require.NoError(t, err)
	second, err := Run(loadScenario(t, "stalled_without_carriers"))
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Leaderboard, second.Leaderboard)
}
