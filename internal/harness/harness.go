package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/agentboard/internal/engine"
	"github.com/roach88/agentboard/internal/fixture"
	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/store"
	"github.com/roach88/agentboard/internal/testutil"
)

// defaultActor stamps completed_by for toggle steps without an actor.
const defaultActor = "scenario"

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and record IDs.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.FixedClock
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Apply fixtures
// 3. Execute steps, recording one trace event per step
// 4. Build the final leaderboard and evaluate expectations
//
// The returned error covers infrastructure failures only; scenario failures
// are reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewFixedClock(scenario.Start)
	h := &Harness{
		clock: clock,
		engine: engine.New(st,
			engine.WithClock(clock),
			engine.WithIDGenerator(testutil.NewSequentialIDs("rec")),
			engine.WithStallThreshold(scenario.StallThresholdDays),
		),
	}

	ctx := context.Background()
	if _, err := fixture.Apply(ctx, st, &scenario.Fixtures); err != nil {
		return nil, fmt.Errorf("failed to apply fixtures: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		ev := h.executeStep(ctx, i, step)
		result.Trace = append(result.Trace, ev)

		switch {
		case step.ExpectError != "" && ev.Error == "":
			result.AddError(fmt.Sprintf("steps[%d]: expected error containing %q, got success", i, step.ExpectError))
		case step.ExpectError != "" && !strings.Contains(ev.Error, step.ExpectError):
			result.AddError(fmt.Sprintf("steps[%d]: expected error containing %q, got %q", i, step.ExpectError, ev.Error))
		case step.ExpectError == "" && ev.Error != "":
			result.AddError(fmt.Sprintf("steps[%d]: %s failed: %s", i, ev.Op, ev.Error))
		}
	}

	entries, err := h.engine.Leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	result.Leaderboard = entries

	for _, msg := range EvaluateExpectations(ctx, h.engine, scenario, entries) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step and describes it as a trace event.
func (h *Harness) executeStep(ctx context.Context, index int, step Step) TraceEvent {
	ev := TraceEvent{Step: index, Op: step.op()}

	switch ev.Op {
	case OpAdvance:
		// Validated at load time.
		d, _ := time.ParseDuration(step.Advance)
		h.clock.Advance(d)

	case OpInit:
		ev.Agent = step.Init
		if _, err := h.engine.InitializeAgent(ctx, step.Init); err != nil {
			ev.Error = err.Error()
		}

	case OpToggle:
		ev.Agent = step.Toggle.Agent
		ev.Item = step.Toggle.Item
		actor := step.Toggle.Actor
		if actor == "" {
			actor = defaultActor
		}
		res, err := h.engine.ToggleItemByKey(ctx, step.Toggle.Agent, step.Toggle.Item, actor)
		if err != nil {
			ev.Error = err.Error()
			break
		}
		completed := res.Completed
		ev.Completed = &completed
		recordDerived(&ev, res.Derived)

	case OpRefresh:
		ev.Agent = step.Refresh
		d, err := h.engine.Refresh(ctx, step.Refresh)
		if err != nil {
			ev.Error = err.Error()
			break
		}
		recordDerived(&ev, d)
	}

	ev.At = h.clock.Now().Format(time.RFC3339)
	return ev
}

func recordDerived(ev *TraceEvent, d engine.Derived) {
	ev.Awarded = badgeTypes(d.BadgesAwarded)
	ev.Resolved = alertTypes(d.AlertsResolved)
	ev.Raised = alertTypes(d.AlertsRaised)
	if len(d.Warnings) > 0 {
		ev.Warnings = d.Warnings
	}
}

func badgeTypes(badges []model.Badge) []string {
	if len(badges) == 0 {
		return nil
	}
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.BadgeType
	}
	return out
}

func alertTypes(alerts []model.Alert) []string {
	if len(alerts) == 0 {
		return nil
	}
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.AlertType
	}
	return out
}
