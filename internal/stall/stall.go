// Package stall flags agents whose onboarding has stopped moving.
//
// An agent is stalled when no checklist item was completed for
// ThresholdDays (counting from signup when nothing is completed yet) and the
// checklist is not finished. Reports are computed on demand and never stored.
package stall

import (
	"context"
	"time"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/model"
)

// DefaultThresholdDays is the idle period after which an agent is stalled.
const DefaultThresholdDays = 7

const day = 24 * time.Hour

// Report describes one agent's momentum at a point in time.
type Report struct {
	AgentID           string    `json:"agent_id"`
	Stalled           bool      `json:"stalled"`
	DaysSinceProgress int       `json:"days_since_progress"`
	DaysSinceStart    int       `json:"days_since_start"`
	ProgressPercent   int       `json:"progress_percent"`
	LastProgressAt    time.Time `json:"last_progress_at"`
	ThresholdDays     int       `json:"threshold_days"`
}

// Analysis is free-form guidance produced by an Analyzer for a stalled agent.
type Analysis struct {
	Reasons []string `json:"reasons"`
	Actions []string `json:"actions"`
}

// Analyzer explains a report. Implementations live outside this module
// (typically a language model behind a service call).
type Analyzer interface {
	Analyze(ctx context.Context, snap model.Snapshot, report Report) (Analysis, error)
}

// Detector computes stall reports.
type Detector struct {
	thresholdDays int
}

// NewDetector creates a Detector. A non-positive threshold uses
// DefaultThresholdDays.
func NewDetector(thresholdDays int) *Detector {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	return &Detector{thresholdDays: thresholdDays}
}

// ThresholdDays returns the configured idle threshold.
func (d *Detector) ThresholdDays() int {
	return d.thresholdDays
}

// Detect builds the report for agent at now.
func (d *Detector) Detect(agent model.Agent, items []model.ChecklistItem, now time.Time) Report {
	last, ok := checklist.LastCompletion(items)
	if !ok {
		last = agent.CreatedDate
	}

	progress := checklist.ComputeProgress(items)
	r := Report{
		AgentID:           agent.ID,
		DaysSinceProgress: wholeDays(now.Sub(last)),
		DaysSinceStart:    wholeDays(now.Sub(agent.CreatedDate)),
		ProgressPercent:   progress.Percent,
		LastProgressAt:    last,
		ThresholdDays:     d.thresholdDays,
	}
	r.Stalled = r.DaysSinceProgress >= d.thresholdDays && r.ProgressPercent < 100
	return r
}

// wholeDays truncates d to whole days, clamping negative spans to zero.
func wholeDays(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / day)
}
