package stall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/testutil"
)

var joined = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func items(completedAt ...time.Time) []model.ChecklistItem {
	out := checklist.NewItems("agent-1", checklist.DefaultTemplate(), testutil.NewSequentialIDs("item").Generate)
	for i, at := range completedAt {
		out[i], _ = checklist.Toggle(out[i], "tester", at)
	}
	return out
}

func TestNewDetector_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultThresholdDays, NewDetector(0).ThresholdDays())
	assert.Equal(t, DefaultThresholdDays, NewDetector(-3).ThresholdDays())
	assert.Equal(t, 10, NewDetector(10).ThresholdDays())
}

func TestDetect(t *testing.T) {
	agent := model.Agent{ID: "agent-1", CreatedDate: joined}
	all := make([]time.Time, 10)
	for i := range all {
		all[i] = joined.Add(time.Duration(i) * time.Hour)
	}

	tests := []struct {
		name      string
		items     []model.ChecklistItem
		now       time.Time
		want      bool
		sinceProg int
		sinceJoin int
		percent   int
	}{
		{"fresh signup", items(), joined.Add(2 * 24 * time.Hour), false, 2, 2, 0},
		{"idle since signup", items(), joined.Add(7 * 24 * time.Hour), true, 7, 7, 0},
		{"just under threshold", items(), joined.Add(7*24*time.Hour - time.Second), false, 6, 6, 0},
		{"recent progress", items(joined.Add(10 * 24 * time.Hour)), joined.Add(12 * 24 * time.Hour), false, 2, 12, 10},
		{"progress went quiet", items(joined, joined.Add(24*time.Hour)), joined.Add(9 * 24 * time.Hour), true, 8, 9, 20},
		{"finished long ago", items(all...), joined.Add(60 * 24 * time.Hour), false, 59, 60, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDetector(0).Detect(agent, tt.items, tt.now)
			assert.Equal(t, tt.want, r.Stalled)
			assert.Equal(t, tt.sinceProg, r.DaysSinceProgress)
			assert.Equal(t, tt.sinceJoin, r.DaysSinceStart)
			assert.Equal(t, tt.percent, r.ProgressPercent)
			assert.Equal(t, "agent-1", r.AgentID)
			assert.Equal(t, DefaultThresholdDays, r.ThresholdDays)
		})
	}
}

func TestDetect_LastProgressAt(t *testing.T) {
	agent := model.Agent{ID: "agent-1", CreatedDate: joined}
	d := NewDetector(3)

	r := d.Detect(agent, items(), joined.Add(time.Hour))
	assert.Equal(t, joined, r.LastProgressAt, "falls back to signup")

	latest := joined.Add(50 * time.Hour)
	r = d.Detect(agent, items(joined.Add(time.Hour), latest), latest.Add(3*24*time.Hour))
	assert.Equal(t, latest, r.LastProgressAt)
	assert.True(t, r.Stalled)
}

func TestDetect_ClockBeforeSignup(t *testing.T) {
	r := NewDetector(0).Detect(model.Agent{CreatedDate: joined}, items(), joined.Add(-time.Hour))
	assert.Equal(t, 0, r.DaysSinceStart)
	assert.False(t, r.Stalled)
}
