package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/engine"
	"github.com/roach88/agentboard/internal/fixture"
	"github.com/roach88/agentboard/internal/leaderboard"
	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/stall"
)

type response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

type env struct {
	dir string
	db  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{dir: dir, db: filepath.Join(dir, "agentboard.db")}

	// agent-1 joined an hour ago; agent-2 five days ago.
	now := time.Now().UTC()
	fixtureYAML := fmt.Sprintf(`
agents:
  - {id: agent-1, name: Dana Ortiz, onboarding_status: in_progress, created_date: %s}
  - {id: agent-2, name: Sam Lee, onboarding_status: pending, created_date: %s}
documents:
  - {id: doc-1, agent_id: agent-1, document_type: w9, created_date: %s}
appointments:
  - {id: apt-1, agent_id: agent-2, carrier_name: Humana, appointment_status: appointed}
`, now.Add(-time.Hour).Format(time.RFC3339), now.Add(-5*24*time.Hour-time.Hour).Format(time.RFC3339), now.Format(time.RFC3339))
	e.write(t, "fixture.yaml", fixtureYAML)

	_, _, err := e.run(t, "import", filepath.Join(dir, "fixture.yaml"))
	require.NoError(t, err)
	return e
}

func (e *env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the CLI against the env database in text mode.
func (e *env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--db", e.db, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// runJSON executes the CLI in JSON mode and decodes the response envelope.
func (e *env) runJSON(t *testing.T, args ...string) (response, error) {
	t.Helper()
	out, _, err := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func decode[T any](t *testing.T, resp response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func TestImport_Counts(t *testing.T) {
	e := newEnv(t)

	resp, err := e.runJSON(t, "import", filepath.Join(e.dir, "fixture.yaml"))
	require.NoError(t, err)
	counts := decode[fixture.Counts](t, resp)
	assert.Equal(t, 2, counts.Agents)
	assert.Equal(t, 1, counts.Documents)
	assert.Equal(t, 1, counts.Appointments)
}

func TestImport_MissingFile(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "import", filepath.Join(e.dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInitAndToggle(t *testing.T) {
	e := newEnv(t)

	resp, err := e.runJSON(t, "init", "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	items := decode[[]model.ChecklistItem](t, resp)
	require.Len(t, items, 10)
	assert.Equal(t, "w9_form", items[0].ItemKey)

	resp, err = e.runJSON(t, "toggle", "agent-1", "w9_form", "--actor", "coordinator")
	require.NoError(t, err)
	res := decode[engine.ToggleResult](t, resp)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Item.CompletedBy)
	assert.Equal(t, "coordinator", *res.Item.CompletedBy)
	require.Len(t, res.BadgesAwarded, 1)
	assert.Equal(t, "quick_starter", res.BadgesAwarded[0].BadgeType)

	// Toggle by record ID flips it back.
	resp, err = e.runJSON(t, "toggle", res.Item.ID)
	require.NoError(t, err)
	res = decode[engine.ToggleResult](t, resp)
	assert.False(t, res.Completed)
	assert.Nil(t, res.Item.CompletedDate)
	assert.Empty(t, res.BadgesAwarded, "badges are never revoked or re-awarded")

	resp, err = e.runJSON(t, "progress", "agent-1")
	require.NoError(t, err)
	report := decode[checklist.Report](t, resp)
	assert.Equal(t, 0, report.Overall.Percent)
	assert.Equal(t, 10, report.Overall.Total)
}

func TestInit_AlreadyInitialized(t *testing.T) {
	e := newEnv(t)

	_, err := e.runJSON(t, "init", "agent-1")
	require.NoError(t, err)

	resp, err := e.runJSON(t, "init", "agent-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeAlreadyInitialized, resp.Error.Code)
}

func TestToggle_NotFound(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"toggle", "agent-1", "no_such_item"}},
		{"unknown id", []string{"toggle", "item-does-not-exist"}},
		{"unknown agent", []string{"badges", "nobody"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.runJSON(t, tt.args...)
			require.Error(t, err)
			assert.True(t, wasReported(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeNotFound, resp.Error.Code)
		})
	}
}

func TestBadgesAndLeaderboard(t *testing.T) {
	e := newEnv(t)

	for _, agentID := range []string{"agent-1", "agent-2"} {
		_, _, err := e.run(t, "init", agentID)
		require.NoError(t, err)
	}
	_, _, err := e.run(t, "toggle", "agent-1", "w9_form")
	require.NoError(t, err)
	_, _, err = e.run(t, "refresh", "agent-2")
	require.NoError(t, err)

	resp, err := e.runJSON(t, "badges", "agent-1")
	require.NoError(t, err)
	view := decode[BadgesView](t, resp)
	assert.Equal(t, 50, view.Points)
	require.Len(t, view.Badges, 1)

	// agent-2 holds one appointment: first_carrier (125) beats 50 + 10*5.
	resp, err = e.runJSON(t, "leaderboard")
	require.NoError(t, err)
	entries := decode[[]leaderboard.Entry](t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, "agent-2", entries[0].AgentID)
	assert.Equal(t, 125, entries[0].TotalScore)
	assert.Equal(t, "agent-1", entries[1].AgentID)
	assert.Equal(t, 100, entries[1].TotalScore)

	resp, err = e.runJSON(t, "leaderboard", "--top", "1")
	require.NoError(t, err)
	assert.Len(t, decode[[]leaderboard.Entry](t, resp), 1)

	out, _, err := e.run(t, "leaderboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Sam Lee")
	assert.Contains(t, out, "Dana Ortiz")
}

func TestAlerts_RaisedAndResolved(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "init", "agent-2")
	require.NoError(t, err)

	resp, err := e.runJSON(t, "refresh", "agent-2")
	require.NoError(t, err)
	d := decode[engine.Derived](t, resp)
	require.Len(t, d.AlertsRaised, 3, "every documents item is past its 3-day threshold")
	assert.Equal(t, "overdue_w9_form", d.AlertsRaised[0].AlertType)

	resp, err = e.runJSON(t, "toggle", "agent-2", "w9_form")
	require.NoError(t, err)
	res := decode[engine.ToggleResult](t, resp)
	require.Len(t, res.AlertsResolved, 1)
	assert.Equal(t, "overdue_w9_form", res.AlertsResolved[0].AlertType)

	resp, err = e.runJSON(t, "alerts", "agent-2")
	require.NoError(t, err)
	assert.Len(t, decode[[]model.Alert](t, resp), 2)

	resp, err = e.runJSON(t, "alerts", "agent-2", "--all")
	require.NoError(t, err)
	assert.Len(t, decode[[]model.Alert](t, resp), 3)

	out, _, err := e.run(t, "alerts", "agent-2")
	require.NoError(t, err)
	assert.Contains(t, out, "overdue_direct_deposit")
	assert.NotContains(t, out, "overdue_w9_form")
}

func TestStall_ConfigThreshold(t *testing.T) {
	e := newEnv(t)
	cfgPath := e.write(t, "agentboard.yaml", "stall_threshold_days: 3\n")

	_, _, err := e.run(t, "init", "agent-2")
	require.NoError(t, err)

	resp, err := e.runJSON(t, "--config", cfgPath, "stall", "agent-2")
	require.NoError(t, err)
	res := decode[engine.StallResult](t, resp)
	assert.True(t, res.Report.Stalled)
	assert.Equal(t, 3, res.Report.ThresholdDays)
	assert.Equal(t, 5, res.Report.DaysSinceProgress)

	resp, err = e.runJSON(t, "stall", "agent-2")
	require.NoError(t, err)
	report := decode[engine.StallResult](t, resp).Report
	assert.False(t, report.Stalled)
	assert.Equal(t, stall.DefaultThresholdDays, report.ThresholdDays)

	out, _, err := e.run(t, "--config", cfgPath, "stall", "agent-2")
	require.NoError(t, err)
	assert.Contains(t, out, "stalled: no progress for 5 days")
}

func TestChecklist_Text(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "init", "agent-1")
	require.NoError(t, err)
	_, _, err = e.run(t, "toggle", "agent-1", "w9_form", "--actor", "ops")
	require.NoError(t, err)

	out, _, err := e.run(t, "checklist", "agent-1")
	require.NoError(t, err)
	assert.Contains(t, out, "agent-1 1/10 complete")
	assert.Contains(t, out, "Documents")
	assert.Contains(t, out, "Certifications")
	assert.Contains(t, out, "✓ W-9 Form")
	assert.Contains(t, out, "by ops")

	out, _, err = e.run(t, "progress", "agent-1")
	require.NoError(t, err)
	assert.Contains(t, out, " 10% (1/10)")
	assert.Contains(t, out, "Documents")
}

func TestCustomTemplate(t *testing.T) {
	e := newEnv(t)
	tmplPath := e.write(t, "checklist.yaml", `
items:
  - {key: w9_form, name: W-9, category: documents, order: 1}
  - {key: product_training, name: Products, category: training, order: 2}
`)

	resp, err := e.runJSON(t, "--template", tmplPath, "init", "agent-1")
	require.NoError(t, err)
	assert.Len(t, decode[[]model.ChecklistItem](t, resp), 2)

	bad := e.write(t, "bad.yaml", "items: []\n")
	_, _, err = e.run(t, "--template", bad, "init", "agent-2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load checklist template")
}

func TestBadConfig(t *testing.T) {
	e := newEnv(t)
	cfgPath := e.write(t, "agentboard.yaml", "stall_days: 3\n")

	_, _, err := e.run(t, "--config", cfgPath, "leaderboard")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
