package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: first_item
description: "Completing a first item on day one earns quick_starter"
start: 2026-03-02T09:00:00Z
fixtures:
  agents:
    - {id: a1, name: Ann, onboarding_status: in_progress, created_date: 2026-03-02T09:00:00Z}
steps:
  - init: a1
  - toggle: {agent: a1, item: w9_form}
expect:
  - agent: a1
    badges: [quick_starter]
    points: 50
    progress: 10
`

const failingScenario = `
name: wrong_points
description: "Expects points the agent never earns"
start: 2026-03-02T09:00:00Z
fixtures:
  agents:
    - {id: a1, name: Ann, onboarding_status: in_progress, created_date: 2026-03-02T09:00:00Z}
steps:
  - init: a1
expect:
  - agent: a1
    points: 500
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runTestCommand(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--no-color", "test"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := runTestCommand("/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario path not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := runTestCommand(t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandPassing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "first_item.yaml", passingScenario)

	out, err := runTestCommand(dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ first_item")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "first_item.yaml", passingScenario)
	writeScenario(t, dir, "wrong_points.yaml", failingScenario)

	out, err := runTestCommand(dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, wasReported(err))
	assert.Contains(t, out, "✗ wrong_points")
	assert.Contains(t, out, "points: expected 500, got 0")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "first_item.yaml", passingScenario)
	writeScenario(t, dir, "wrong_points.yaml", failingScenario)

	out, err := runTestCommand(dir, "--filter", "first_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "first_item.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "first_item.golden")

	_, err := runTestCommand(path, "--update")
	require.NoError(t, err)
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "first_item"`)
	assert.Contains(t, string(data), `"quick_starter"`)

	_, err = runTestCommand(path)
	require.NoError(t, err, "unchanged trace matches golden")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	out, err := runTestCommand(path)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_points.yaml", failingScenario)

	out, err := runTestCommand(dir, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "onboarding.golden"), goldenFilePath(filepath.Join("scenarios", "onboarding.yaml")))
}
