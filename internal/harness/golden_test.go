package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_ProgressAndPoints(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden -update
	result, err := RunWithGolden(t, loadScenario(t, "progress_and_points"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestSnapshot_EmptyResult(t *testing.T) {
	data, err := Snapshot("empty", &Result{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "empty", decoded["scenario_name"])
	assert.Equal(t, []any{}, decoded["trace"])
	assert.Equal(t, []any{}, decoded["leaderboard"])
	assert.Equal(t, byte('\n'), data[len(data)-1])
}

func TestSnapshot_OmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace, TraceEvent{Step: 0, Op: OpAdvance, At: "2026-03-02T10:00:00Z"})

	data, err := Snapshot("advance_only", result)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "awarded")
	assert.NotContains(t, string(data), "completed")
	assert.NotContains(t, string(data), "error")
}
