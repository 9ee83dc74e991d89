package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/agentboard/internal/model"
)

var progressEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// defaultItems builds the default checklist with the first n items completed,
// one hour apart.
func defaultItems(n int) []model.ChecklistItem {
	seq := 0
	items := NewItems("agent-1", DefaultTemplate(), func() string {
		seq++
		return string(rune('a' + seq))
	})
	for i := 0; i < n; i++ {
		items[i], _ = Toggle(items[i], "tester", progressEpoch.Add(time.Duration(i)*time.Hour))
	}
	return items
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		want      Progress
	}{
		{"none", 0, Progress{Completed: 0, Total: 10, Percent: 0}},
		{"six of ten", 6, Progress{Completed: 6, Total: 10, Percent: 60}},
		{"all", 10, Progress{Completed: 10, Total: 10, Percent: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeProgress(defaultItems(tt.completed)))
		})
	}
}

func TestComputeProgress_Empty(t *testing.T) {
	assert.Equal(t, Progress{}, ComputeProgress(nil))
}

func TestComputeProgress_Rounds(t *testing.T) {
	items := []model.ChecklistItem{{IsCompleted: true}, {}, {}}
	assert.Equal(t, 33, ComputeProgress(items).Percent)

	items = []model.ChecklistItem{{IsCompleted: true}, {IsCompleted: true}, {}}
	assert.Equal(t, 67, ComputeProgress(items).Percent)
}

func TestComputeProgress_Monotonic(t *testing.T) {
	items := defaultItems(0)
	last := ComputeProgress(items).Percent
	for i := range items {
		items[i], _ = Toggle(items[i], "tester", progressEpoch)
		p := ComputeProgress(items).Percent
		assert.GreaterOrEqual(t, p, last, "completing item %d lowered progress", i)
		last = p
	}
	assert.Equal(t, 100, last)
}

func TestSummarize(t *testing.T) {
	report := Summarize(defaultItems(6))

	assert.Equal(t, 60, report.Overall.Percent)
	require.Len(t, report.Categories, 5)

	byCategory := make(map[model.Category]Progress)
	for _, c := range report.Categories {
		byCategory[c.Category] = c.Progress
	}
	assert.Equal(t, Progress{Completed: 3, Total: 3, Percent: 100}, byCategory[model.CategoryDocuments])
	assert.Equal(t, Progress{Completed: 3, Total: 3, Percent: 100}, byCategory[model.CategoryCertifications])
	assert.Equal(t, Progress{Completed: 0, Total: 1, Percent: 0}, byCategory[model.CategoryContracts])
	assert.Equal(t, Progress{Completed: 0, Total: 2, Percent: 0}, byCategory[model.CategoryCompliance])

	assert.Equal(t, model.CategoryDocuments, report.Categories[0].Category)
	assert.Equal(t, model.CategoryTraining, report.Categories[4].Category)
}

func TestSummarize_OmitsEmptyCategories(t *testing.T) {
	report := Summarize([]model.ChecklistItem{{Category: model.CategoryTraining, IsCompleted: true}})
	require.Len(t, report.Categories, 1)
	assert.Equal(t, model.CategoryTraining, report.Categories[0].Category)
	assert.Equal(t, 100, report.Categories[0].Percent)
}

func TestAllCompleted(t *testing.T) {
	assert.False(t, AllCompleted(nil), "empty checklist is never complete")
	assert.False(t, AllCompleted(defaultItems(9)))
	assert.True(t, AllCompleted(defaultItems(10)))
}

func TestFirstAndLastCompletion(t *testing.T) {
	_, ok := FirstCompletion(defaultItems(0))
	assert.False(t, ok)
	_, ok = LastCompletion(defaultItems(0))
	assert.False(t, ok)

	items := defaultItems(4)
	first, ok := FirstCompletion(items)
	require.True(t, ok)
	assert.Equal(t, progressEpoch, first)

	last, ok := LastCompletion(items)
	require.True(t, ok)
	assert.Equal(t, progressEpoch.Add(3*time.Hour), last)
}
