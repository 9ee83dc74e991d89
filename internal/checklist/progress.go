package checklist

import (
	"math"
	"time"

	"github.com/roach88/agentboard/internal/model"
)

// Progress counts completed items against the total.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// CategoryProgress is Progress for one category.
type CategoryProgress struct {
	Category model.Category `json:"category"`
	Progress
}

// Report is overall progress plus a per-category breakdown.
type Report struct {
	Overall    Progress           `json:"overall"`
	Categories []CategoryProgress `json:"categories"`
}

// ComputeProgress returns completed/total with Percent = round(completed/total*100).
// Percent is 0 for an empty checklist.
func ComputeProgress(items []model.ChecklistItem) Progress {
	p := Progress{Total: len(items)}
	for _, item := range items {
		if item.IsCompleted {
			p.Completed++
		}
	}
	p.Percent = percent(p.Completed, p.Total)
	return p
}

// Summarize computes overall progress and per-category progress. Categories
// appear in model.Categories order; categories with no items are omitted.
func Summarize(items []model.ChecklistItem) Report {
	grouped := make(map[model.Category][]model.ChecklistItem)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	report := Report{
		Overall:    ComputeProgress(items),
		Categories: []CategoryProgress{},
	}
	for _, c := range model.Categories {
		if group, ok := grouped[c]; ok {
			report.Categories = append(report.Categories, CategoryProgress{Category: c, Progress: ComputeProgress(group)})
		}
	}
	return report
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// AllCompleted reports whether items is non-empty and every item is completed.
func AllCompleted(items []model.ChecklistItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsCompleted {
			return false
		}
	}
	return true
}

// FirstCompletion returns the earliest completed_date among completed items.
func FirstCompletion(items []model.ChecklistItem) (time.Time, bool) {
	var first time.Time
	found := false
	for _, item := range items {
		if !item.IsCompleted || item.CompletedDate == nil {
			continue
		}
		if !found || item.CompletedDate.Before(first) {
			first = *item.CompletedDate
			found = true
		}
	}
	return first, found
}

// LastCompletion returns the latest completed_date among completed items.
func LastCompletion(items []model.ChecklistItem) (time.Time, bool) {
	var last time.Time
	found := false
	for _, item := range items {
		if !item.IsCompleted || item.CompletedDate == nil {
			continue
		}
		if !found || item.CompletedDate.After(last) {
			last = *item.CompletedDate
			found = true
		}
	}
	return last, found
}
