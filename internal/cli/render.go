package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/agentboard/internal/model"
)

var (
	success   = color.New(color.FgGreen).SprintFunc()
	failure   = color.New(color.FgRed, color.Bold).SprintFunc()
	warning   = color.New(color.FgYellow).SprintFunc()
	highlight = color.New(color.FgCyan, color.Bold).SprintFunc()
	muted     = color.New(color.Faint).SprintFunc()

	titleCase = cases.Title(language.English)
)

const (
	markDone = "✓"
	markOpen = "○"
	markFail = "✗"
)

// categoryLabel renders a category for text output, e.g. "Certifications".
func categoryLabel(c model.Category) string {
	return titleCase.String(string(c))
}

// badgeLabel renders a badge type as words, e.g. "Quick Starter".
func badgeLabel(badgeType string) string {
	return titleCase.String(strings.ReplaceAll(badgeType, "_", " "))
}

// progressBar renders percent as a fixed-width bar.
func progressBar(percent int) string {
	const width = 20
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func severityLabel(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return failure(string(s))
	case model.SeverityWarning:
		return warning(string(s))
	default:
		return muted(string(s))
	}
}

func writeItem(w io.Writer, item model.ChecklistItem) {
	mark := muted(markOpen)
	suffix := ""
	if item.IsCompleted {
		mark = success(markDone)
		if item.CompletedDate != nil {
			suffix = muted(" " + item.CompletedDate.Format("2006-01-02"))
		}
		if item.CompletedBy != nil && *item.CompletedBy != "" {
			suffix += muted(" by " + *item.CompletedBy)
		}
	}
	fmt.Fprintf(w, "  %s %-28s %s%s\n", mark, item.ItemName, muted(item.ItemKey), suffix)
}

func writeWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "  %s %s\n", warning("warning:"), msg)
	}
}
