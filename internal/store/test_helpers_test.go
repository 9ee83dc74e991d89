package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/agentboard/internal/model"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// createTestItem creates an incomplete checklist item with minimal fields.
func createTestItem(id, agentID, key string, order int) model.ChecklistItem {
	return model.ChecklistItem{
		ID:        id,
		AgentID:   agentID,
		ItemKey:   key,
		ItemName:  key,
		Category:  model.CategoryDocuments,
		SortOrder: order,
	}
}

// createTestBadge creates a badge earned at testEpoch.
func createTestBadge(id, agentID, badgeType string, points int) model.Badge {
	return model.Badge{
		ID:         id,
		AgentID:    agentID,
		BadgeType:  badgeType,
		BadgeName:  badgeType,
		Points:     points,
		EarnedDate: testEpoch,
	}
}

// createTestAlert creates an open warning alert created at testEpoch.
func createTestAlert(id, agentID, alertType string) model.Alert {
	return model.Alert{
		ID:          id,
		AgentID:     agentID,
		AlertType:   alertType,
		Severity:    model.SeverityWarning,
		Title:       alertType,
		CreatedDate: testEpoch,
	}
}
