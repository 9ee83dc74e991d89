// Package fixture imports reference data (agents and the records the badge
// rules read) from YAML documents into the store.
//
// The onboarding core never writes these collections; fixtures stand in for
// the CRM screens and sync jobs that do.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/store"
)

// File is one fixture document.
type File struct {
	Agents       []model.Agent       `yaml:"agents"`
	Documents    []model.Document    `yaml:"documents"`
	Licenses     []model.License     `yaml:"licenses"`
	Appointments []model.Appointment `yaml:"appointments"`
	Contracts    []model.Contract    `yaml:"contracts"`
	Alerts       []Alert             `yaml:"alerts"`
}

// Alert is an externally raised alert, e.g. from a license expiry monitor.
type Alert struct {
	ID          string         `yaml:"id"`
	AgentID     string         `yaml:"agent_id"`
	AlertType   string         `yaml:"alert_type"`
	Severity    model.Severity `yaml:"severity"`
	Title       string         `yaml:"title"`
	Message     string         `yaml:"message"`
	DueDate     *time.Time     `yaml:"due_date"`
	CreatedDate time.Time      `yaml:"created_date"`
}

// Counts reports how many records Apply wrote per collection.
type Counts struct {
	Agents       int `json:"agents"`
	Documents    int `json:"documents"`
	Licenses     int `json:"licenses"`
	Appointments int `json:"appointments"`
	Contracts    int `json:"contracts"`
	Alerts       int `json:"alerts"`
}

// Writer is the slice of the record store fixtures are applied to.
type Writer interface {
	UpsertAgent(ctx context.Context, a model.Agent) error
	UpsertDocument(ctx context.Context, d model.Document) error
	UpsertLicense(ctx context.Context, l model.License) error
	UpsertAppointment(ctx context.Context, a model.Appointment) error
	UpsertContract(ctx context.Context, c model.Contract) error
	CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error)
}

// Load reads and validates a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates fixture YAML. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks required fields and that every record references an
// agent declared in the same file.
func (f *File) Validate() error {
	agents := make(map[string]bool, len(f.Agents))
	for i, a := range f.Agents {
		if a.ID == "" {
			return fmt.Errorf("agents[%d]: id is required", i)
		}
		if agents[a.ID] {
			return fmt.Errorf("agents[%d]: duplicate id %q", i, a.ID)
		}
		if a.CreatedDate.IsZero() {
			return fmt.Errorf("agent %q: created_date is required", a.ID)
		}
		agents[a.ID] = true
	}

	check := func(kind string, i int, id, agentID string) error {
		if id == "" {
			return fmt.Errorf("%s[%d]: id is required", kind, i)
		}
		if !agents[agentID] {
			return fmt.Errorf("%s[%d]: unknown agent %q", kind, i, agentID)
		}
		return nil
	}
	for i, d := range f.Documents {
		if err := check("documents", i, d.ID, d.AgentID); err != nil {
			return err
		}
	}
	for i, l := range f.Licenses {
		if err := check("licenses", i, l.ID, l.AgentID); err != nil {
			return err
		}
	}
	for i, a := range f.Appointments {
		if err := check("appointments", i, a.ID, a.AgentID); err != nil {
			return err
		}
	}
	for i, c := range f.Contracts {
		if err := check("contracts", i, c.ID, c.AgentID); err != nil {
			return err
		}
	}
	for i, a := range f.Alerts {
		if err := check("alerts", i, a.ID, a.AgentID); err != nil {
			return err
		}
		if a.AlertType == "" {
			return fmt.Errorf("alerts[%d]: alert_type is required", i)
		}
		switch a.Severity {
		case model.SeverityCritical, model.SeverityWarning, model.SeverityInfo:
		default:
			return fmt.Errorf("alerts[%d]: unknown severity %q", i, a.Severity)
		}
	}
	return nil
}

// Apply writes f to w. Reference records are upserted, so applying the same
// file twice is harmless; an alert whose type is already open for the agent
// is skipped.
func Apply(ctx context.Context, w Writer, f *File) (Counts, error) {
	var c Counts

	for _, a := range f.Agents {
		if err := w.UpsertAgent(ctx, a); err != nil {
			return c, fmt.Errorf("import agent %s: %w", a.ID, err)
		}
		c.Agents++
	}
	for _, d := range f.Documents {
		if err := w.UpsertDocument(ctx, d); err != nil {
			return c, fmt.Errorf("import document %s: %w", d.ID, err)
		}
		c.Documents++
	}
	for _, l := range f.Licenses {
		if err := w.UpsertLicense(ctx, l); err != nil {
			return c, fmt.Errorf("import license %s: %w", l.ID, err)
		}
		c.Licenses++
	}
	for _, a := range f.Appointments {
		if err := w.UpsertAppointment(ctx, a); err != nil {
			return c, fmt.Errorf("import appointment %s: %w", a.ID, err)
		}
		c.Appointments++
	}
	for _, ct := range f.Contracts {
		if err := w.UpsertContract(ctx, ct); err != nil {
			return c, fmt.Errorf("import contract %s: %w", ct.ID, err)
		}
		c.Contracts++
	}
	for _, a := range f.Alerts {
		_, err := w.CreateAlert(ctx, model.Alert{
			ID:          a.ID,
			AgentID:     a.AgentID,
			AlertType:   a.AlertType,
			Severity:    a.Severity,
			Title:       a.Title,
			Message:     a.Message,
			DueDate:     a.DueDate,
			CreatedDate: a.CreatedDate,
		})
		if store.IsDuplicate(err) {
			continue
		}
		if err != nil {
			return c, fmt.Errorf("import alert %s: %w", a.ID, err)
		}
		c.Alerts++
	}
	return c, nil
}
