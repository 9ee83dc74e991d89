package model

import "time"

// Category groups checklist items for per-category progress.
type Category string

const (
	CategoryDocuments      Category = "documents"
	CategoryCertifications Category = "certifications"
	CategoryContracts      Category = "contracts"
	CategoryCompliance     Category = "compliance"
	CategoryTraining       Category = "training"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryDocuments,
	CategoryCertifications,
	CategoryContracts,
	CategoryCompliance,
	CategoryTraining,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity classifies an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Agent status values read by the badge rules.
const (
	OnboardingPending    = "pending"
	OnboardingInProgress = "in_progress"
	OnboardingReady      = "ready_to_sell"

	NIPRVerified = "verified"

	BackgroundPassed = "passed"

	LicenseActive = "active"

	AppointmentAppointed = "appointed"
)

// Agent is the read-only agent record.
type Agent struct {
	ID                    string     `json:"id" yaml:"id"`
	Name                  string     `json:"name" yaml:"name"`
	Email                 string     `json:"email,omitempty" yaml:"email,omitempty"`
	NPN                   string     `json:"npn,omitempty" yaml:"npn,omitempty"`
	OnboardingStatus      string     `json:"onboarding_status" yaml:"onboarding_status"`
	NIPRStatus            string     `json:"nipr_status,omitempty" yaml:"nipr_status,omitempty"`
	AHIPCompletionDate    *time.Time `json:"ahip_completion_date,omitempty" yaml:"ahip_completion_date,omitempty"`
	BackgroundCheckStatus string     `json:"background_check_status,omitempty" yaml:"background_check_status,omitempty"`
	CreatedDate           time.Time  `json:"created_date" yaml:"created_date"`
}

// ChecklistItem is one onboarding requirement tracked for an agent.
// CompletedDate and CompletedBy are set iff IsCompleted is true.
type ChecklistItem struct {
	ID            string     `json:"id"`
	AgentID       string     `json:"agent_id"`
	ItemKey       string     `json:"item_key"`
	ItemName      string     `json:"item_name"`
	Category      Category   `json:"category"`
	SortOrder     int        `json:"sort_order"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedDate *time.Time `json:"completed_date"`
	CompletedBy   *string    `json:"completed_by"`
}

// Badge is an achievement awarded at most once per (AgentID, BadgeType).
type Badge struct {
	ID               string    `json:"id"`
	AgentID          string    `json:"agent_id"`
	BadgeType        string    `json:"badge_type"`
	BadgeName        string    `json:"badge_name"`
	BadgeDescription string    `json:"badge_description"`
	Points           int       `json:"points"`
	EarnedDate       time.Time `json:"earned_date"`
}

// Alert is an actionable notice for an agent.
// ResolvedDate is set iff IsResolved is true.
type Alert struct {
	ID           string     `json:"id"`
	AgentID      string     `json:"agent_id"`
	AlertType    string     `json:"alert_type"`
	Severity     Severity   `json:"severity"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	IsResolved   bool       `json:"is_resolved"`
	ResolvedDate *time.Time `json:"resolved_date"`
	DueDate      *time.Time `json:"due_date"`
	CreatedDate  time.Time  `json:"created_date"`
}

// Document is an uploaded onboarding document.
type Document struct {
	ID           string    `json:"id" yaml:"id"`
	AgentID      string    `json:"agent_id" yaml:"agent_id"`
	DocumentType string    `json:"document_type" yaml:"document_type"`
	Status       string    `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedDate  time.Time `json:"created_date" yaml:"created_date"`
}

// License is a state insurance license held by an agent.
type License struct {
	ID             string     `json:"id" yaml:"id"`
	AgentID        string     `json:"agent_id" yaml:"agent_id"`
	State          string     `json:"state" yaml:"state"`
	LicenseNumber  string     `json:"license_number,omitempty" yaml:"license_number,omitempty"`
	Status         string     `json:"status" yaml:"status"`
	NIPRVerified   bool       `json:"nipr_verified" yaml:"nipr_verified"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty" yaml:"expiration_date,omitempty"`
}

// Appointment is a carrier appointment.
type Appointment struct {
	ID                string `json:"id" yaml:"id"`
	AgentID           string `json:"agent_id" yaml:"agent_id"`
	CarrierName       string `json:"carrier_name" yaml:"carrier_name"`
	AppointmentStatus string `json:"appointment_status" yaml:"appointment_status"`
}

// Contract is a carrier contract.
type Contract struct {
	ID          string `json:"id" yaml:"id"`
	AgentID     string `json:"agent_id" yaml:"agent_id"`
	CarrierName string `json:"carrier_name" yaml:"carrier_name"`
	Status      string `json:"status" yaml:"status"`
}

// Snapshot is the read model assembled for one agent. Badge rules and the
// stall detector consume it; it is never written back.
type Snapshot struct {
	Agent          *Agent          `json:"agent"`
	ChecklistItems []ChecklistItem `json:"checklist_items"`
	Documents      []Document      `json:"documents"`
	Licenses       []License       `json:"licenses"`
	Appointments   []Appointment   `json:"appointments"`
	Contracts      []Contract      `json:"contracts"`
}

// EarnedSet is the set of badge types an agent already holds.
type EarnedSet map[string]bool

// NewEarnedSet builds an EarnedSet from existing badges.
func NewEarnedSet(badges []Badge) EarnedSet {
	set := make(EarnedSet, len(badges))
	for _, b := range badges {
		set[b.BadgeType] = true
	}
	return set
}

// Has reports whether badgeType was already earned.
func (s EarnedSet) Has(badgeType string) bool {
	return s[badgeType]
}
