package badge

import (
	"strings"
	"time"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/model"
)

// Badge types.
const (
	QuickStarter       = "quick_starter"
	DocumentMaster     = "document_master"
	LicenseVerified    = "license_verified"
	NIPRVerified       = "nipr_verified"
	AHIPCertified      = "ahip_certified"
	ComplianceChampion = "compliance_champion"
	FirstCarrier       = "first_carrier"
	MultiCarrier       = "multi_carrier"
	SpeedDemon         = "speed_demon"
	OnboardingComplete = "onboarding_complete"
)

const (
	quickStartWindow  = 24 * time.Hour
	speedDemonWindow  = 7 * 24 * time.Hour
	multiCarrierCount = 3
)

// requiredDocuments are the document types document_master needs.
var requiredDocuments = []string{"w9", "direct_deposit", "eo_certificate", "id_verification"}

// Predicate decides whether a badge is earned. Implementations must be pure:
// no I/O, no clock reads, no mutation of the snapshot.
type Predicate interface {
	Evaluate(snap model.Snapshot, earned model.EarnedSet) (bool, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(snap model.Snapshot, earned model.EarnedSet) (bool, error)

// Evaluate calls f.
func (f PredicateFunc) Evaluate(snap model.Snapshot, earned model.EarnedSet) (bool, error) {
	return f(snap, earned)
}

// Rule is one row of the badge table.
type Rule struct {
	Type        string
	Name        string
	Description string
	Points      int
	Predicate   Predicate
}

// Rules returns the badge table in display order. The slice is freshly
// allocated on each call.
func Rules() []Rule {
	return []Rule{
		{QuickStarter, "Quick Starter", "Completed a first checklist item within 24 hours of joining", 50, PredicateFunc(quickStarter)},
		{DocumentMaster, "Document Master", "Uploaded every required onboarding document", 100, PredicateFunc(documentMaster)},
		{LicenseVerified, "License Verified", "Holds an active, NIPR-verified state license", 75, PredicateFunc(licenseVerified)},
		{NIPRVerified, "NIPR Verified", "Passed NIPR verification", 100, PredicateFunc(niprVerified)},
		{AHIPCertified, "AHIP Certified", "Completed AHIP certification", 150, PredicateFunc(ahipCertified)},
		{ComplianceChampion, "Compliance Champion", "Cleared the background check and compliance training", 100, PredicateFunc(complianceChampion)},
		{FirstCarrier, "First Carrier", "Appointed with a first carrier", 125, PredicateFunc(firstCarrier)},
		{MultiCarrier, "Multi-Carrier", "Appointed with three or more carriers", 200, PredicateFunc(multiCarrier)},
		{SpeedDemon, "Speed Demon", "Ready to sell within 7 days of joining", 250, PredicateFunc(speedDemon)},
		{OnboardingComplete, "Onboarding Complete", "Finished every onboarding step and is ready to sell", 500, PredicateFunc(onboardingComplete)},
	}
}

// Lookup returns the rule for badgeType.
func Lookup(badgeType string) (Rule, bool) {
	for _, r := range Rules() {
		if r.Type == badgeType {
			return r, true
		}
	}
	return Rule{}, false
}

func quickStarter(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	if snap.Agent == nil {
		return false, ErrNoAgent
	}
	first, ok := checklist.FirstCompletion(snap.ChecklistItems)
	if !ok {
		return false, nil
	}
	return first.Sub(snap.Agent.CreatedDate) <= quickStartWindow, nil
}

func documentMaster(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	present := make(map[string]bool, len(snap.Documents))
	for _, d := range snap.Documents {
		present[d.DocumentType] = true
	}
	for _, want := range requiredDocuments {
		if !present[want] {
			return false, nil
		}
	}
	return true, nil
}

func licenseVerified(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	for _, l := range snap.Licenses {
		if l.Status == model.LicenseActive && l.NIPRVerified {
			return true, nil
		}
	}
	return false, nil
}

func niprVerified(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	if snap.Agent == nil {
		return false, ErrNoAgent
	}
	if snap.Agent.NIPRStatus == model.NIPRVerified {
		return true, nil
	}
	for _, l := range snap.Licenses {
		if l.NIPRVerified {
			return true, nil
		}
	}
	return false, nil
}

func ahipCertified(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	if snap.Agent == nil {
		return false, ErrNoAgent
	}
	if snap.Agent.AHIPCompletionDate != nil {
		return true, nil
	}
	return itemCompleted(snap.ChecklistItems, "ahip"), nil
}

func complianceChampion(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	if snap.Agent == nil {
		return false, ErrNoAgent
	}
	if snap.Agent.BackgroundCheckStatus == model.BackgroundPassed {
		return true, nil
	}
	return itemCompleted(snap.ChecklistItems, "background") &&
		itemCompleted(snap.ChecklistItems, "compliance_training"), nil
}

func firstCarrier(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	return appointedCount(snap.Appointments) >= 1, nil
}

func multiCarrier(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	return appointedCount(snap.Appointments) >= multiCarrierCount, nil
}

func speedDemon(snap model.Snapshot, earned model.EarnedSet) (bool, error) {
	done, err := onboardingComplete(snap, earned)
	if err != nil || !done {
		return false, err
	}
	last, ok := checklist.LastCompletion(snap.ChecklistItems)
	if !ok {
		return false, nil
	}
	return last.Sub(snap.Agent.CreatedDate) <= speedDemonWindow, nil
}

func onboardingComplete(snap model.Snapshot, _ model.EarnedSet) (bool, error) {
	if snap.Agent == nil {
		return false, ErrNoAgent
	}
	return snap.Agent.OnboardingStatus == model.OnboardingReady &&
		checklist.AllCompleted(snap.ChecklistItems), nil
}

// itemCompleted reports whether any completed item's key contains fragment.
func itemCompleted(items []model.ChecklistItem, fragment string) bool {
	for _, item := range items {
		if item.IsCompleted && strings.Contains(item.ItemKey, fragment) {
			return true
		}
	}
	return false
}

func appointedCount(appointments []model.Appointment) int {
	n := 0
	for _, a := range appointments {
		if a.AppointmentStatus == model.AppointmentAppointed {
			n++
		}
	}
	return n
}
