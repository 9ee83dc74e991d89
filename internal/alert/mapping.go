package alert

import "strings"

// overduePrefix prefixes the alert type raised for a stale checklist item.
const overduePrefix = "overdue_"

// resolutions maps a checklist item key to the externally raised alert types
// that completing the item answers.
var resolutions = map[string][]string{
	"nipr_verification":   {"adverse_action", "license_expiring"},
	"state_license":       {"license_expiring", "license_missing"},
	"ahip_certification":  {"ahip_expiring"},
	"eo_certificate":      {"eo_expiring"},
	"background_check":    {"background_check_pending"},
	"compliance_training": {"compliance_training_due"},
	"w9_form":             {"missing_w9"},
	"direct_deposit":      {"missing_direct_deposit"},
	"carrier_contracts":   {"contract_pending"},
}

// OverdueType returns the alert type raised when itemKey goes stale.
func OverdueType(itemKey string) string {
	return overduePrefix + itemKey
}

// IsOverdueType reports whether alertType was raised for a stale item.
func IsOverdueType(alertType string) bool {
	return strings.HasPrefix(alertType, overduePrefix)
}

// ResolvesFor returns every alert type resolved by completing itemKey: the
// mapped external types followed by the item's own overdue type.
func ResolvesFor(itemKey string) []string {
	mapped := resolutions[itemKey]
	out := make([]string, 0, len(mapped)+1)
	out = append(out, mapped...)
	return append(out, OverdueType(itemKey))
}
