package core

import "github.com/opsdesk/opsdesk/pkg/models"

// Action-code pools per incident type. PRL has its own checklist,
// RiskManagement carries no actions at all, and every other type shares
// the general pool. The default set is what a newly created incident
// starts with; the allowed set additionally contains codes that can be
// added later.
var (
	prlActions     = []string{"VoluntaryInsuranceSlip", "5.1", "5.3", "R39", "OD"}
	generalDefault = []string{"R05", "R39", "R06", "OD"}
	generalExtra   = []string{"PO13", "R12"}
)

// ActionSetFor returns the full pool of action codes valid for the given
// incident type.
func ActionSetFor(t models.IncidentType) []string {
	switch t {
	case models.TypePRL:
		return append([]string(nil), prlActions...)
	case models.TypeRiskManagement:
		return []string{}
	default:
		out := append([]string(nil), generalDefault...)
		return append(out, generalExtra...)
	}
}

// DefaultActionsFor returns the action codes seeded onto a newly created
// incident of the given type. For PRL and RiskManagement this equals the
// full pool; for the general types it is the four-code base set, with the
// remaining pool codes available through AddAction.
func DefaultActionsFor(t models.IncidentType) []string {
	switch t {
	case models.TypePRL:
		return append([]string(nil), prlActions...)
	case models.TypeRiskManagement:
		return []string{}
	default:
		return append([]string(nil), generalDefault...)
	}
}

// ActionAllowed reports whether code belongs to the action pool of the
// given incident type.
func ActionAllowed(t models.IncidentType, code string) bool {
	for _, a := range ActionSetFor(t) {
		if a == code {
			return true
		}
	}
	return false
}
