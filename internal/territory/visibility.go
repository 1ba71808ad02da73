package territory

import "github.com/tawkr/tawkr-backend/internal/utils"

// Visible reports whether actor may see t. Admins see everything; franchise
// users see open territories (eligible, unassigned) and their own.
func Visible(t Territory, actor utils.SessionData) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsFranchise() {
		return false
	}
	if t.Assigned() {
		return *t.AssignedFranchiseID == *actor.FranchiseID
	}
	return t.Status == StatusEligible
}

// Selectable reports whether actor may claim t for a campaign.
func Selectable(t Territory, actor utils.SessionData) bool {
	return actor.IsFranchise() && t.Status == StatusEligible && !t.Assigned()
}

// Editable reports whether actor may edit, validate or close territories.
func Editable(actor utils.SessionData) bool {
	return actor.IsAdmin()
}

// FilterVisible keeps the territories actor may see, in their original order.
func FilterVisible(ts []Territory, actor utils.SessionData) []Territory {
	out := make([]Territory, 0, len(ts))
	for _, t := range ts {
		if Visible(t, actor) {
			out = append(out, t)
		}
	}
	return out
}
