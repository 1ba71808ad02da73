package selection

import (
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

// Selection is a franchise's claim on a territory for a campaign.
type Selection struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TerritoryID     uint       `gorm:"not null;index" json:"territory_id"`
	CampaignID      uint       `gorm:"not null;index" json:"campaign_id"`
	FranchiseID     uint       `gorm:"not null;index" json:"franchise_id"`
	MondaysSelected int        `gorm:"not null" json:"mondays_selected"`
	SelectionDate   time.Time  `gorm:"not null" json:"selection_date"`
	Status          Status     `gorm:"size:16;not null;default:'pending';index" json:"status"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	DecidedBy       *uint      `json:"decided_by,omitempty"`
}

func (Selection) TableName() string {
	return "tawkr.territory_selections"
}

// Active selections hold their territory: pending or validated.
func (s Selection) Active() bool {
	return s.Status == StatusPending || s.Status == StatusValidated
}

// Decide moves a pending selection to validated or rejected.
func (s *Selection) Decide(to Status, by uint, at time.Time) error {
	if s.Status != StatusPending {
		return domain.NewConflictError("selection %d is already %s", s.ID, s.Status)
	}
	if to != StatusValidated && to != StatusRejected {
		return domain.NewInvalidArgumentError("cannot decide selection as %q", to)
	}
	s.Status = to
	s.DecidedBy = &by
	at = at.UTC()
	s.DecidedAt = &at
	return nil
}

// ActiveFor returns the active selection on a territory, if any.
func ActiveFor(ss []Selection, territoryID uint) (Selection, bool) {
	for _, s := range ss {
		if s.TerritoryID == territoryID && s.Active() {
			return s, true
		}
	}
	return Selection{}, false
}

// ValidatedMondays sums validated Mondays per campaign.
func ValidatedMondays(ss []Selection) map[uint]int {
	out := make(map[uint]int)
	for _, s := range ss {
		if s.Status == StatusValidated {
			out[s.CampaignID] += s.MondaysSelected
		}
	}
	return out
}

// CountPending counts selections awaiting an admin decision.
func CountPending(ss []Selection) int {
	n := 0
	for _, s := range ss {
		if s.Status == StatusPending {
			n++
		}
	}
	return n
}
