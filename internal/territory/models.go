package territory

import (
	"strings"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"gorm.io/gorm"
)

type Status string

const (
	StatusEligible Status = "eligible"
	StatusReserved Status = "reserved"
	StatusClosed   Status = "closed"
)

// ParseStatus accepts the canonical statuses plus "assigned", which the
// dashboard uses interchangeably with "reserved".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StatusEligible):
		return StatusEligible, nil
	case string(StatusReserved), "assigned":
		return StatusReserved, nil
	case string(StatusClosed):
		return StatusClosed, nil
	}
	return "", domain.NewInvalidArgumentError("unknown territory status %q", s)
}

// Territory is a geographic sales zone identified by its INSEE code.
type Territory struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	CodeINSEE     string  `gorm:"size:5;uniqueIndex;not null" json:"code_insee"`
	Name          string  `gorm:"not null" json:"name"`
	Departement   string  `gorm:"size:3;index" json:"departement"`
	Region        string  `gorm:"index" json:"region"`
	Logements     int     `gorm:"not null" json:"logements"`
	PctResidPrinc float64 `gorm:"not null" json:"pct_resid_princ"`

	// Derived, see Recompute.
	MondaysAvailable int `gorm:"not null" json:"mondays_available"`

	DistanceKm  string `json:"distance_km"`
	TempsTrajet string `json:"temps_trajet"`

	// Last sale per campaign family, YYYY-MM-DD.
	LastSalesCRF   *string `gorm:"column:last_sales_crf" json:"last_sales_crf,omitempty"`
	LastSalesACF   *string `gorm:"column:last_sales_acf" json:"last_sales_acf,omitempty"`
	LastSalesMDM   *string `gorm:"column:last_sales_mdm" json:"last_sales_mdm,omitempty"`
	LastSalesOther *string `gorm:"column:last_sales_other" json:"last_sales_other,omitempty"`

	DispoCRF    *string `gorm:"column:dispo_crf" json:"dispo_crf,omitempty"`
	DispoACF    *string `gorm:"column:dispo_acf" json:"dispo_acf,omitempty"`
	DispoMDM    *string `gorm:"column:dispo_mdm" json:"dispo_mdm,omitempty"`
	DispoAutres *string `gorm:"column:dispo_autres" json:"dispo_autres,omitempty"`

	Status              Status  `gorm:"size:16;not null;default:'eligible';index" json:"status"`
	AssignedFranchiseID *uint   `gorm:"index" json:"assigned_franchise_id,omitempty"`
	NextAvailableDate   *string `json:"next_available_date,omitempty"`
	Comments            *string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Territory) TableName() string {
	return "tawkr.territories"
}

// Recompute refreshes MondaysAvailable from the housing inputs.
func (t *Territory) Recompute() error {
	m, err := Mondays(t.Logements, t.PctResidPrinc)
	if err != nil {
		return err
	}
	t.MondaysAvailable = m
	return nil
}

// BeforeSave keeps the derived capacity in step with its inputs for every
// gorm Create/Save.
func (t *Territory) BeforeSave(tx *gorm.DB) error {
	return t.Recompute()
}

// CheckAssignment enforces the status/franchise pairing: a reserved
// territory has a franchise, an eligible one has none, a closed one may keep
// the franchise that held it.
func (t Territory) CheckAssignment() error {
	switch t.Status {
	case StatusEligible:
		if t.Assigned() {
			return domain.NewInvalidArgumentError("eligible territory %s cannot be assigned to franchise %d", t.CodeINSEE, *t.AssignedFranchiseID)
		}
	case StatusReserved:
		if !t.Assigned() {
			return domain.NewInvalidArgumentError("reserved territory %s has no franchise", t.CodeINSEE)
		}
	case StatusClosed:
	default:
		return domain.NewInvalidArgumentError("unknown territory status %q", t.Status)
	}
	return nil
}

// Assigned reports whether a franchise holds the territory.
func (t Territory) Assigned() bool {
	return t.AssignedFranchiseID != nil
}

// LastSale returns the last sale date recorded for a campaign family.
func (t Territory) LastSale(f Family) *string {
	switch f {
	case FamilyCRF:
		return t.LastSalesCRF
	case FamilyACF:
		return t.LastSalesACF
	case FamilyMDM:
		return t.LastSalesMDM
	default:
		return t.LastSalesOther
	}
}

var transitions = map[Status][]Status{
	StatusEligible: {StatusReserved, StatusClosed},
	StatusReserved: {StatusClosed},
}

// Transition moves the territory along eligible -> reserved -> closed.
// Reserving requires the franchise taking it.
func (t *Territory) Transition(to Status, franchiseID *uint) error {
	allowed := false
	for _, s := range transitions[t.Status] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.NewConflictError("territory %s cannot move from %s to %s", t.CodeINSEE, t.Status, to)
	}

	if to == StatusReserved {
		if franchiseID == nil {
			return domain.NewInvalidArgumentError("reserving territory %s requires a franchise", t.CodeINSEE)
		}
		if t.Assigned() {
			return domain.NewConflictError("territory %s is already assigned", t.CodeINSEE)
		}
		id := *franchiseID
		t.AssignedFranchiseID = &id
	}

	t.Status = to
	return nil
}

// Family groups campaigns that share sales history on a territory.
type Family string

const (
	FamilyCRF   Family = "crf"
	FamilyACF   Family = "acf"
	FamilyMDM   Family = "mdm"
	FamilyOther Family = "other"
)

// FamilyOf maps a campaign name onto the family whose last sale it tracks.
func FamilyOf(campaignName string) Family {
	switch strings.ToUpper(strings.TrimSpace(campaignName)) {
	case "CRF":
		return FamilyCRF
	case "ACF":
		return FamilyACF
	case "MDM":
		return FamilyMDM
	default:
		return FamilyOther
	}
}
