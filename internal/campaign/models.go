package campaign

import (
	"sort"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/territory"
)

// Campaign is a time-boxed sales initiative with a Mondays quota.
type Campaign struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PIN      string `gorm:"column:pin;index;not null" json:"pin"`
	Name     string `gorm:"not null" json:"name"`
	Month    string `json:"month"`
	Priority *int   `json:"priority,omitempty"`
	City     string `json:"city"`

	QuotaMondays        int `gorm:"not null" json:"quota_mondays"`
	JacherePeriodMonths int `gorm:"column:jachere_period_months;not null" json:"jachere_period_months"`
}

func (Campaign) TableName() string {
	return "tawkr.campaigns"
}

// Prioritized reports whether the campaign carries an explicit priority.
func (c Campaign) Prioritized() bool {
	return c.Priority != nil
}

// Family is the sales family whose history on a territory this campaign
// reads and writes.
func (c Campaign) Family() territory.Family {
	return territory.FamilyOf(c.Name)
}

const dateLayout = "2006-01-02"

// FallowUntil returns the end of the jachère period of t for this campaign,
// and whether that end is still ahead of now. A territory without a recorded
// sale for the family is never fallow.
func (c Campaign) FallowUntil(t territory.Territory, now time.Time) (time.Time, bool, error) {
	last := t.LastSale(c.Family())
	if last == nil || *last == "" {
		return time.Time{}, false, nil
	}
	sold, err := time.Parse(dateLayout, *last)
	if err != nil {
		return time.Time{}, false, domain.NewInvalidArgumentError("territory %s has malformed last sale date %q", t.CodeINSEE, *last)
	}
	until := sold.AddDate(0, c.JacherePeriodMonths, 0)
	return until, now.Before(until), nil
}

// SortByPriority orders campaigns by ascending priority, unprioritized
// campaigns last, ties by id.
func SortByPriority(cs []Campaign) {
	sort.SliceStable(cs, func(i, j int) bool {
		pi, pj := cs[i].Priority, cs[j].Priority
		switch {
		case pi != nil && pj != nil && *pi != *pj:
			return *pi < *pj
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return cs[i].ID < cs[j].ID
	})
}

// Progress is a campaign with its validated Mondays against quota.
type Progress struct {
	Campaign
	SelectedMondays int     `json:"selected_mondays"`
	ProgressPct     float64 `json:"progress_pct"`
}

func NewProgress(c Campaign, selected int) Progress {
	p := Progress{Campaign: c, SelectedMondays: selected}
	if c.QuotaMondays > 0 {
		p.ProgressPct = float64(selected) * 100 / float64(c.QuotaMondays)
	}
	return p
}

// QuotaReached reports whether validated Mondays meet the quota.
func (p Progress) QuotaReached() bool {
	return p.QuotaMondays > 0 && p.SelectedMondays >= p.QuotaMondays
}
