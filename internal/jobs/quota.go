package jobs

import (
	"context"

	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/territory"
)

// QuotaMessage is the alert raised on each territory of a campaign whose
// quota is met.
const QuotaMessage = "Quota Mondays atteint pour ce territoire"

type TerritoryReader interface {
	GetTerritory(ctx context.Context, id uint) (territory.Territory, error)
}

type SelectionLister interface {
	ListSelections(ctx context.Context) ([]selection.Selection, error)
}

// QuotaSweep raises an error alert on every territory of a campaign that has
// reached its Mondays quota, once per territory.
type QuotaSweep struct {
	Campaigns   campaign.Repository
	Selections  SelectionLister
	Territories TerritoryReader
	Alerts      alert.Repository
	Notifier    territory.Notifier
}

// Run returns how many alerts it raised.
func (q *QuotaSweep) Run(ctx context.Context) (int, error) {
	progress, err := campaign.ListProgress(ctx, q.Campaigns)
	if err != nil {
		return 0, err
	}
	reached := make(map[uint]bool)
	for _, p := range progress {
		if p.QuotaReached() {
			reached[p.ID] = true
		}
	}
	if len(reached) == 0 {
		return 0, nil
	}

	ss, err := q.Selections.ListSelections(ctx)
	if err != nil {
		return 0, err
	}
	existing, err := q.Alerts.ListAlerts(ctx)
	if err != nil {
		return 0, err
	}
	alerted := make(map[uint]bool)
	for _, a := range existing {
		if a.Level == alert.LevelError && a.Message == QuotaMessage {
			alerted[a.TerritoryID] = true
		}
	}

	raised := 0
	for _, s := range ss {
		if s.Status != selection.StatusValidated || !reached[s.CampaignID] || alerted[s.TerritoryID] {
			continue
		}
		t, err := q.Territories.GetTerritory(ctx, s.TerritoryID)
		if err != nil {
			return raised, err
		}
		if err := q.Notifier.Notify(ctx, t, string(alert.LevelError), QuotaMessage); err != nil {
			return raised, err
		}
		alerted[s.TerritoryID] = true
		raised++
	}
	return raised, nil
}
