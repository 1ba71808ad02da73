package analytics

import (
	"context"

	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

const (
	dashboardTerritories = 3
	dashboardAlerts      = 3
	dashboardCampaigns   = 5
)

type Dashboard struct {
	TotalTerritories     int     `json:"total_territories"`
	AvailableTerritories int     `json:"available_territories"`
	AvailablePct         float64 `json:"available_pct"`

	TotalMondays    int     `json:"total_mondays"`
	SelectedMondays int     `json:"selected_mondays"`
	SelectedPct     float64 `json:"selected_pct"`

	PendingValidations int `json:"pending_validations"`
	ActiveCampaigns    int `json:"active_campaigns"`

	// Admins see the franchise count, franchise users their unread alerts.
	Franchises   *int `json:"franchises,omitempty"`
	UnreadAlerts *int `json:"unread_alerts,omitempty"`

	// First available territories in id order.
	AvailableList []territory.Territory `json:"available_list"`
	RecentAlerts  []alert.Alert         `json:"recent_alerts"`
	Campaigns     []campaign.Progress   `json:"campaigns"`
}

func (s *Service) Dashboard(ctx context.Context, actor utils.SessionData) (Dashboard, error) {
	snap, err := s.load(ctx, actor)
	if err != nil {
		return Dashboard{}, err
	}

	available := territory.Filter(snap.territories,
		territory.WithStatus(territory.StatusEligible),
		territory.Unassigned(),
	)

	selected := 0
	for _, m := range selection.ValidatedMondays(snap.selections) {
		selected += m
	}

	d := Dashboard{
		TotalTerritories:     len(snap.territories),
		AvailableTerritories: len(available),
		AvailablePct:         pct(len(available), len(snap.territories)),
		TotalMondays:         territory.TotalMondays(snap.territories),
		SelectedMondays:      selected,
		PendingValidations:   selection.CountPending(snap.selections),
		ActiveCampaigns:      len(snap.progress),
		AvailableList:        head(available, dashboardTerritories),
		RecentAlerts:         head(snap.alerts, dashboardAlerts),
		Campaigns:            head(snap.progress, dashboardCampaigns),
	}
	d.SelectedPct = pct(d.SelectedMondays, d.TotalMondays)

	if actor.IsAdmin() {
		n := len(snap.franchises)
		d.Franchises = &n
	} else {
		n := alert.UnreadCount(snap.alerts)
		d.UnreadAlerts = &n
	}
	return d, nil
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		xs = xs[:n]
	}
	out := make([]T, len(xs))
	copy(out, xs)
	return out
}
