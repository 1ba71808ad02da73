// Package analytics composes the territory reducers into the dashboard and
// analytics views. Every figure covers the territories visible to the actor.
package analytics

import (
	"context"
	"math"

	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"golang.org/x/sync/errgroup"
)

type TerritoryLister interface {
	ListTerritories(ctx context.Context) ([]territory.Territory, error)
}

type FranchiseLister interface {
	ListFranchises(ctx context.Context) ([]franchise.Franchise, error)
}

type SelectionLister interface {
	ListSelections(ctx context.Context) ([]selection.Selection, error)
}

type Service struct {
	Territories TerritoryLister
	Campaigns   campaign.Repository
	Franchises  FranchiseLister
	Alerts      alert.Repository
	Selections  SelectionLister
}

// snapshot is everything a view reads, already narrowed to the actor.
type snapshot struct {
	territories []territory.Territory
	progress    []campaign.Progress
	franchises  []franchise.Franchise
	alerts      []alert.Alert
	selections  []selection.Selection
}

func (s *Service) load(ctx context.Context, actor utils.SessionData) (snapshot, error) {
	var (
		snap       snapshot
		all        []territory.Territory
		selections []selection.Selection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = s.Territories.ListTerritories(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.progress, err = campaign.ListProgress(gctx, s.Campaigns)
		return err
	})
	g.Go(func() (err error) {
		snap.franchises, err = s.Franchises.ListFranchises(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.alerts, err = alert.VisibleAlerts(gctx, s.Alerts, s.Territories, actor)
		return err
	})
	g.Go(func() (err error) {
		selections, err = s.Selections.ListSelections(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	snap.territories = territory.FilterVisible(all, actor)

	visible := make(map[uint]bool, len(snap.territories))
	for _, t := range snap.territories {
		visible[t.ID] = true
	}
	for _, sel := range selections {
		if !visible[sel.TerritoryID] {
			continue
		}
		if actor.IsAdmin() || (actor.IsFranchise() && sel.FranchiseID == *actor.FranchiseID) {
			snap.selections = append(snap.selections, sel)
		}
	}

	if !actor.IsAdmin() {
		own := snap.franchises[:0:0]
		for _, f := range snap.franchises {
			if actor.FranchiseID != nil && f.ID == *actor.FranchiseID {
				own = append(own, f)
			}
		}
		snap.franchises = own
	}
	return snap, nil
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}
