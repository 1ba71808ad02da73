package analytics

import (
	"context"

	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

const topTerritories = 10

type FranchisePerformance struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	Territories int    `json:"territories"`
	Mondays     int    `json:"mondays"`
}

type Overview struct {
	TotalTerritories    int                      `json:"total_territories"`
	ByStatus            map[territory.Status]int `json:"by_status"`
	AssignedTerritories int                      `json:"assigned_territories"`
	TotalMondays        int                      `json:"total_mondays"`
	AssignedMondays     int                      `json:"assigned_mondays"`

	Campaigns            int `json:"campaigns"`
	PrioritizedCampaigns int `json:"prioritized_campaigns"`

	Regions    []territory.RegionSummary `json:"regions"`
	Top        []territory.Territory     `json:"top_territories"`
	Franchises []FranchisePerformance    `json:"franchises"`
}

func (s *Service) Overview(ctx context.Context, actor utils.SessionData) (Overview, error) {
	snap, err := s.load(ctx, actor)
	if err != nil {
		return Overview{}, err
	}
	ts := snap.territories

	o := Overview{
		TotalTerritories:    len(ts),
		ByStatus:            territory.CountByStatus(ts),
		AssignedTerritories: territory.Count(ts, territory.Assigned()),
		TotalMondays:        territory.TotalMondays(ts),
		AssignedMondays:     territory.TotalMondays(ts, territory.Assigned()),
		Campaigns:           len(snap.progress),
		Regions:             territory.GroupByRegion(ts),
		Top:                 territory.TopByMondays(ts, topTerritories),
		Franchises:          make([]FranchisePerformance, 0, len(snap.franchises)),
	}
	for _, p := range snap.progress {
		if p.Prioritized() {
			o.PrioritizedCampaigns++
		}
	}
	for _, f := range snap.franchises {
		o.Franchises = append(o.Franchises, FranchisePerformance{
			ID:          f.ID,
			Name:        f.Name,
			Region:      f.Region,
			Territories: territory.Count(ts, territory.AssignedTo(f.ID)),
			Mondays:     territory.TotalMondays(ts, territory.AssignedTo(f.ID)),
		})
	}
	return o, nil
}
