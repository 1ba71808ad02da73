// Package store implements the feature repositories over process memory and
// over Postgres.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/auth"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/export"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/seeds"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/territory"
)

// Memory keeps every collection in id order behind one lock.
type Memory struct {
	mu sync.RWMutex

	territories []territory.Territory
	campaigns   []campaign.Campaign
	franchises  []franchise.Franchise
	alerts      []alert.Alert
	selections  []selection.Selection
	users       []auth.User
	exports     []export.Record

	now func() time.Time
}

// NewMemory copies ds into a new store. Territory capacities are recomputed.
func NewMemory(ds seeds.Dataset) (*Memory, error) {
	m := &Memory{
		territories: slices.Clone(ds.Territories),
		campaigns:   slices.Clone(ds.Campaigns),
		franchises:  slices.Clone(ds.Franchises),
		alerts:      slices.Clone(ds.Alerts),
		users:       slices.Clone(ds.Users),
		now:         time.Now,
	}
	for i := range m.territories {
		if err := m.territories[i].Recompute(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func nextID[T any](items []T, id func(T) uint) uint {
	var max uint
	for _, it := range items {
		if v := id(it); v > max {
			max = v
		}
	}
	return max + 1
}

func indexOf[T any](items []T, id func(T) uint, want uint) int {
	for i, it := range items {
		if id(it) == want {
			return i
		}
	}
	return -1
}

func territoryID(t territory.Territory) uint { return t.ID }
func campaignID(c campaign.Campaign) uint    { return c.ID }
func franchiseID(f franchise.Franchise) uint { return f.ID }
func alertID(a alert.Alert) uint             { return a.ID }
func selectionID(s selection.Selection) uint { return s.ID }
func userID(u auth.User) uint                { return u.ID }

// Territories

func (m *Memory) ListTerritories(ctx context.Context) ([]territory.Territory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.territories), nil
}

func (m *Memory) GetTerritory(ctx context.Context, id uint) (territory.Territory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.territories, territoryID, id)
	if i < 0 {
		return territory.Territory{}, domain.NewNotFoundError("territory")
	}
	return m.territories[i], nil
}

// UpdateTerritory applies fn to the stored territory under the write lock
// and refreshes its capacity. Nothing is written when fn fails.
func (m *Memory) UpdateTerritory(ctx context.Context, id uint, fn func(*territory.Territory) error) (territory.Territory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.territories, territoryID, id)
	if i < 0 {
		return territory.Territory{}, domain.NewNotFoundError("territory")
	}

	t := m.territories[i]
	if err := fn(&t); err != nil {
		return territory.Territory{}, err
	}
	if err := t.Recompute(); err != nil {
		return territory.Territory{}, err
	}
	t.ID = id
	t.UpdatedAt = m.now().UTC()
	m.territories[i] = t
	return t, nil
}

// Campaigns

func (m *Memory) ListCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.campaigns), nil
}

func (m *Memory) GetCampaign(ctx context.Context, id uint) (campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.campaigns, campaignID, id)
	if i < 0 {
		return campaign.Campaign{}, domain.NewNotFoundError("campaign")
	}
	return m.campaigns[i], nil
}

func (m *Memory) ValidatedMondaysByCampaign(ctx context.Context) (map[uint]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return selection.ValidatedMondays(m.selections), nil
}

// Franchises

func (m *Memory) ListFranchises(ctx context.Context) ([]franchise.Franchise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.franchises), nil
}

func (m *Memory) GetFranchise(ctx context.Context, id uint) (franchise.Franchise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.franchises, franchiseID, id)
	if i < 0 {
		return franchise.Franchise{}, domain.NewNotFoundError("franchise")
	}
	return m.franchises[i], nil
}

// Alerts

func (m *Memory) ListAlerts(ctx context.Context) ([]alert.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.alerts), nil
}

func (m *Memory) GetAlert(ctx context.Context, id uint) (alert.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.alerts, alertID, id)
	if i < 0 {
		return alert.Alert{}, domain.NewNotFoundError("alert")
	}
	return m.alerts[i], nil
}

func (m *Memory) SetAlertRead(ctx context.Context, id uint, read bool) (alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.alerts, alertID, id)
	if i < 0 {
		return alert.Alert{}, domain.NewNotFoundError("alert")
	}
	m.alerts[i].SetRead(read)
	return m.alerts[i], nil
}

func (m *Memory) CreateAlert(ctx context.Context, a *alert.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = nextID(m.alerts, alertID)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now().UTC()
	}
	m.alerts = append(m.alerts, *a)
	return nil
}

// Selections

func (m *Memory) ListSelections(ctx context.Context) ([]selection.Selection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.selections), nil
}

func (m *Memory) GetSelection(ctx context.Context, id uint) (selection.Selection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.selections, selectionID, id)
	if i < 0 {
		return selection.Selection{}, domain.NewNotFoundError("selection")
	}
	return m.selections[i], nil
}

func (m *Memory) CreateSelection(ctx context.Context, s *selection.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if indexOf(m.territories, territoryID, s.TerritoryID) < 0 {
		return domain.NewNotFoundError("territory")
	}
	if _, ok := selection.ActiveFor(m.selections, s.TerritoryID); ok {
		return domain.NewConflictError("territory already has an active selection")
	}

	s.ID = nextID(m.selections, selectionID)
	m.selections = append(m.selections, *s)
	return nil
}

func (m *Memory) DecideSelection(ctx context.Context, id uint, fn func(*selection.Selection, *territory.Territory) error) (selection.Selection, territory.Territory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	si := indexOf(m.selections, selectionID, id)
	if si < 0 {
		return selection.Selection{}, territory.Territory{}, domain.NewNotFoundError("selection")
	}
	ti := indexOf(m.territories, territoryID, m.selections[si].TerritoryID)
	if ti < 0 {
		return selection.Selection{}, territory.Territory{}, domain.NewNotFoundError("territory")
	}

	sel, t := m.selections[si], m.territories[ti]
	if err := fn(&sel, &t); err != nil {
		return selection.Selection{}, territory.Territory{}, err
	}
	if err := t.Recompute(); err != nil {
		return selection.Selection{}, territory.Territory{}, err
	}
	if t.Status != m.territories[ti].Status {
		t.UpdatedAt = m.now().UTC()
	}

	m.selections[si], m.territories[ti] = sel, t
	return sel, t, nil
}

// Users

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.User{}, domain.NewNotFoundError("user")
}

func (m *Memory) GetUser(ctx context.Context, id uint) (auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.users, userID, id)
	if i < 0 {
		return auth.User{}, domain.NewNotFoundError("user")
	}
	return m.users[i], nil
}

// Exports

func (m *Memory) CreateExport(ctx context.Context, r *export.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now().UTC()
	}
	m.exports = append(m.exports, *r)
	return nil
}

// ListExports returns userID's most recent exports, newest first.
func (m *Memory) ListExports(ctx context.Context, userID uint, limit int) ([]export.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []export.Record{}
	for i := len(m.exports) - 1; i >= 0 && len(out) < limit; i-- {
		if m.exports[i].UserID == userID {
			out = append(out, m.exports[i])
		}
	}
	return out, nil
}
