package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"go.uber.org/zap"
)

type Repository interface {
	ListSelections(ctx context.Context) ([]Selection, error)
	GetSelection(ctx context.Context, id uint) (Selection, error)
	// CreateSelection stores s and returns a CONFLICT error when the
	// territory already has an active selection.
	CreateSelection(ctx context.Context, s *Selection) error
	// DecideSelection loads the selection and its territory, applies fn and
	// persists both atomically. Nothing is written when fn fails.
	DecideSelection(ctx context.Context, id uint, fn func(*Selection, *territory.Territory) error) (Selection, territory.Territory, error)
}

type TerritoryReader interface {
	GetTerritory(ctx context.Context, id uint) (territory.Territory, error)
}

type CampaignReader interface {
	GetCampaign(ctx context.Context, id uint) (campaign.Campaign, error)
}

type Service struct {
	Repo        Repository
	Territories TerritoryReader
	Campaigns   CampaignReader
	Notifier    territory.Notifier
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *Service) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) count(outcome string) {
	if s.Metrics != nil {
		s.Metrics.Selections.WithLabelValues(outcome).Inc()
	}
}

// Request carries a franchise's claim. MondaysSelected defaults to the
// territory's full capacity.
type Request struct {
	TerritoryID     uint `json:"territory_id" validate:"required"`
	CampaignID      uint `json:"campaign_id" validate:"required"`
	MondaysSelected *int `json:"mondays_selected,omitempty" validate:"omitempty,gte=1"`
}

// Create records a pending selection for actor's franchise.
func (s *Service) Create(ctx context.Context, actor utils.SessionData, req Request) (Selection, error) {
	if !actor.IsFranchise() {
		return Selection{}, domain.NewForbiddenError("Forbidden: franchise access required")
	}

	t, err := s.Territories.GetTerritory(ctx, req.TerritoryID)
	if err != nil {
		return Selection{}, err
	}
	if !territory.Visible(t, actor) {
		return Selection{}, domain.NewNotFoundError("territory")
	}
	if !territory.Selectable(t, actor) {
		return Selection{}, domain.NewConflictError("territory %s is not available for selection", t.CodeINSEE)
	}

	c, err := s.Campaigns.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return Selection{}, err
	}

	mondays := t.MondaysAvailable
	if req.MondaysSelected != nil {
		mondays = *req.MondaysSelected
	}
	if t.MondaysAvailable < 1 {
		return Selection{}, domain.NewInvalidArgumentError("territory %s has no Mondays available", t.CodeINSEE)
	}
	if mondays < 1 || mondays > t.MondaysAvailable {
		return Selection{}, domain.NewInvalidArgumentError("mondays_selected must be between 1 and %d", t.MondaysAvailable)
	}

	now := s.now()
	until, fallow, err := c.FallowUntil(t, now)
	if err != nil {
		return Selection{}, err
	}
	if fallow {
		return Selection{}, domain.NewConflictError("territory %s is in jachère for %s until %s",
			t.CodeINSEE, c.Name, until.Format("2006-01-02"))
	}

	sel := Selection{
		TerritoryID:     t.ID,
		CampaignID:      c.ID,
		FranchiseID:     *actor.FranchiseID,
		MondaysSelected: mondays,
		SelectionDate:   now.UTC(),
		Status:          StatusPending,
	}
	if err := s.Repo.CreateSelection(ctx, &sel); err != nil {
		return Selection{}, err
	}
	s.count("requested")
	return sel, nil
}

// Validate accepts a pending selection and reserves its territory for the
// franchise. A failed alert is logged; the decision stands.
func (s *Service) Validate(ctx context.Context, actor utils.SessionData, id uint) (Selection, error) {
	if !actor.IsAdmin() {
		return Selection{}, domain.NewForbiddenError("Forbidden: admin access required")
	}

	sel, t, err := s.Repo.DecideSelection(ctx, id, func(sel *Selection, t *territory.Territory) error {
		if err := sel.Decide(StatusValidated, actor.UserID, s.now()); err != nil {
			return err
		}
		return t.Transition(territory.StatusReserved, &sel.FranchiseID)
	})
	if err != nil {
		return Selection{}, err
	}
	s.count("validated")

	if s.Notifier != nil {
		msg := fmt.Sprintf("Sélection validée: %d Mondays réservés", sel.MondaysSelected)
		if err := s.Notifier.Notify(ctx, t, "info", msg); err != nil {
			s.logger().Warn("notify selection validated",
				zap.Uint("selection_id", sel.ID),
				zap.Uint("territory_id", t.ID),
				zap.Error(err),
			)
		}
	}
	return sel, nil
}

// Reject refuses a pending selection; the territory is left untouched.
func (s *Service) Reject(ctx context.Context, actor utils.SessionData, id uint) (Selection, error) {
	if !actor.IsAdmin() {
		return Selection{}, domain.NewForbiddenError("Forbidden: admin access required")
	}

	sel, _, err := s.Repo.DecideSelection(ctx, id, func(sel *Selection, _ *territory.Territory) error {
		return sel.Decide(StatusRejected, actor.UserID, s.now())
	})
	if err != nil {
		return Selection{}, err
	}
	s.count("rejected")
	return sel, nil
}

// List returns every selection for admins and the franchise's own for
// franchise users, newest first.
func (s *Service) List(ctx context.Context, actor utils.SessionData) ([]Selection, error) {
	ss, err := s.Repo.ListSelections(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Selection, 0, len(ss))
	for i := len(ss) - 1; i >= 0; i-- {
		sel := ss[i]
		if actor.IsAdmin() || (actor.IsFranchise() && sel.FranchiseID == *actor.FranchiseID) {
			out = append(out, sel)
		}
	}
	return out, nil
}
