package selection_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/middleware"
	"github.com/tawkr/tawkr-backend/internal/seeds"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/sessions"
	"github.com/tawkr/tawkr-backend/internal/store"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	now = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	admin      = utils.SessionData{UserID: 1, Role: utils.RoleAdmin}
	bordeaux   = utils.SessionData{UserID: 2, Role: utils.RoleFranchise, FranchiseID: utils.UintPtr(1)}
	toulouse   = utils.SessionData{UserID: 3, Role: utils.RoleFranchise, FranchiseID: utils.UintPtr(2)}
	crfSoldAt  = "2025-07-26"
	mdmSoldAt  = "2024-05-27"
	priorityOf = func(p int) *int { return &p }
)

func newService(t *testing.T) (*selection.Service, *store.Memory) {
	t.Helper()
	repo, err := store.NewMemory(seeds.Dataset{
		Territories: []territory.Territory{
			{ID: 1, CodeINSEE: "33063", Name: "BORDEAUX", Logements: 12000, PctResidPrinc: 90, Status: territory.StatusEligible},
			{ID: 2, CodeINSEE: "33281", Name: "MÉRIGNAC", Logements: 9500, PctResidPrinc: 94, Status: territory.StatusEligible, LastSalesCRF: &crfSoldAt, LastSalesMDM: &mdmSoldAt},
			{ID: 3, CodeINSEE: "33318", Name: "PESSAC", Logements: 0, PctResidPrinc: 85, Status: territory.StatusEligible},
			{ID: 5, CodeINSEE: "16015", Name: "ANGOULÊME", Logements: 5000, PctResidPrinc: 82, Status: territory.StatusClosed},
		},
		Campaigns: []campaign.Campaign{
			{ID: 1, PIN: "APEX", Name: "ACF", Priority: priorityOf(1), QuotaMondays: 500, JacherePeriodMonths: 3},
			{ID: 3, PIN: "DAY1", Name: "CRF", Priority: priorityOf(3), QuotaMondays: 600, JacherePeriodMonths: 6},
			{ID: 5, PIN: "DAY1-Nice", Name: "MDM", QuotaMondays: 350, JacherePeriodMonths: 3},
		},
	})
	require.NoError(t, err)

	clock := func() time.Time { return now }
	m := metrics.New()
	return &selection.Service{
		Repo:        repo,
		Territories: repo,
		Campaigns:   repo,
		Notifier:    &alert.Notifier{Repo: repo, Metrics: m, Now: clock},
		Metrics:     m,
		Now:         clock,
	}, repo
}

func mondays(n int) *int { return &n }

func TestCreate_DefaultsToFullCapacity(t *testing.T) {
	svc, _ := newService(t)

	sel, err := svc.Create(context.Background(), bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), sel.ID)
	assert.Equal(t, selection.StatusPending, sel.Status)
	assert.Equal(t, uint(1), sel.FranchiseID)
	assert.Equal(t, 10800, sel.MondaysSelected)
	assert.True(t, now.Equal(sel.SelectionDate))
	assert.Nil(t, sel.DecidedAt)
}

func TestCreate_Rejections(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor utils.SessionData
		req   selection.Request
		code  string
	}{
		{"admin cannot select", admin, selection.Request{TerritoryID: 1, CampaignID: 1}, domain.ErrCodeForbidden},
		{"unknown territory", bordeaux, selection.Request{TerritoryID: 42, CampaignID: 1}, domain.ErrCodeNotFound},
		{"closed territory is hidden", bordeaux, selection.Request{TerritoryID: 5, CampaignID: 1}, domain.ErrCodeNotFound},
		{"unknown campaign", bordeaux, selection.Request{TerritoryID: 1, CampaignID: 9}, domain.ErrCodeNotFound},
		{"zero Mondays", bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1, MondaysSelected: mondays(0)}, domain.ErrCodeInvalidArgument},
		{"above capacity", bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1, MondaysSelected: mondays(10801)}, domain.ErrCodeInvalidArgument},
		{"no capacity", bordeaux, selection.Request{TerritoryID: 3, CampaignID: 1}, domain.ErrCodeInvalidArgument},
		{"jachère", bordeaux, selection.Request{TerritoryID: 2, CampaignID: 3}, domain.ErrCodeConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.actor, tc.req)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}

	ss, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, ss)
}

func TestCreate_FallowPeriodIsPerFamily(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), bordeaux, selection.Request{TerritoryID: 2, CampaignID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2026-01-26")

	sel, err := svc.Create(context.Background(), bordeaux, selection.Request{TerritoryID: 2, CampaignID: 5, MondaysSelected: mondays(100)})
	require.NoError(t, err, "MDM sale is older than its period")
	assert.Equal(t, 100, sel.MondaysSelected)
}

func TestCreate_OneActiveSelectionPerTerritory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, toulouse, selection.Request{TerritoryID: 1, CampaignID: 1})
	assert.True(t, domain.IsConflict(err))

	_, err = svc.Reject(ctx, admin, first.ID)
	require.NoError(t, err)

	second, err := svc.Create(ctx, toulouse, selection.Request{TerritoryID: 1, CampaignID: 1})
	require.NoError(t, err, "a rejected selection frees the territory")
	assert.Equal(t, uint(2), second.ID)
}

func TestValidate_ReservesTerritory(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	sel, err := svc.Create(ctx, bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1, MondaysSelected: mondays(400)})
	require.NoError(t, err)

	_, err = svc.Validate(ctx, bordeaux, sel.ID)
	assert.Equal(t, domain.ErrCodeForbidden, domain.CodeOf(err))

	validated, err := svc.Validate(ctx, admin, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, selection.StatusValidated, validated.Status)
	require.NotNil(t, validated.DecidedBy)
	assert.Equal(t, admin.UserID, *validated.DecidedBy)
	require.NotNil(t, validated.DecidedAt)
	assert.True(t, now.Equal(*validated.DecidedAt))

	tr, err := repo.GetTerritory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, territory.StatusReserved, tr.Status)
	require.NotNil(t, tr.AssignedFranchiseID)
	assert.Equal(t, uint(1), *tr.AssignedFranchiseID)

	as, err := repo.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, alert.LevelInfo, as[0].Level)
	assert.Equal(t, "Sélection validée: 400 Mondays réservés", as[0].Message)
	assert.Equal(t, "BORDEAUX", as[0].TerritoryName)

	selected, err := repo.ValidatedMondaysByCampaign(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400, selected[1])

	_, err = svc.Validate(ctx, admin, sel.ID)
	assert.True(t, domain.IsConflict(err), "already validated")
	_, err = svc.Reject(ctx, admin, sel.ID)
	assert.True(t, domain.IsConflict(err))

	_, err = svc.Create(ctx, toulouse, selection.Request{TerritoryID: 1, CampaignID: 1})
	assert.True(t, domain.IsNotFound(err), "another franchise no longer sees the territory")
	_, err = svc.Create(ctx, bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1})
	assert.True(t, domain.IsConflict(err), "reserved territories are not selectable")
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, territory.Territory, string, string) error {
	return errors.New("alerts unavailable")
}

func TestValidate_AlertFailureKeepsDecision(t *testing.T) {
	svc, repo := newService(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc.Notifier = failingNotifier{}
	svc.Logger = zap.New(core)
	ctx := context.Background()

	sel, err := svc.Create(ctx, bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1, MondaysSelected: mondays(400)})
	require.NoError(t, err)

	validated, err := svc.Validate(ctx, admin, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, selection.StatusValidated, validated.Status)

	tr, err := repo.GetTerritory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, territory.StatusReserved, tr.Status)

	entries := logs.FilterMessage("notify selection validated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(sel.ID), entries[0].ContextMap()["selection_id"])
}

func TestReject_LeavesTerritoryUntouched(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	sel, err := svc.Create(ctx, bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, admin, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, selection.StatusRejected, rejected.Status)

	tr, err := repo.GetTerritory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, territory.StatusEligible, tr.Status)
	assert.Nil(t, tr.AssignedFranchiseID)

	as, err := repo.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, as)

	_, err = svc.Reject(ctx, admin, 99)
	assert.True(t, domain.IsNotFound(err))
}

func TestList_ScopedAndNewestFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, bordeaux, selection.Request{TerritoryID: 1, CampaignID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, toulouse, selection.Request{TerritoryID: 2, CampaignID: 1})
	require.NoError(t, err)

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint(2), all[0].ID)
	assert.Equal(t, uint(1), all[1].ID)

	own, err := svc.List(ctx, toulouse)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, uint(2), own[0].FranchiseID)
}

func TestSelectionRoutes(t *testing.T) {
	svc, _ := newService(t)
	ss := sessions.NewMemoryStore()
	srv := httptest.NewServer(selection.SetupRoutes(selection.NewHandler(svc), ss))
	defer srv.Close()

	cookie := func(actor utils.SessionData) *http.Cookie {
		s := sessions.New(actor.UserID, "user@tawkr.com", actor.Role, actor.FranchiseID, time.Hour)
		require.NoError(t, ss.Create(context.Background(), s))
		return &http.Cookie{Name: middleware.SessionCookieName, Value: s.SessionID}
	}
	post := func(path, body string, c *http.Cookie) int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(c)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	franchise, adm := cookie(bordeaux), cookie(admin)

	assert.Equal(t, http.StatusForbidden, post("/", `{"territory_id":1,"campaign_id":1}`, adm))
	assert.Equal(t, http.StatusBadRequest, post("/", `{"territory_id":1}`, franchise))
	assert.Equal(t, http.StatusBadRequest, post("/", `{"territory_id":1,"campaign_id":1,"mondays_selected":-3}`, franchise))
	assert.Equal(t, http.StatusCreated, post("/", `{"territory_id":1,"campaign_id":1}`, franchise))
	assert.Equal(t, http.StatusConflict, post("/", `{"territory_id":1,"campaign_id":1}`, franchise))

	assert.Equal(t, http.StatusForbidden, post("/1/validate", "", franchise))
	assert.Equal(t, http.StatusOK, post("/1/validate", "", adm))
	assert.Equal(t, http.StatusConflict, post("/1/reject", "", adm))
}
