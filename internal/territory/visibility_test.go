package territory

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

var (
	admin      = utils.SessionData{UserID: 1, Role: utils.RoleAdmin}
	franchise1 = utils.SessionData{UserID: 2, Role: utils.RoleFranchise, FranchiseID: utils.UintPtr(1)}
	franchise2 = utils.SessionData{UserID: 3, Role: utils.RoleFranchise, FranchiseID: utils.UintPtr(2)}
)

func TestVisible(t *testing.T) {
	open := Territory{ID: 1, Status: StatusEligible}
	closed := Territory{ID: 2, Status: StatusClosed}
	mine := Territory{ID: 3, Status: StatusReserved, AssignedFranchiseID: utils.UintPtr(1)}
	theirs := Territory{ID: 4, Status: StatusReserved, AssignedFranchiseID: utils.UintPtr(2)}
	myClosed := Territory{ID: 5, Status: StatusClosed, AssignedFranchiseID: utils.UintPtr(1)}

	for _, tr := range []Territory{open, closed, mine, theirs, myClosed} {
		assert.True(t, Visible(tr, admin), "admin sees territory %d", tr.ID)
	}

	assert.True(t, Visible(open, franchise1))
	assert.False(t, Visible(closed, franchise1))
	assert.True(t, Visible(mine, franchise1))
	assert.False(t, Visible(theirs, franchise1))
	assert.True(t, Visible(myClosed, franchise1))

	assert.False(t, Visible(open, utils.SessionData{Role: utils.RoleFranchise}), "franchise user without franchise sees nothing")
	assert.False(t, Visible(open, utils.SessionData{}))
}

func TestSelectableAndEditable(t *testing.T) {
	open := Territory{Status: StatusEligible}
	mine := Territory{Status: StatusReserved, AssignedFranchiseID: utils.UintPtr(1)}

	assert.True(t, Selectable(open, franchise1))
	assert.False(t, Selectable(mine, franchise1))
	assert.False(t, Selectable(open, admin))

	assert.True(t, Editable(admin))
	assert.False(t, Editable(franchise1))
}

func randomTerritories(f *gofakeit.Faker, n int) []Territory {
	statuses := []Status{StatusEligible, StatusReserved, StatusClosed}
	ts := make([]Territory, n)
	for i := range ts {
		ts[i] = Territory{
			ID:     uint(i + 1),
			Name:   f.City(),
			Status: statuses[f.IntRange(0, 2)],
		}
		if ts[i].Status != StatusEligible && f.Bool() {
			ts[i].AssignedFranchiseID = utils.UintPtr(uint(f.IntRange(1, 3)))
		}
	}
	return ts
}

func TestFilterVisible_FranchiseProperty(t *testing.T) {
	f := gofakeit.New(7)
	ts := randomTerritories(f, 300)

	for _, actor := range []utils.SessionData{franchise1, franchise2} {
		visible := FilterVisible(ts, actor)
		seen := make(map[uint]bool, len(visible))
		for _, tr := range visible {
			seen[tr.ID] = true
		}

		for _, tr := range ts {
			want := (!tr.Assigned() && tr.Status == StatusEligible) ||
				(tr.Assigned() && *tr.AssignedFranchiseID == *actor.FranchiseID)
			assert.Equal(t, want, seen[tr.ID], "territory %d for franchise %d", tr.ID, *actor.FranchiseID)
		}
	}

	assert.Len(t, FilterVisible(ts, admin), len(ts))
}

func TestFilterVisible_KeepsOrder(t *testing.T) {
	ts := []Territory{
		{ID: 3, Status: StatusEligible},
		{ID: 1, Status: StatusClosed},
		{ID: 2, Status: StatusEligible},
	}
	got := FilterVisible(ts, franchise1)
	if assert.Len(t, got, 2) {
		assert.Equal(t, uint(3), got[0].ID)
		assert.Equal(t, uint(2), got[1].ID)
	}
}
