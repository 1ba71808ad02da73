package territory

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

func sample() []Territory {
	return []Territory{
		{ID: 1, Name: "BORDEAUX", Region: "NOUVELLE-AQUITAINE", Status: StatusEligible, MondaysAvailable: 10800},
		{ID: 2, Name: "TOULOUSE", Region: "OCCITANIE", Status: StatusReserved, AssignedFranchiseID: utils.UintPtr(2), MondaysAvailable: 9000},
		{ID: 3, Name: "PESSAC", Region: "NOUVELLE-AQUITAINE", Status: StatusReserved, AssignedFranchiseID: utils.UintPtr(1), MondaysAvailable: 6800},
		{ID: 4, Name: "ANGOULÊME", Region: "NOUVELLE-AQUITAINE", Status: StatusClosed, MondaysAvailable: 4100},
		{ID: 5, Name: "ALBI", Region: "OCCITANIE", Status: StatusEligible, MondaysAvailable: 6800},
	}
}

func TestCountByStatus(t *testing.T) {
	got := CountByStatus(sample())
	assert.Equal(t, map[Status]int{StatusEligible: 2, StatusReserved: 2, StatusClosed: 1}, got)

	assert.Equal(t, map[Status]int{StatusEligible: 0, StatusReserved: 0, StatusClosed: 0}, CountByStatus(nil))
}

func TestTotalMondays(t *testing.T) {
	ts := sample()
	assert.Equal(t, 37500, TotalMondays(ts))
	assert.Equal(t, 15800, TotalMondays(ts, Assigned()))
	assert.Equal(t, 6800, TotalMondays(ts, AssignedTo(1)))
	assert.Equal(t, 15800, TotalMondays(ts, InRegion("OCCITANIE")))
	assert.Equal(t, 6800, TotalMondays(ts, InRegion("OCCITANIE"), WithStatus(StatusEligible)))
	assert.Equal(t, 17600, TotalMondays(ts, WithStatus(StatusEligible), Unassigned()))
	assert.Equal(t, 0, TotalMondays(nil))
}

func TestGroupByRegion(t *testing.T) {
	got := GroupByRegion(sample())
	assert.Equal(t, []RegionSummary{
		{Region: "NOUVELLE-AQUITAINE", Territories: 3, Mondays: 21700},
		{Region: "OCCITANIE", Territories: 2, Mondays: 15800},
	}, got)
}

func TestTopByMondays(t *testing.T) {
	ts := sample()

	top := TopByMondays(ts, 3)
	if assert.Len(t, top, 3) {
		assert.Equal(t, uint(1), top[0].ID)
		assert.Equal(t, uint(2), top[1].ID)
		assert.Equal(t, uint(3), top[2].ID, "ties keep input order")
	}
	assert.Equal(t, uint(1), ts[0].ID, "input untouched")
	assert.Equal(t, uint(5), ts[4].ID, "input untouched")

	assert.Len(t, TopByMondays(ts, 10), len(ts))
	assert.Empty(t, TopByMondays(ts, 0))
	assert.Empty(t, TopByMondays(ts, -1))
	assert.Empty(t, TopByMondays(nil, 3))
}

func TestTopByMondays_StableProperty(t *testing.T) {
	f := gofakeit.New(11)
	ts := make([]Territory, 200)
	for i := range ts {
		ts[i] = Territory{ID: uint(i + 1), MondaysAvailable: f.IntRange(0, 20)}
	}

	for _, n := range []int{1, 10, 50, 200, 500} {
		top := TopByMondays(ts, n)
		want := n
		if want > len(ts) {
			want = len(ts)
		}
		assert.Len(t, top, want)
		for i := 1; i < len(top); i++ {
			prev, cur := top[i-1], top[i]
			assert.GreaterOrEqual(t, prev.MondaysAvailable, cur.MondaysAvailable)
			if prev.MondaysAvailable == cur.MondaysAvailable {
				assert.Less(t, prev.ID, cur.ID, "equal capacities keep input order")
			}
		}
	}
}

func TestSearch(t *testing.T) {
	ts := []Territory{
		{ID: 1, Name: "BORDEAUX", Departement: "33", Region: "NOUVELLE-AQUITAINE", Status: StatusEligible},
		{ID: 2, Name: "MÉRIGNAC", Departement: "33", Region: "NOUVELLE-AQUITAINE", Status: StatusEligible},
		{ID: 5, Name: "ANGOULÊME", Departement: "16", Region: "NOUVELLE-AQUITAINE", Status: StatusClosed},
		{ID: 9, Name: "ALBI", Departement: "81", Region: "OCCITANIE", Status: StatusEligible},
		{ID: 12, Name: "AJACCIO", Departement: "2A", Region: "CORSE", Status: StatusEligible},
	}
	ids := func(ts []Territory) []uint {
		out := []uint{}
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []uint{2}, ids(Search(ts, Query{Text: "merignac"})))
	assert.Equal(t, []uint{5}, ids(Search(ts, Query{Text: "Angoulême"})))
	assert.Equal(t, []uint{1, 2}, ids(Search(ts, Query{Text: "33"})))
	assert.Equal(t, []uint{9}, ids(Search(ts, Query{Text: "8"})))
	assert.Equal(t, []uint{5, 9}, ids(Search(ts, Query{Text: "1"})), "département matches anywhere in the code")
	assert.Equal(t, []uint{12}, ids(Search(ts, Query{Text: "2A"})))
	assert.Equal(t, []uint{12}, ids(Search(ts, Query{Text: "2a"})))

	closed := StatusClosed
	assert.Equal(t, []uint{5}, ids(Search(ts, Query{Status: &closed})))
	assert.Equal(t, []uint{9}, ids(Search(ts, Query{Region: "occitanie"})))
	assert.Equal(t, []uint{1, 2, 5, 9, 12}, ids(Search(ts, Query{})))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "merignac", Fold("MÉRIGNAC"))
	assert.Equal(t, "angouleme", Fold("Angoulême"))
	assert.Equal(t, "", Fold(""))
}
