package territory

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawkr/tawkr-backend/internal/domain"
)

func TestMondays(t *testing.T) {
	tests := []struct {
		name      string
		logements int
		pct       float64
		want      int
	}{
		{"bordeaux", 12000, 90, 10800},
		{"merignac", 9500, 94, 8930},
		{"angouleme", 5000, 82, 4100},
		{"half rounds up", 1, 50, 1},
		{"below half rounds down", 1, 49, 0},
		{"no housing", 0, 75, 0},
		{"no main residences", 4000, 0, 0},
		{"all main residences", 4000, 100, 4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mondays(tt.logements, tt.pct)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMondays_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		logements int
		pct       float64
	}{
		{"negative logements", -1, 50},
		{"negative pct", 100, -0.1},
		{"pct above 100", 100, 100.5},
		{"NaN", 100, math.NaN()},
		{"Inf", 100, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Mondays(tt.logements, tt.pct)
			assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))
		})
	}
}

func TestMondays_Properties(t *testing.T) {
	f := gofakeit.New(42)

	for i := 0; i < 500; i++ {
		logements := f.IntRange(0, 200000)
		lo := f.Float64Range(0, 100)
		hi := f.Float64Range(lo, 100)

		mLo, err := Mondays(logements, lo)
		require.NoError(t, err)
		mHi, err := Mondays(logements, hi)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, mLo, 0)
		assert.LessOrEqual(t, mHi, logements)
		assert.LessOrEqual(t, mLo, mHi, "logements=%d lo=%v hi=%v", logements, lo, hi)
	}
}

func TestRecompute_KeepsDerivedCapacity(t *testing.T) {
	tr := Territory{CodeINSEE: "33063", Logements: 12000, PctResidPrinc: 90}
	require.NoError(t, tr.Recompute())
	assert.Equal(t, 10800, tr.MondaysAvailable)

	tr.PctResidPrinc = 50
	require.NoError(t, tr.Recompute())
	assert.Equal(t, 6000, tr.MondaysAvailable)

	tr.PctResidPrinc = 101
	assert.Error(t, tr.Recompute())
	assert.Equal(t, 6000, tr.MondaysAvailable, "failed recompute leaves the last valid value")
}
