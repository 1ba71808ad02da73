package territory

import (
	"math"

	"github.com/tawkr/tawkr-backend/internal/domain"
)

// Mondays derives the sellable door-to-door capacity of a territory from its
// housing stock: round(logements * pctResidPrinc / 100).
//
// This is the only place the formula lives. Territories carry the result in
// MondaysAvailable, refreshed by Recompute on every save.
func Mondays(logements int, pctResidPrinc float64) (int, error) {
	if logements < 0 {
		return 0, domain.NewInvalidArgumentError("logements must be non-negative, got %d", logements)
	}
	if math.IsNaN(pctResidPrinc) || math.IsInf(pctResidPrinc, 0) {
		return 0, domain.NewInvalidArgumentError("pct_resid_princ must be a finite number")
	}
	if pctResidPrinc < 0 || pctResidPrinc > 100 {
		return 0, domain.NewInvalidArgumentError("pct_resid_princ must be within [0,100], got %v", pctResidPrinc)
	}

	// Inputs are non-negative, so math.Round (half away from zero) is half-up.
	return int(math.Round(float64(logements) * pctResidPrinc / 100)), nil
}
