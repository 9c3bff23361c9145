// README: Shared-ride fare splitting with a capped group discount.
package pricing

import (
	"math"

	"velo/internal/types"
)

const (
	maxSharedPassengers      = 4
	minPassengersForDiscount = 2
	perPassengerDiscount     = 0.10
	maxGroupDiscount         = 0.50
)

// SplitSharedRide recomputes the per-passenger price as passengers join.
// Counts above the cap do not deepen the discount; non-positive counts are
// rejected.
func SplitSharedRide(totalGroupPrice types.Money, passengers int) (types.Money, error) {
	if passengers <= 0 {
		return types.Money{}, ErrInvalidPassengerCount
	}
	if passengers > maxSharedPassengers {
		passengers = maxSharedPassengers
	}

	discount := 0.0
	if passengers >= minPassengersForDiscount {
		discount = float64(passengers-1) * perPassengerDiscount
		if discount > maxGroupDiscount {
			discount = maxGroupDiscount
		}
	}

	per := math.Round(float64(totalGroupPrice.Amount) * (1.0 - discount) / float64(passengers))
	return types.Money{Amount: int64(per), Currency: totalGroupPrice.Currency}, nil
}
