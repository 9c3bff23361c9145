// README: Demand aggregator — counts live requests around a point.
package demand

import (
	"context"
	"time"

	"velo/internal/geo"
	"velo/internal/types"
)

// BacklogStore is implemented by the Postgres store and by test fakes.
type BacklogStore interface {
	FindNear(ctx context.Context, center types.Point, radiusM float64, window time.Duration, statuses []string) ([]Sample, error)
}

const queryTimeout = 2 * time.Second

type Service struct {
	store BacklogStore
}

func NewService(store BacklogStore) *Service {
	return &Service{store: store}
}

// CountNearby counts pending and assigned-but-unstarted requests created
// within the trailing window and inside radiusM of center. The store query
// runs under a bounded timeout; a stuck backlog must not stall a quote.
func (s *Service) CountNearby(ctx context.Context, center types.Point, radiusM float64, window time.Duration) (int, error) {
	if err := center.Validate(); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	samples, err := s.store.FindNear(ctx, center, radiusM, window, []string{StatusPending, StatusAssigned})
	if err != nil {
		return 0, err
	}

	// The store prefilters with a bounding box; cut precisely here.
	n := 0
	for _, sample := range samples {
		if geo.WithinRadius(center, sample.Pickup, radiusM) {
			n++
		}
	}
	return n, nil
}
