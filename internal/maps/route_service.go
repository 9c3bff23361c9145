package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"velo/internal/types"
)

// ErrTimeout is returned when the routing backend does not answer within the
// caller's deadline. The quote is retryable; it is never silently defaulted,
// since a price without distance is meaningless.
var ErrTimeout = errors.New("routing timeout")

// TravelEstimate is the distance/duration pair a fare quote is built on.
type TravelEstimate struct {
	DistanceMeters  float64
	DurationMinutes float64
}

// TravelEstimator abstracts the routing backend so pricing stays testable.
type TravelEstimator interface {
	EstimateTravel(ctx context.Context, from, to types.Point) (TravelEstimate, error)
}

// RouteService handles interactions with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// EstimateTravel returns driving distance and duration from origin to
// destination. Context deadline expiry maps to ErrTimeout so callers can
// classify the failure as retryable.
func (s *RouteService) EstimateTravel(ctx context.Context, from, to types.Point) (TravelEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", from.Lat, from.Lng),
		Destination: fmt.Sprintf("%f,%f", to.Lat, to.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return TravelEstimate{}, ErrTimeout
		}
		return TravelEstimate{}, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return TravelEstimate{}, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return TravelEstimate{
		DistanceMeters:  float64(leg.Distance.Meters),
		DurationMinutes: leg.Duration.Minutes(),
	}, nil
}

// StaticEstimator approximates travel over the great-circle distance at a
// fixed urban speed. Used when no maps API key is configured and in tests.
type StaticEstimator struct {
	AvgSpeedKmH float64
	Distance    func(a, b types.Point) float64
	Latency     time.Duration // simulated backend latency, 0 in production
}

func (s StaticEstimator) EstimateTravel(ctx context.Context, from, to types.Point) (TravelEstimate, error) {
	if s.Latency > 0 {
		select {
		case <-time.After(s.Latency):
		case <-ctx.Done():
			return TravelEstimate{}, ErrTimeout
		}
	}
	speed := s.AvgSpeedKmH
	if speed <= 0 {
		speed = 40.0
	}
	distM := s.Distance(from, to)
	durMin := (distM / 1000.0 / speed) * 60.0
	return TravelEstimate{DistanceMeters: distM, DurationMinutes: durMin}, nil
}
