// README: Backlog store backed by PostgreSQL.
package demand

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"velo/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// metersPerDegreeLat is close enough for a bounding-box prefilter; the exact
// haversine cut happens in the service.
const metersPerDegreeLat = 111320.0

// FindNear returns backlog requests with the given statuses created within
// the window, prefiltered by a bounding box around center.
func (s *Store) FindNear(ctx context.Context, center types.Point, radiusM float64, window time.Duration, statuses []string) ([]Sample, error) {
	latDelta := radiusM / metersPerDegreeLat
	lngDelta := radiusM / (metersPerDegreeLat * math.Max(0.01, math.Cos(center.Lat*math.Pi/180)))

	rows, err := s.db.Query(ctx, `
		SELECT id, pickup_lat, pickup_lng, status, created_at
		FROM trip_requests
		WHERE status = ANY($1)
		  AND created_at >= $2
		  AND pickup_lat BETWEEN $3 AND $4
		  AND pickup_lng BETWEEN $5 AND $6
	`, statuses, time.Now().Add(-window),
		center.Lat-latDelta, center.Lat+latDelta,
		center.Lng-lngDelta, center.Lng+lngDelta)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			id        string
			lat, lng  float64
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &lat, &lng, &status, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, Sample{
			RequestID: types.ID(id),
			Pickup:    types.Point{Lat: lat, Lng: lng},
			Status:    status,
			CreatedAt: createdAt,
		})
	}
	return out, rows.Err()
}
