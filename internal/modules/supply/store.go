// README: Supply store — Redis GEO mirror plus Postgres provider directory.
package supply

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"velo/internal/types"
)

const providerGeoKey = "geo:providers"

// Store mirrors presence into Redis GEO for cross-instance visibility and
// reads the provider directory for cold-start warming. The in-process
// registry stays authoritative; everything here is best-effort.
type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

func (s *Store) MirrorUpsert(ctx context.Context, id types.ID, pos types.Point) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.GeoAdd(ctx, providerGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

func (s *Store) MirrorRemove(ctx context.Context, id types.ID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.ZRem(ctx, providerGeoKey, string(id)).Err()
}

// MirrorCount counts mirrored providers within radius. Used only as a
// cold-start fallback when the local registry has no entries yet.
func (s *Store) MirrorCount(ctx context.Context, center types.Point, radiusM float64) (int, error) {
	if s.redis == nil {
		return 0, nil
	}
	ids, err := s.redis.GeoSearch(ctx, providerGeoKey, &redis.GeoSearchQuery{
		Longitude:  center.Lng,
		Latitude:   center.Lat,
		Radius:     radiusM / 1000.0,
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// LoadActiveProviders reads the provider directory for registry warm-up:
// providers flagged online with a recent last-known location.
func (s *Store) LoadActiveProviders(ctx context.Context, notBefore time.Time) ([]Presence, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, last_lat, last_lng, is_online, is_available, location_updated_at
		FROM providers
		WHERE is_online = TRUE AND location_updated_at >= $1
	`, notBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Presence
	for rows.Next() {
		var (
			id         string
			lat, lng   float64
			online     bool
			available  bool
			updatedAt  time.Time
		)
		if err := rows.Scan(&id, &lat, &lng, &online, &available, &updatedAt); err != nil {
			return nil, err
		}
		out = append(out, Presence{
			ProviderID: types.ID(id),
			Point:      types.Point{Lat: lat, Lng: lng},
			Online:     online,
			Available:  available,
			UpdatedAt:  updatedAt,
		})
	}
	return out, rows.Err()
}
