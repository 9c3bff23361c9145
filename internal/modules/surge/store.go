// README: Zone surge store backed by a Redis hash.
package surge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"velo/internal/types"
)

const zoneSurgeKey = "surge:zones"

type ZoneStore struct {
	redis *redis.Client
}

func NewZoneStore(client *redis.Client) *ZoneStore {
	return &ZoneStore{redis: client}
}

// SaveZoneSurge publishes the current multiplier for a zone. Stored as
// "multiplier|rfc3339" so readers can discard decayed values.
func (s *ZoneStore) SaveZoneSurge(ctx context.Context, zoneID types.ID, multiplier float64, at time.Time) error {
	val := fmt.Sprintf("%.3f|%s", multiplier, at.UTC().Format(time.RFC3339))
	return s.redis.HSet(ctx, zoneSurgeKey, string(zoneID), val).Err()
}

// ReadAll returns the last published multiplier per zone.
func (s *ZoneStore) ReadAll(ctx context.Context) (map[string]float64, error) {
	raw, err := s.redis.HGetAll(ctx, zoneSurgeKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(raw))
	for zone, val := range raw {
		for i := 0; i < len(val); i++ {
			if val[i] == '|' {
				if m, err := strconv.ParseFloat(val[:i], 64); err == nil {
					out[zone] = m
				}
				break
			}
		}
	}
	return out, nil
}
