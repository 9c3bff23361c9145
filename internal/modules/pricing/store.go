// README: Pricing rate schedules backed by PostgreSQL.
package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// LoadRates reads the rate schedule. An empty table is an error so callers
// fall back to the compiled-in defaults explicitly rather than pricing
// everything at zero.
func (s *Store) LoadRates(ctx context.Context) (map[ServiceType]Rate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT service_type, base_cents, per_km_cents, per_min_cents, multiplier
		FROM service_rates`)
	if err != nil {
		return nil, fmt.Errorf("query service_rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[ServiceType]Rate)
	for rows.Next() {
		var r Rate
		var st string
		if err := rows.Scan(&st, &r.BaseCents, &r.PerKmCents, &r.PerMinCents, &r.Multiplier); err != nil {
			return nil, fmt.Errorf("scan service_rates: %w", err)
		}
		r.ServiceType = ServiceType(st)
		if !r.ServiceType.Valid() {
			continue
		}
		rates[r.ServiceType] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("service_rates table is empty")
	}
	return rates, nil
}
