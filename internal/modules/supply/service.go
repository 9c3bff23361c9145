// README: Supply service — applies ingress events to the registry and serves nearby queries.
package supply

import (
	"context"
	"errors"
	"log"
	"time"

	"velo/internal/types"
)

var (
	ErrBadEvent = errors.New("bad supply event")
)

type Config struct {
	SweepInterval time.Duration
	EvictAfter    time.Duration
	QueryMaxAge   time.Duration
}

func DefaultConfig() Config {
	return Config{
		SweepInterval: 2 * time.Minute,
		EvictAfter:    10 * time.Minute,
		QueryMaxAge:   10 * time.Minute,
	}
}

type Service struct {
	registry *Registry
	store    *Store
	cfg      Config
}

func NewService(registry *Registry, store *Store, cfg Config) *Service {
	return &Service{registry: registry, store: store, cfg: cfg}
}

// ApplyLocation applies a location ping. Out-of-range coordinates are
// rejected before any registry write; stale timestamps are dropped by the
// registry's LWW rule. The Redis mirror write is best-effort.
func (s *Service) ApplyLocation(ctx context.Context, ev LocationEvent) error {
	if ev.ProviderID == "" || ev.TsMs <= 0 {
		return ErrBadEvent
	}
	pos := types.Point{Lat: ev.Lat, Lng: ev.Lng}
	if err := pos.Validate(); err != nil {
		return err
	}
	ts := time.UnixMilli(ev.TsMs)
	id := types.ID(ev.ProviderID)

	applied := s.registry.Update(id, ts, func(p Presence) Presence {
		p.Point = pos
		p.Heading = ev.Heading
		p.Online = true
		if ev.Available != nil {
			p.Available = *ev.Available
		}
		return p
	})
	if !applied {
		return nil
	}
	if s.store != nil {
		if err := s.store.MirrorUpsert(ctx, id, pos); err != nil {
			log.Printf("supply: geo mirror upsert failed for %s: %v", id, err)
		}
	}
	return nil
}

// ApplyStatus applies an online/availability change. Going offline removes
// the provider from the live view entirely.
func (s *Service) ApplyStatus(ctx context.Context, ev StatusEvent) error {
	if ev.ProviderID == "" || ev.TsMs <= 0 {
		return ErrBadEvent
	}
	id := types.ID(ev.ProviderID)
	ts := time.UnixMilli(ev.TsMs)

	if !ev.Online {
		// Single-lock check-and-delete: a location event committing between a
		// staleness check and the removal must win.
		if s.registry.RemoveIfNotNewer(id, ts) && s.store != nil {
			if err := s.store.MirrorRemove(ctx, id); err != nil {
				log.Printf("supply: geo mirror remove failed for %s: %v", id, err)
			}
		}
		return nil
	}

	s.registry.Update(id, ts, func(p Presence) Presence {
		p.Online = true
		p.Available = ev.Available
		return p
	})
	return nil
}

func (s *Service) Remove(ctx context.Context, id types.ID) {
	s.registry.Remove(id)
	if s.store != nil {
		if err := s.store.MirrorRemove(ctx, id); err != nil {
			log.Printf("supply: geo mirror remove failed for %s: %v", id, err)
		}
	}
}

// QueryNearby lists providers around center, closest first.
func (s *Service) QueryNearby(ctx context.Context, center types.Point, radiusM float64, onlyOnline, onlyAvailable bool) ([]NearbyProvider, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	return s.registry.QueryNearby(center, radiusM, QueryFilter{
		OnlyOnline:    onlyOnline,
		OnlyAvailable: onlyAvailable,
		MaxAge:        s.cfg.QueryMaxAge,
	}), nil
}

// CountNearby counts providers around center. When the local registry is
// completely empty (fresh process, no events yet) it falls back to the Redis
// mirror written by peer instances.
func (s *Service) CountNearby(ctx context.Context, center types.Point, radiusM float64, onlyOnline, onlyAvailable bool) (int, error) {
	if err := center.Validate(); err != nil {
		return 0, err
	}
	n := s.registry.CountNearby(center, radiusM, QueryFilter{
		OnlyOnline:    onlyOnline,
		OnlyAvailable: onlyAvailable,
		MaxAge:        s.cfg.QueryMaxAge,
	})
	if n > 0 || s.registry.Len() > 0 || s.store == nil {
		return n, nil
	}
	mirrored, err := s.store.MirrorCount(ctx, center, radiusM)
	if err != nil {
		log.Printf("supply: mirror count fallback failed: %v", err)
		return 0, nil
	}
	return mirrored, nil
}

// WarmFromDirectory seeds the registry from the provider directory so the
// first quotes after a restart see a realistic supply picture.
func (s *Service) WarmFromDirectory(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	providers, err := s.store.LoadActiveProviders(ctx, time.Now().Add(-s.cfg.EvictAfter))
	if err != nil {
		return err
	}
	for _, p := range providers {
		s.registry.Upsert(p)
	}
	if len(providers) > 0 {
		log.Printf("supply: warmed registry with %d providers from directory", len(providers))
	}
	return nil
}

// RunSweeper runs the staleness sweep until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context) {
	s.registry.RunSweeper(ctx, s.cfg.SweepInterval, s.cfg.EvictAfter)
}
