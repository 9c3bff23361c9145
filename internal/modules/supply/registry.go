// README: Sharded in-memory registry of provider presence with LWW semantics.
package supply

import (
	"context"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"velo/internal/geo"
	"velo/internal/types"
)

const shardCount = 32

// Registry is the single shared mutable resource of the pricing core. Writes
// for one provider are serialized by that provider's shard lock, so a
// location ping and a status ping arriving concurrently can never interleave
// inside one record. There is no global ordering across providers.
type Registry struct {
	shards [shardCount]registryShard
}

type registryShard struct {
	mu      sync.RWMutex
	entries map[types.ID]Presence
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].entries = make(map[types.ID]Presence)
	}
	return r
}

func (r *Registry) shardFor(id types.ID) *registryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &r.shards[h.Sum32()%shardCount]
}

// Upsert stores the whole presence record atomically. A record carrying an
// older UpdatedAt than the stored one is dropped (last-write-wins by event
// timestamp, not arrival order). Reports whether the write was applied.
func (r *Registry) Upsert(p Presence) bool {
	s := r.shardFor(p.ProviderID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[p.ProviderID]; ok && old.UpdatedAt.After(p.UpdatedAt) {
		return false
	}
	s.entries[p.ProviderID] = p
	return true
}

// Update applies mutate to the current record (zero value when absent) under
// the shard lock. The same LWW timestamp rule applies. Used by status events
// that change flags without carrying a location.
func (r *Registry) Update(id types.ID, ts time.Time, mutate func(Presence) Presence) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.entries[id]
	if ok && old.UpdatedAt.After(ts) {
		return false
	}
	if !ok {
		old = Presence{ProviderID: id}
	}
	next := mutate(old)
	next.ProviderID = id
	next.UpdatedAt = ts
	s.entries[id] = next
	return true
}

func (r *Registry) Remove(id types.ID) {
	s := r.shardFor(id)
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// RemoveIfNotNewer deletes the record unless a newer one is stored. Check and
// delete happen under one shard lock, so a location event committing between
// them can never be wiped by a stale offline event. Reports whether the
// provider is absent from the registry afterwards.
func (r *Registry) RemoveIfNotNewer(id types.ID, ts time.Time) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.entries[id]; ok {
		if p.UpdatedAt.After(ts) {
			return false
		}
		delete(s.entries, id)
	}
	return true
}

func (r *Registry) Get(id types.ID) (Presence, bool) {
	s := r.shardFor(id)
	s.mu.RLock()
	p, ok := s.entries[id]
	s.mu.RUnlock()
	return p, ok
}

// Len returns the number of tracked providers, stale or not.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// QueryFilter narrows QueryNearby/CountNearby results.
type QueryFilter struct {
	OnlyOnline    bool
	OnlyAvailable bool
	MaxAge        time.Duration // entries older than this are skipped even before the sweep runs
}

// QueryNearby returns providers within radiusM of center, closest first.
// Reads take shard read-locks only; slightly stale results are acceptable.
func (r *Registry) QueryNearby(center types.Point, radiusM float64, f QueryFilter) []NearbyProvider {
	now := time.Now()
	var out []NearbyProvider
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for _, p := range s.entries {
			if f.OnlyOnline && !p.Online {
				continue
			}
			if f.OnlyAvailable && !p.Available {
				continue
			}
			if f.MaxAge > 0 && now.Sub(p.UpdatedAt) > f.MaxAge {
				continue
			}
			d := geo.DistanceMeters(center, p.Point)
			if d <= radiusM {
				out = append(out, NearbyProvider{Presence: p, DistanceM: d})
			}
		}
		s.mu.RUnlock()
	}
	geo.SortByDistance(out, func(p NearbyProvider) float64 { return p.DistanceM })
	return out
}

func (r *Registry) CountNearby(center types.Point, radiusM float64, f QueryFilter) int {
	return len(r.QueryNearby(center, radiusM, f))
}

// SweepOnce evicts entries last updated before cutoff and returns how many
// were removed.
func (r *Registry) SweepOnce(cutoff time.Time) int {
	removed := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		for id, p := range s.entries {
			if p.UpdatedAt.Before(cutoff) {
				delete(s.entries, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// RunSweeper evicts stale entries every interval until ctx is cancelled.
// Queries filter by MaxAge independently, so a slow sweep never causes stale
// over-counting.
func (r *Registry) RunSweeper(ctx context.Context, interval, evictAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.SweepOnce(time.Now().Add(-evictAfter)); n > 0 {
				log.Printf("supply: sweep evicted %d stale providers", n)
			}
		}
	}
}
