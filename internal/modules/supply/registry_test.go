package supply

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"velo/internal/types"
)

var taipei = types.Point{Lat: 25.0340, Lng: 121.5645}

func presenceAt(id string, p types.Point, at time.Time) Presence {
	return Presence{
		ProviderID: types.ID(id),
		Point:      p,
		Online:     true,
		Available:  true,
		UpdatedAt:  at,
	}
}

func TestRegistry_UpsertAndQuery(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.Upsert(presenceAt("d1", types.Point{Lat: 25.0345, Lng: 121.5650}, now))
	r.Upsert(presenceAt("d2", types.Point{Lat: 25.0360, Lng: 121.5700}, now))
	// Well outside a 2km radius.
	r.Upsert(presenceAt("d3", types.Point{Lat: 25.2000, Lng: 121.9000}, now))

	got := r.QueryNearby(taipei, 2000, QueryFilter{})
	if len(got) != 2 {
		t.Fatalf("expected 2 nearby, got %d", len(got))
	}
	if got[0].ProviderID != "d1" {
		t.Errorf("expected closest first, got %s", got[0].ProviderID)
	}
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := NewRegistry()
	newer := time.Now()
	older := newer.Add(-30 * time.Second)

	newPos := types.Point{Lat: 25.04, Lng: 121.57}
	if !r.Upsert(presenceAt("d1", newPos, newer)) {
		t.Fatalf("first write must be applied")
	}
	// An event with an older timestamp arrives late; it must be dropped.
	if r.Upsert(presenceAt("d1", types.Point{Lat: 24.00, Lng: 120.00}, older)) {
		t.Fatalf("stale write must be dropped")
	}

	p, ok := r.Get("d1")
	if !ok {
		t.Fatalf("provider missing")
	}
	if p.Point != newPos {
		t.Errorf("registry lost the newer state: %+v", p.Point)
	}
}

func TestRegistry_UpdateMergesUnderLWW(t *testing.T) {
	r := NewRegistry()
	t0 := time.Now()

	r.Upsert(presenceAt("d1", taipei, t0))

	// Status change arrives with a newer timestamp and no location.
	r.Update("d1", t0.Add(time.Second), func(p Presence) Presence {
		p.Available = false
		return p
	})
	p, _ := r.Get("d1")
	if p.Available {
		t.Errorf("availability flag not applied")
	}
	if p.Point != taipei {
		t.Errorf("location lost by status merge")
	}

	// An older status change must not roll the flag back.
	applied := r.Update("d1", t0.Add(-time.Second), func(p Presence) Presence {
		p.Available = true
		return p
	})
	if applied {
		t.Errorf("stale update must be dropped")
	}
}

func TestRegistry_QueryFilters(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	online := presenceAt("online", taipei, now)
	busy := presenceAt("busy", taipei, now)
	busy.Available = false
	offline := presenceAt("offline", taipei, now)
	offline.Online = false
	stale := presenceAt("stale", taipei, now.Add(-15*time.Minute))

	for _, p := range []Presence{online, busy, offline, stale} {
		r.Upsert(p)
	}

	n := r.CountNearby(taipei, 1000, QueryFilter{OnlyOnline: true, OnlyAvailable: true, MaxAge: 10 * time.Minute})
	if n != 1 {
		t.Errorf("expected 1 dispatchable provider, got %d", n)
	}

	// Without filters the stale entry is still skipped by MaxAge alone.
	n = r.CountNearby(taipei, 1000, QueryFilter{MaxAge: 10 * time.Minute})
	if n != 3 {
		t.Errorf("expected 3 fresh providers, got %d", n)
	}
}

func TestRegistry_SweepEvictsStale(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.Upsert(presenceAt("fresh", taipei, now))
	r.Upsert(presenceAt("stale1", taipei, now.Add(-20*time.Minute)))
	r.Upsert(presenceAt("stale2", taipei, now.Add(-11*time.Minute)))

	removed := r.SweepOnce(now.Add(-10 * time.Minute))
	if removed != 2 {
		t.Fatalf("expected 2 evicted, got %d", removed)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 remaining, got %d", r.Len())
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Errorf("fresh entry must survive the sweep")
	}
}

func TestRegistry_RemoveIfNotNewer(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.Upsert(presenceAt("d1", taipei, now))

	// A removal carrying an older timestamp is blocked by the stored record.
	if r.RemoveIfNotNewer("d1", now.Add(-time.Second)) {
		t.Fatalf("older removal must not win over newer presence")
	}
	if _, ok := r.Get("d1"); !ok {
		t.Fatalf("blocked removal must leave the record intact")
	}

	if !r.RemoveIfNotNewer("d1", now.Add(time.Second)) {
		t.Fatalf("newer removal must be applied")
	}
	if _, ok := r.Get("d1"); ok {
		t.Errorf("record must be gone after removal")
	}

	// Absent ids report absent, so callers can clear external mirrors.
	if !r.RemoveIfNotNewer("ghost", now) {
		t.Errorf("removal of an absent id must report absence")
	}
}

func TestRegistry_ConcurrentUpserts(t *testing.T) {
	r := NewRegistry()
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("d%d", i%10)
			for j := 0; j < 100; j++ {
				r.Upsert(presenceAt(id, taipei, base.Add(time.Duration(j)*time.Millisecond)))
				r.Update(types.ID(id), base.Add(time.Duration(j)*time.Millisecond), func(p Presence) Presence {
					p.Available = j%2 == 0
					return p
				})
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 10 {
		t.Errorf("expected 10 providers after concurrent writes, got %d", r.Len())
	}
}
