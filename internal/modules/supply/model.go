// README: Provider presence records and ingress event shapes.
package supply

import (
	"time"

	"velo/internal/types"
)

// Presence is a provider's last reported location and status. It is a
// volatile, best-effort view: recomputed from events, never persisted
// long-term, evicted when stale.
type Presence struct {
	ProviderID types.ID
	Point      types.Point
	Heading    *float64
	Online     bool
	Available  bool
	UpdatedAt  time.Time
}

// LocationEvent is an inbound location ping. Delivery is at-least-once and
// may arrive out of order; TsMs orders writes, not arrival.
type LocationEvent struct {
	ProviderID string   `json:"provider_id"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Heading    *float64 `json:"heading,omitempty"`
	Available  *bool    `json:"available,omitempty"`
	TsMs       int64    `json:"ts_ms"`
}

// StatusEvent is an inbound online/availability change.
type StatusEvent struct {
	ProviderID string `json:"provider_id"`
	Online     bool   `json:"online"`
	Available  bool   `json:"available"`
	TsMs       int64  `json:"ts_ms"`
}

// NearbyProvider is a query result with the distance from the queried origin.
type NearbyProvider struct {
	Presence
	DistanceM float64
}
