// README: Demand samples read from the request backlog.
package demand

import (
	"time"

	"velo/internal/types"
)

// Status values counted as live demand. Requests past assignment-start no
// longer compete for supply.
const (
	StatusPending  = "pending"
	StatusAssigned = "assigned"
)

// Sample is a read-only snapshot of one pending or in-flight request. The
// backlog is owned by the booking subsystem; this core only counts.
type Sample struct {
	RequestID types.ID
	Pickup    types.Point
	Status    string
	CreatedAt time.Time
}
