// README: Shared identifier and coordinate value objects used across modules.
package types

import "errors"

// ID identifies providers, requests and zones.
type ID string

// ErrInvalidCoordinate is returned when a latitude/longitude pair is outside
// the valid WGS84 range. Callers must reject the request before any
// computation happens.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks the coordinate ranges: lat in [-90,90], lng in [-180,180].
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}
