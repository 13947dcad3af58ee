package domain

import (
	"fmt"
	"math"
)

// Coordinate bounds (WGS 84).
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that both axes are finite and inside their ranges.
// Boundary values are accepted.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < MinLatitude || p.Lat > MaxLatitude {
		return fmt.Errorf("%w: lat must be between -90 and 90, got %v", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < MinLongitude || p.Lon > MaxLongitude {
		return fmt.Errorf("%w: lon must be between -180 and 180, got %v", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%v,%v", p.Lat, p.Lon)
}
