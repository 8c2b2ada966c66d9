package geo

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

var ErrInvalidCoords = errors.New("invalid coordinates")

// Coords is a latitude/longitude pair. It serializes as [lat, lng].
type Coords [2]float64

func NewCoords(lat, lng float64) Coords {
	return Coords{lat, lng}
}

func (c Coords) Lat() float64 { return c[0] }
func (c Coords) Lng() float64 { return c[1] }

// ValidateCoords rejects non-finite values. Ranges are not enforced: the map
// does not wrap longitudes, so a click past the antimeridian reports lng > 180.
func ValidateCoords(c Coords) error {
	if !finite(c.Lat()) {
		return fmt.Errorf("%w: latitude is not a finite number", ErrInvalidCoords)
	}
	if !finite(c.Lng()) {
		return fmt.Errorf("%w: longitude is not a finite number", ErrInvalidCoords)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
