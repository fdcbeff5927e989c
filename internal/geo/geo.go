// Package geo provides coordinate validation, great-circle distance
// computation, and display formatting for geographic points. It is pure and
// dependency-free: no I/O, no logging, and no panics for expected bad input.
//
// Validation semantics are deliberately strict for this domain:
//   - latitudes outside [-90, 90] and longitudes outside [-180, 180] are invalid
//   - NaN and ±Inf are invalid
//   - the exact point (0, 0) is rejected as an unset/default GPS sentinel
//     ("null island" is open ocean and never a legitimate shop location here)
//
// Distances use the haversine formula with a spherical Earth of radius
// 6371 km and are rounded to two decimal places, which keeps results symmetric
// under argument swap and exactly zero for identical points.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Sentinel validation errors. Callers are expected to branch with errors.Is
// and translate them into user-facing messages at the transport layer.
var (
	// ErrNotFinite indicates a coordinate that is NaN or infinite.
	ErrNotFinite = errors.New("coordinates must be finite numbers")

	// ErrLatitudeRange indicates a latitude outside [-90, 90].
	ErrLatitudeRange = errors.New("latitude must be between -90 and 90")

	// ErrLongitudeRange indicates a longitude outside [-180, 180].
	ErrLongitudeRange = errors.New("longitude must be between -180 and 180")

	// ErrNullIsland indicates the exact (0, 0) point, treated as an
	// unset/default reading rather than a real location.
	ErrNullIsland = errors.New("coordinates cannot be (0, 0) - likely default/mock coordinates")
)

// Point is a WGS 84 geographic coordinate pair.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate reports whether the point passes ValidateCoordinates.
func (p Point) Validate() error { return ValidateCoordinates(p.Lat, p.Lon) }

// ValidateCoordinates checks a latitude/longitude pair for sanity. It returns
// nil for a usable location and one of the sentinel errors above otherwise.
// It never panics; a failure is an expected, recoverable condition so that a
// batch operation over many candidate points can skip invalid ones.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return ErrNotFinite
	}
	if lat < -90 || lat > 90 {
		return ErrLatitudeRange
	}
	if lon < -180 || lon > 180 {
		return ErrLongitudeRange
	}
	if lat == 0 && lon == 0 {
		return ErrNullIsland
	}
	return nil
}

// Distance computes the great-circle distance in kilometers between two
// points using the haversine formula, rounded to two decimal places.
//
// Both endpoints are validated first; on failure the validation error is
// returned and the distance is 0. The result is symmetric under swapping the
// endpoints and exactly 0 for identical points.
func Distance(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := ValidateCoordinates(lat1, lon1); err != nil {
		return 0, fmt.Errorf("origin: %w", err)
	}
	if err := ValidateCoordinates(lat2, lon2); err != nil {
		return 0, fmt.Errorf("destination: %w", err)
	}

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Asin(math.Sqrt(a))

	return math.Round(EarthRadiusKm*c*100) / 100, nil
}

// FormatDistance renders a distance for display. Values under one kilometer
// are shown as whole meters ("500 m"); everything else as kilometers with
// exactly two decimal digits ("12.35 km"). The input is expected to already
// carry Distance's two-decimal rounding, so no re-rounding happens here.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.2f km", km)
}
