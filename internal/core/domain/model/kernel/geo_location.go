package kernel

import (
	"errors"
	"fmt"
	"math"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

var (
	// ErrInvalidLocation classifies every coordinate rejection. Callers match it
	// with errors.Is; the wrapped error carries the offending field.
	ErrInvalidLocation = errors.New("invalid location")

	ErrGeoLocationIsNotConstructed = errs.NewValueIsRequiredError(
		"geo location must be created via NewGeoLocation constructor")
)

// GeoLocation is a WGS84 coordinate pair reported by a delivery agent.
//
// Example:
//
//	loc, err := kernel.NewGeoLocation(12.9716, 77.5946)
//	if errors.Is(err, kernel.ErrInvalidLocation) {
//	    // reject the ping, do not forward it
//	}
type GeoLocation struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewGeoLocation validates both coordinates. NaN, ±Inf and values outside
// [-90,90] / [-180,180] fail with an error matching ErrInvalidLocation.
func NewGeoLocation(latitude, longitude float64) (GeoLocation, error) {
	loc := GeoLocation{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return GeoLocation{}, err
	}

	return loc, nil
}

// Validate rejects the zero value.
func (l GeoLocation) Validate() error {
	return l.guard.Validate(ErrGeoLocationIsNotConstructed)
}

func (l GeoLocation) Latitude() float64 {
	return l.latitude
}

func (l GeoLocation) Longitude() float64 {
	return l.longitude
}

func (l GeoLocation) String() string {
	return fmt.Sprintf("GeoLocation(%.6f,%.6f)", l.latitude, l.longitude)
}

func (l *GeoLocation) setLatitude(lat float64) error {
	if err := checkCoordinate("latitude", lat, LatitudeMin, LatitudeMax); err != nil {
		return err
	}
	l.latitude = lat
	return nil
}

func (l *GeoLocation) setLongitude(lng float64) error {
	if err := checkCoordinate("longitude", lng, LongitudeMin, LongitudeMax); err != nil {
		return err
	}
	l.longitude = lng
	return nil
}

func checkCoordinate(name string, v, minValue, maxValue float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidLocation,
			errs.NewValueIsInvalidErrorWithCause(name, errors.New("coordinate is not finite")))
	}
	if v < minValue || v > maxValue {
		return fmt.Errorf("%w: %w", ErrInvalidLocation,
			errs.NewValueIsOutOfRangeError(name, v, minValue, maxValue))
	}
	return nil
}
