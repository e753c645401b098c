package kernel

import (
	"errors"
	"fmt"
	"math"

	"partialdelivery/internal/pkg/errs"
	"partialdelivery/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in degrees.
	LongitudeMax = 180.0

	// earthRadiusKm is the mean Earth radius used for great-circle distances.
	earthRadiusKm = 6371.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a geocoded position with an optional free-text label.
// GeoPoint is an immutable value object that ensures coordinates are always
// within valid bounds. The zero value is invalid and fails validation - use
// NewGeoPoint to create instances.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(52.5200, 13.4050, "Alexanderplatz")
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(p) // Output: GeoPoint(52.520000,13.405000)
type GeoPoint struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	label     string
	guard     guard.ConstructorGuard
}

// GeoCoord is the plain serializable form of a coordinate pair, used in
// event payloads and transport DTOs where GeoPoint's encapsulation gets in
// the way. It carries no validation; convert back via NewGeoPoint.
type GeoCoord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// NewGeoPoint creates a new GeoPoint with the specified coordinates and label.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
// The label is free text and may be empty.
//
// Returns a validation error if either coordinate is out of bounds.
func NewGeoPoint(latitude, longitude float64, label string) (GeoPoint, error) {
	p := GeoPoint{
		label: label,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLatitude(latitude), p.setLongitude(longitude)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks if the GeoPoint was properly constructed via NewGeoPoint.
// The zero value of GeoPoint fails this validation.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.latitude
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.longitude
}

// Label returns the free-text label attached to the point, if any.
func (p GeoPoint) Label() string {
	return p.label
}

// String returns a human-readable representation of the point.
// It implements the fmt.Stringer interface.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.latitude, p.longitude)
}

// Coord returns the point as its plain serializable form.
func (p GeoPoint) Coord() GeoCoord {
	return GeoCoord{
		Latitude:  p.latitude,
		Longitude: p.longitude,
		Label:     p.label,
	}
}

// IsEqual compares two points for coordinate equality. Labels are not part
// of the comparison. Both points must be properly constructed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.latitude == other.latitude && p.longitude == other.longitude, nil
}

// DistanceKm calculates the great-circle (haversine) distance to another
// point in kilometres. Both points must be properly constructed.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.latitude * math.Pi / 180
	lat2 := other.latitude * math.Pi / 180
	dLat := (other.latitude - p.latitude) * math.Pi / 180
	dLon := (other.longitude - p.longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// Coincides reports whether another point lies within toleranceMeters of
// this point. Used to validate that adjacent route segments share their
// boundary point.
func (p GeoPoint) Coincides(other GeoPoint, toleranceMeters float64) (bool, error) {
	distanceKm, err := p.DistanceKm(other)
	if err != nil {
		return false, err
	}

	return distanceKm*1000 <= toleranceMeters, nil
}

// setLatitude sets the latitude with bounds validation.
// Pointer receiver is used intentionally to support self-encapsulated
// validation during construction.
func (p *GeoPoint) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}

	p.latitude = latitude
	return nil
}

// setLongitude sets the longitude with bounds validation.
// Pointer receiver is used intentionally to support self-encapsulated
// validation during construction.
func (p *GeoPoint) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}

	p.longitude = longitude
	return nil
}
