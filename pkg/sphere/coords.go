// Copyright 2025 Certen Protocol

package sphere

import (
	"errors"
	"math"
)

// ErrInvalidCoordinates is returned when (ra, dec) fall outside their valid
// ranges.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Coords is a spherical coordinate pair: ra (right ascension / longitude) in
// degrees [0, 360], dec (declination / latitude) in degrees [-90, 90].
type Coords struct {
	RA  float64
	Dec float64
}

// ToCartesian converts (ra, dec) to a unit vector:
//
//	x = cos(dec)*cos(ra), y = cos(dec)*sin(ra), z = sin(dec)
//
// Inputs are validated and converted to radians before use. The result is
// not renormalized after conversion.
func (c Coords) ToCartesian() (Vector3D, error) {
	if c.RA < 0 || c.RA > 360 {
		return Vector3D{}, ErrInvalidCoordinates
	}
	if c.Dec < -90 || c.Dec > 90 {
		return Vector3D{}, ErrInvalidCoordinates
	}
	ra := c.RA * math.Pi / 180
	dec := c.Dec * math.Pi / 180
	return Vector3D{
		X: math.Cos(dec) * math.Cos(ra),
		Y: math.Cos(dec) * math.Sin(ra),
		Z: math.Sin(dec),
	}, nil
}
