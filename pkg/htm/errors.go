// Copyright 2025 Certen Protocol

package htm

import "errors"

// Sentinel errors for locator and id-codec failures.
var (
	// ErrInvalidResolution is returned when a requested depth exceeds the
	// absolute maximum the id encoding can represent.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrInvalidCoordinates is returned when a point does not resolve to
	// any candidate triangle at either epsilon tier.
	ErrInvalidCoordinates = errors.New("coordinates do not resolve to any trixel")

	// ErrInvalidTrixelID is returned when a trixel id fails digit
	// validation: a zero or nine digit, a non-base digit outside 1..4, or
	// a base digit outside 1..8.
	ErrInvalidTrixelID = errors.New("invalid trixel id")
)

// MaxResolution is the largest depth Locate accepts. A decimal id deeper
// than 18 levels has 20 or more digits and can exceed the uint64 range;
// Locate does not check for that overflow.
const MaxResolution = 31
