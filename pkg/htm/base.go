// Copyright 2025 Certen Protocol
//
// Package htm implements the HTM locator (component B) and the trixel-id
// codec (component C): descending the octahedral subdivision of the unit
// sphere to a chosen depth, and decoding the ancestor chain, child index,
// and resolution out of the resulting decimal id.
package htm

import "github.com/certen/independant-validator/pkg/sphere"

// Octahedron seed vertices, per the normative table: V0 is the north pole,
// V5 the south pole, V1..V4 the equatorial axes in CCW order.
var (
	v0 = sphere.Vector3D{X: 0, Y: 0, Z: 1}
	v1 = sphere.Vector3D{X: 1, Y: 0, Z: 0}
	v2 = sphere.Vector3D{X: 0, Y: 1, Z: 0}
	v3 = sphere.Vector3D{X: -1, Y: 0, Z: 0}
	v4 = sphere.Vector3D{X: 0, Y: -1, Z: 0}
	v5 = sphere.Vector3D{X: 0, Y: 0, Z: -1}
)

// triangle is a spherical triangle vertex triple in CCW order as seen from
// outside the sphere.
type triangle [3]sphere.Vector3D

// baseTriangles are the eight seed triangles, indexed by (id-1), in scan
// order 1..8 per the normative vertex assignment table.
var baseTriangles = [8]triangle{
	{v1, v5, v2}, // id 1
	{v2, v5, v3}, // id 2
	{v3, v5, v4}, // id 3
	{v4, v5, v1}, // id 4
	{v1, v0, v4}, // id 5
	{v4, v0, v3}, // id 6
	{v3, v0, v2}, // id 7
	{v2, v0, v1}, // id 8
}
