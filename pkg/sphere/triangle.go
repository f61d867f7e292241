// Copyright 2025 Certen Protocol

package sphere

// EpsilonTight and EpsilonLoose are the two-tier epsilon fallback used when
// testing point-in-spherical-triangle containment. The locator tries the
// tight epsilon first; if no candidate triangle matches, it retries with the
// loose epsilon before reporting the point as exterior to all candidates.
const (
	EpsilonTight = 1e-9
	EpsilonLoose = 1e-7
)

// InTriangle reports whether p lies inside the spherical triangle (v0, v1,
// v2), which must be wound counter-clockwise as seen from outside the
// sphere. The triangle is the intersection of three half-spaces, one per
// edge: for edge (va, vb), the outward normal is va x vb, and p is inside
// iff n . p >= -eps for all three edges.
func InTriangle(p, v0, v1, v2 Vector3D, eps float64) bool {
	edges := [3][2]Vector3D{
		{v0, v1},
		{v1, v2},
		{v2, v0},
	}
	for _, e := range edges {
		n := Cross(e[0], e[1])
		if Dot(n, p) < -eps {
			return false
		}
	}
	return true
}
