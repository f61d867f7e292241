// Copyright 2025 Certen Protocol

package htm

import "github.com/certen/independant-validator/pkg/sphere"

// epsilons is the two-tier fallback order the locator applies at every
// containment test: tight first, loose on a full scan miss.
var epsilons = [2]float64{sphere.EpsilonTight, sphere.EpsilonLoose}

// Locate maps coords to a trixel id at the given depth, per §4.2: scan the
// eight seed triangles in fixed order, then descend depth subdivision
// rounds, each time picking the first of the four children containing p.
// Each child index is written as a new leftmost digit, so the base digit
// stays rightmost, as ValidateID, Ancestors and ChildIndex expect.
func Locate(coords sphere.Coords, depth int) (uint64, error) {
	if depth < 0 || depth > MaxResolution {
		return 0, ErrInvalidResolution
	}
	p, err := coords.ToCartesian()
	if err != nil {
		return 0, ErrInvalidCoordinates
	}

	var id uint64
	var tri triangle
	found := false
	for _, eps := range epsilons {
		for i, bt := range baseTriangles {
			if sphere.InTriangle(p, bt[0], bt[1], bt[2], eps) {
				id = uint64(i + 1)
				tri = bt
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return 0, ErrInvalidCoordinates
	}

	place := uint64(10)
	for level := 0; level < depth; level++ {
		children := subdivide(tri)
		found = false
		for _, eps := range epsilons {
			for _, c := range children {
				if sphere.InTriangle(p, c.tri[0], c.tri[1], c.tri[2], eps) {
					id = uint64(c.index)*place + id
					tri = c.tri
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return 0, ErrInvalidCoordinates
		}
		place *= 10
	}
	return id, nil
}

type childTriangle struct {
	index int
	tri   triangle
}

// subdivide computes the four child triangles of tri, in child-index order
// 1..4, per §4.2 step 3: edge midpoints w0=mid(p1,p2), w1=mid(p0,p2),
// w2=mid(p0,p1), normalized back onto the sphere.
func subdivide(t triangle) [4]childTriangle {
	p0, p1, p2 := t[0], t[1], t[2]
	w0 := sphere.Normalize(sphere.Add(p1, p2))
	w1 := sphere.Normalize(sphere.Add(p0, p2))
	w2 := sphere.Normalize(sphere.Add(p0, p1))
	return [4]childTriangle{
		{1, triangle{p0, w2, w1}},
		{2, triangle{p1, w0, w2}},
		{3, triangle{p2, w1, w0}},
		{4, triangle{w0, w1, w2}},
	}
}
