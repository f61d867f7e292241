// Copyright 2025 Certen Protocol

package sphere

import (
	"math"
	"testing"
)

func TestToCartesianRanges(t *testing.T) {
	cases := []struct {
		name    string
		c       Coords
		wantErr bool
	}{
		{"origin", Coords{RA: 0, Dec: 0}, false},
		{"max valid", Coords{RA: 360, Dec: 90}, false},
		{"min valid", Coords{RA: 0, Dec: -90}, false},
		{"ra too high", Coords{RA: 360.1, Dec: 0}, true},
		{"ra negative", Coords{RA: -1, Dec: 0}, true},
		{"dec too high", Coords{RA: 0, Dec: 90.1}, true},
		{"dec too low", Coords{RA: 0, Dec: -90.1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.c.ToCartesian()
			if (err != nil) != tc.wantErr {
				t.Fatalf("ToCartesian(%v) err=%v, wantErr=%v", tc.c, err, tc.wantErr)
			}
		})
	}
}

func TestToCartesianPoles(t *testing.T) {
	v, err := Coords{RA: 0, Dec: 90}.ToCartesian()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v.Z-1) > 1e-12 {
		t.Fatalf("north pole z=%v, want 1", v.Z)
	}
	if math.Abs(v.X) > 1e-12 || math.Abs(v.Y) > 1e-12 {
		t.Fatalf("north pole xy=(%v,%v), want (0,0)", v.X, v.Y)
	}
}

func TestInTriangleOctantFace(t *testing.T) {
	v0 := Vector3D{1, 0, 0}
	v1 := Vector3D{0, 0, -1}
	v2 := Vector3D{0, 1, 0}
	inside := Normalize(Vector3D{1, 1, -1})
	if !InTriangle(inside, v0, v1, v2, EpsilonTight) {
		t.Fatal("expected centroid-ish point inside octant face to be contained")
	}
	outside := Vector3D{-1, 0, 0}
	if InTriangle(outside, v0, v1, v2, EpsilonTight) {
		t.Fatal("expected antipodal point to be rejected")
	}
}

func TestVectorOps(t *testing.T) {
	a := Vector3D{1, 0, 0}
	b := Vector3D{0, 1, 0}
	if Dot(a, b) != 0 {
		t.Fatalf("dot(a,b) = %v, want 0", Dot(a, b))
	}
	c := Cross(a, b)
	if c != (Vector3D{0, 0, 1}) {
		t.Fatalf("cross(a,b) = %v, want (0,0,1)", c)
	}
	n := Normalize(Vector3D{3, 4, 0})
	if math.Abs(Length(n)-1) > 1e-12 {
		t.Fatalf("normalize length = %v, want 1", Length(n))
	}
}
