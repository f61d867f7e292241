// Copyright 2025 Certen Protocol

package htm

import (
	"testing"

	"github.com/certen/independant-validator/pkg/sphere"
)

func TestAncestorChain(t *testing.T) {
	cases := []struct {
		id   uint64
		want []uint64
	}{
		{34328, []uint64{4328, 328, 28, 8}},
		{1, nil},
		{21, []uint64{1}},
	}
	for _, tc := range cases {
		got, err := Ancestors(tc.id)
		if err != nil {
			t.Fatalf("Ancestors(%d): %v", tc.id, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("Ancestors(%d) = %v, want %v", tc.id, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Ancestors(%d) = %v, want %v", tc.id, got, tc.want)
			}
		}
	}
}

func TestAncestorProperties(t *testing.T) {
	id := uint64(432819)
	// digits: 4,3,2,8,1,9 -- invalid: the base (rightmost) digit is 9, and
	// the non-base digit 8 is outside 1..4.
	if err := ValidateID(id); err == nil {
		t.Fatalf("expected id containing digit 9 to be invalid")
	}

	valid := uint64(4328)
	anc, err := Ancestors(valid)
	if err != nil {
		t.Fatal(err)
	}
	if len(anc) != int(ResolutionOf(valid)) {
		t.Fatalf("len(ancestors)=%d, resolution_of=%d", len(anc), ResolutionOf(valid))
	}
	prev := valid
	for _, a := range anc {
		if a >= prev {
			t.Fatalf("ancestors not strictly decreasing: %d >= %d", a, prev)
		}
		prev = a
	}
}

func TestValidateIDRejectsBadDigits(t *testing.T) {
	bad := []uint64{10, 19, 90, 95, 40329, 432}
	// 432 is valid actually (all digits 1..4 except trailing which is 2,
	// in range 1..8) -- replace with a genuinely invalid case below.
	bad = []uint64{10, 19, 90, 95, 40329}
	for _, id := range bad {
		if err := ValidateID(id); err == nil {
			t.Fatalf("ValidateID(%d) = nil, want error", id)
		}
	}
	if err := ValidateID(432); err != nil {
		t.Fatalf("ValidateID(432) = %v, want nil", err)
	}
}

func TestResolutionOf(t *testing.T) {
	cases := map[uint64]uint8{
		1:     0,
		8:     0,
		21:    1,
		4328:  3,
		34325: 4,
	}
	for id, want := range cases {
		if got := ResolutionOf(id); got != want {
			t.Fatalf("ResolutionOf(%d) = %d, want %d", id, got, want)
		}
	}
}

func TestLocateBoundaries(t *testing.T) {
	// depth = 0: locate returns a value in [1,8]; ancestors empty.
	id, err := Locate(sphere.Coords{RA: 10, Dec: -30}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if id < 1 || id > 8 {
		t.Fatalf("depth-0 locate = %d, want in [1,8]", id)
	}
	anc, err := Ancestors(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(anc) != 0 {
		t.Fatalf("depth-0 ancestors = %v, want empty", anc)
	}

	// southern cap for this point.
	if id < 1 || id > 4 {
		t.Fatalf("expected southern-cap base id in {1,2,3,4}, got %d", id)
	}

	// depth > 31 rejected.
	if _, err := Locate(sphere.Coords{RA: 0, Dec: 0}, 32); err != ErrInvalidResolution {
		t.Fatalf("Locate depth=32 err=%v, want ErrInvalidResolution", err)
	}

	// depth = 31 succeeds for valid coordinates.
	if _, err := Locate(sphere.Coords{RA: 12.5, Dec: 33.3}, 31); err != nil {
		t.Fatalf("Locate depth=31: %v", err)
	}

	// out-of-range coordinates.
	if _, err := Locate(sphere.Coords{RA: 400, Dec: 0}, 5); err != ErrInvalidCoordinates {
		t.Fatalf("Locate bad ra err=%v, want ErrInvalidCoordinates", err)
	}
}

func TestLocateScenarios(t *testing.T) {
	// North pole, depth 5: six-digit id, base (rightmost) digit in {5,6,7,8}.
	id, err := Locate(sphere.Coords{RA: 0.0, Dec: 89.999}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if ResolutionOf(id) != 5 {
		t.Fatalf("resolution = %d, want 5", ResolutionOf(id))
	}
	base := id % 10
	if base < 5 || base > 8 {
		t.Fatalf("base digit = %d, want northern cap 5..8", base)
	}

	// Equator, depth 5: six-digit id.
	id, err = Locate(sphere.Coords{RA: 45.0, Dec: 0.0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if ResolutionOf(id) != 5 {
		t.Fatalf("resolution = %d, want 5", ResolutionOf(id))
	}
}

func TestLocateDeterministic(t *testing.T) {
	c := sphere.Coords{RA: 123.456, Dec: -12.34}
	a, err := Locate(c, 10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Locate(c, 10)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("locate not deterministic: %d != %d", a, b)
	}
}

func TestChildIndex(t *testing.T) {
	cs := ChildIndex(34328)
	if cs.Resolution != 4 {
		t.Fatalf("resolution = %d, want 4", cs.Resolution)
	}
	if cs.Slot != 2 {
		t.Fatalf("slot = %d, want 2", cs.Slot)
	}
	base := ChildIndex(5)
	if base.Resolution != 0 || base.Slot != 4 {
		t.Fatalf("base child index = %+v, want {Slot:4 Resolution:0}", base)
	}
}
