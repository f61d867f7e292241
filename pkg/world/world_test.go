// Copyright 2025 Certen Protocol

package world

import (
	"testing"

	"github.com/certen/independant-validator/pkg/statistic"
	"github.com/certen/independant-validator/pkg/trixel"
)

func TestInitRejectsOutOfRangeResolution(t *testing.T) {
	var id, name [32]byte
	if _, err := Init("auth", id, name, 0, false, statistic.Count); err != ErrInvalidResolution {
		t.Fatalf("err = %v, want ErrInvalidResolution", err)
	}
	if _, err := Init("auth", id, name, 11, false, statistic.Count); err != ErrInvalidResolution {
		t.Fatalf("err = %v, want ErrInvalidResolution", err)
	}
}

func TestRootHashExcludesData(t *testing.T) {
	var id, name [32]byte
	r, err := Init("auth", id, name, 3, false, statistic.AggregateAccumulate)
	if err != nil {
		t.Fatal(err)
	}
	before := r.RootHash
	r.Data.Metric = 1234
	// Mutating Data alone must not change the root hash (§9 asymmetry).
	if r.ComputeRootHash() != before {
		t.Fatal("root hash changed after mutating Data only")
	}
}

func TestUpdateChildHashAndRoot(t *testing.T) {
	var id, name [32]byte
	r, err := Init("auth", id, name, 3, false, statistic.Count)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateChildHashAndRoot(8, trixel.Hash{}); err != ErrInvalidSlot {
		t.Fatalf("err = %v, want ErrInvalidSlot", err)
	}
	before := r.RootHash
	if err := r.UpdateChildHashAndRoot(2, trixel.Hash{7}); err != nil {
		t.Fatal(err)
	}
	if r.RootHash == before {
		t.Fatal("root hash did not change after updating a child slot")
	}
	if r.Updates != 1 {
		t.Fatalf("updates = %d, want 1", r.Updates)
	}
}

func TestAuthorize(t *testing.T) {
	var id, name [32]byte
	r, err := Init("alice", id, name, 1, true, statistic.Count)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Authorize("alice") {
		t.Fatal("authority should be authorized")
	}
	if r.Authorize("bob") {
		t.Fatal("non-authority should be rejected when permissioned")
	}

	open, err := Init("alice", id, name, 1, false, statistic.Count)
	if err != nil {
		t.Fatal(err)
	}
	if !open.Authorize("bob") {
		t.Fatal("unpermissioned world should authorize anyone")
	}
}
