// Copyright 2025 Certen Protocol

package batch

import (
	"crypto/sha256"
	"testing"
	"time"
)

func leafHash(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

func TestAddUpdateOpensAndGrowsBatch(t *testing.T) {
	c := NewCollector(&CollectorConfig{MaxBatchSize: 10, BatchTimeout: time.Hour})

	r1 := c.AddUpdate(UpdateRecord{TrixelID: 432, LeafHash: leafHash("leaf1")})
	if r1.TreeIndex != 0 || r1.BatchSize != 1 {
		t.Fatalf("unexpected first result: %+v", r1)
	}

	r2 := c.AddUpdate(UpdateRecord{TrixelID: 32, LeafHash: leafHash("leaf2")})
	if r2.BatchID != r1.BatchID {
		t.Fatal("second update should join the same open batch")
	}
	if r2.TreeIndex != 1 || r2.BatchSize != 2 {
		t.Fatalf("unexpected second result: %+v", r2)
	}
	if c.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", c.Pending())
	}
}

func TestBatchReadyOnSizeThreshold(t *testing.T) {
	c := NewCollector(&CollectorConfig{MaxBatchSize: 2, BatchTimeout: time.Hour})

	r1 := c.AddUpdate(UpdateRecord{LeafHash: leafHash("a")})
	if r1.BatchReady {
		t.Fatal("batch should not be ready at size 1")
	}
	r2 := c.AddUpdate(UpdateRecord{LeafHash: leafHash("b")})
	if !r2.BatchReady {
		t.Fatal("batch should be ready at size 2")
	}
	if !c.ShouldClose() {
		t.Fatal("ShouldClose() should report true once size threshold hit")
	}
}

func TestCloseBuildsProofsForEveryRecord(t *testing.T) {
	c := NewCollector(nil)
	ids := []uint64{432, 32, 2, 8}
	for _, id := range ids {
		c.AddUpdate(UpdateRecord{TrixelID: id, LeafHash: leafHash(string(rune(id)))})
	}

	closed, err := c.Close()
	if err != nil {
		t.Fatal(err)
	}
	if closed == nil {
		t.Fatal("expected a closed batch")
	}
	if len(closed.Records) != len(ids) || len(closed.Proofs) != len(ids) {
		t.Fatalf("closed batch has %d records / %d proofs, want %d", len(closed.Records), len(closed.Proofs), len(ids))
	}
	if closed.Root == "" {
		t.Fatal("expected a non-empty merkle root")
	}
	for i, p := range closed.Proofs {
		if p.MerkleRoot != closed.Root {
			t.Fatalf("proof %d root mismatch", i)
		}
		if p.LeafIndex != i {
			t.Fatalf("proof %d leaf index = %d, want %d", i, p.LeafIndex, i)
		}
	}

	if c.Pending() != 0 {
		t.Fatal("collector should have no pending records after close")
	}

	if len(closed.Receipts) != len(ids) {
		t.Fatalf("closed batch has %d receipts, want %d", len(closed.Receipts), len(ids))
	}
	for i, r := range closed.Receipts {
		if r.BatchSequence != closed.Sequence {
			t.Fatalf("receipt %d sequence = %d, want %d", i, r.BatchSequence, closed.Sequence)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("receipt %d failed validation: %v", i, err)
		}
	}
}

func TestCloseSequenceIncrementsAcrossBatches(t *testing.T) {
	c := NewCollector(nil)
	c.AddUpdate(UpdateRecord{TrixelID: 1, LeafHash: leafHash("a")})
	first, err := c.Close()
	if err != nil {
		t.Fatal(err)
	}
	c.AddUpdate(UpdateRecord{TrixelID: 2, LeafHash: leafHash("b")})
	second, err := c.Close()
	if err != nil {
		t.Fatal(err)
	}
	if second.Sequence != first.Sequence+1 {
		t.Fatalf("second batch sequence = %d, want %d", second.Sequence, first.Sequence+1)
	}
}

func TestCloseOnEmptyCollectorIsNoop(t *testing.T) {
	c := NewCollector(nil)
	closed, err := c.Close()
	if err != nil {
		t.Fatal(err)
	}
	if closed != nil {
		t.Fatal("expected nil result closing an empty collector")
	}
}
