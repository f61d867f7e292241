// Copyright 2025 Certen Protocol

package merkle

import (
	"crypto/sha256"
	"testing"
)

func TestReceiptFromInclusionProofValidates(t *testing.T) {
	leaves := make([][]byte, 4)
	for i := 0; i < 4; i++ {
		hash := sha256.Sum256([]byte{byte(i)})
		leaves[i] = hash[:]
	}

	tree, err := BuildTree(leaves)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}

	for i := range leaves {
		proof, err := tree.GenerateProof(i)
		if err != nil {
			t.Fatalf("failed to generate proof for leaf %d: %v", i, err)
		}
		receipt, err := ReceiptFromInclusionProof(proof, 7)
		if err != nil {
			t.Fatalf("failed to build receipt for leaf %d: %v", i, err)
		}
		if receipt.BatchSequence != 7 {
			t.Fatalf("leaf %d: receipt batch sequence = %d, want 7", i, receipt.BatchSequence)
		}
		if err := receipt.Validate(); err != nil {
			t.Fatalf("leaf %d: receipt failed validation: %v", i, err)
		}
	}
}

func TestReceiptFromInclusionProofNil(t *testing.T) {
	if _, err := ReceiptFromInclusionProof(nil, 1); err == nil {
		t.Fatal("expected error converting nil inclusion proof")
	}
}

func TestReceiptRoundTripsThroughBinary(t *testing.T) {
	leaf1 := sha256.Sum256([]byte("leaf 1"))
	leaf2 := sha256.Sum256([]byte("leaf 2"))

	tree, err := BuildTree([][]byte{leaf1[:], leaf2[:]})
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	proof, err := tree.GenerateProof(0)
	if err != nil {
		t.Fatal(err)
	}
	receipt, err := ReceiptFromInclusionProof(proof, 3)
	if err != nil {
		t.Fatal(err)
	}

	binary, err := receipt.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary failed: %v", err)
	}
	if binary.BatchSequence != 3 {
		t.Fatalf("binary receipt batch sequence = %d, want 3", binary.BatchSequence)
	}
	if err := binary.Validate(); err != nil {
		t.Fatalf("binary receipt failed validation: %v", err)
	}

	restored := binary.ToHex()
	if restored.BatchSequence != receipt.BatchSequence {
		t.Fatalf("restored batch sequence = %d, want %d", restored.BatchSequence, receipt.BatchSequence)
	}
	if err := restored.Validate(); err != nil {
		t.Fatalf("restored receipt failed validation: %v", err)
	}
}
