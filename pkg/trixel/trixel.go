// Copyright 2025 Certen Protocol
//
// Package trixel implements the trixel record (component E): a payload plus
// four child hashes, a self-hash, and metadata, with the hash-recomputation
// rules from §4.5.
package trixel

import (
	"crypto/sha256"
	"errors"
	"time"

	"github.com/certen/independant-validator/pkg/statistic"
)

// ErrInvalidSlot is returned when a caller addresses a child-hash slot
// outside [0,4).
var ErrInvalidSlot = errors.New("invalid child-hash slot")

// Hash is a 32-byte SHA-256 digest.
type Hash [32]byte

// Record is one trixel: an inner node or a leaf of the aggregation tree.
// Leaves carry an all-zero ChildHashes.
type Record struct {
	WorldID     [32]byte
	ID          uint64
	Resolution  uint8
	Updates     uint64
	LastUpdate  int64
	Hash        Hash
	ChildHashes [4]Hash
	Data        statistic.Data
}

// Init zeroes child hashes and payload, stamps LastUpdate to now, and
// computes the initial hash, per §4.5.
func Init(worldID [32]byte, id uint64, resolution uint8, tag statistic.Type) *Record {
	r := &Record{
		WorldID:    worldID,
		ID:         id,
		Resolution: resolution,
		Updates:    0,
		LastUpdate: time.Now().Unix(),
		Data:       statistic.Init(tag),
	}
	r.RefreshHash()
	return r
}

// ComputeHash returns SHA-256(serialize(data) || child_hashes[0..4]).
func (r *Record) ComputeHash() Hash {
	h := sha256.New()
	h.Write(statistic.Serialize(r.Data))
	for _, c := range r.ChildHashes {
		h.Write(c[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// RefreshHash recomputes and assigns Hash.
func (r *Record) RefreshHash() {
	r.Hash = r.ComputeHash()
}

// UpdateChildHash writes child-hashes[slot], refreshes the self-hash, and
// bumps LastUpdate/Updates. Fails with ErrInvalidSlot if slot >= 4.
func (r *Record) UpdateChildHash(slot uint8, newHash Hash) error {
	if slot >= 4 {
		return ErrInvalidSlot
	}
	r.ChildHashes[slot] = newHash
	r.RefreshHash()
	r.LastUpdate = time.Now().Unix()
	r.Updates++
	return nil
}
