// Copyright 2025 Certen Protocol
//
// Package world implements the world record (component F): the root of a
// single HTM aggregation tree, with the root-hash recomputation rules from
// §4.6. Note the asymmetry with package trixel (§9, preserved as specified):
// the root hash is a pure function of the eight child hashes and does not
// include Data.
package world

import (
	"crypto/sha256"
	"errors"

	"github.com/certen/independant-validator/pkg/statistic"
	"github.com/certen/independant-validator/pkg/trixel"
)

// ErrInvalidSlot is returned when a caller addresses a child-hash slot
// outside [0,8).
var ErrInvalidSlot = errors.New("invalid child-hash slot")

// ErrInvalidResolution is returned when canonical_resolution falls outside
// [1, AbsoluteMaxResolution].
var ErrInvalidResolution = errors.New("invalid canonical resolution")

// AbsoluteMaxResolution is the hard ceiling on canonical_resolution: beyond
// this, a depth-N decimal id does not fit comfortably alongside the
// decimal-digit encoding's 64-bit budget (see spec §9 design notes).
const AbsoluteMaxResolution = 10

// Record is a world: a named, authority-scoped root of one HTM aggregation
// tree with a fixed payload type.
type Record struct {
	Authority           string
	ID                  [32]byte
	Name                [32]byte
	CanonicalResolution uint8
	PermissionedUpdates bool
	Updates             uint64
	RootHash            trixel.Hash
	ChildHashes         [8]trixel.Hash
	Data                statistic.Data
}

// Init validates canonical_resolution, zeroes child hashes, and computes
// the initial root hash.
func Init(authority string, id, name [32]byte, canonicalResolution uint8, permissionedUpdates bool, tag statistic.Type) (*Record, error) {
	if canonicalResolution < 1 || canonicalResolution > AbsoluteMaxResolution {
		return nil, ErrInvalidResolution
	}
	r := &Record{
		Authority:           authority,
		ID:                  id,
		Name:                name,
		CanonicalResolution: canonicalResolution,
		PermissionedUpdates: permissionedUpdates,
		Data:                statistic.Init(tag),
	}
	r.RootHash = r.ComputeRootHash()
	return r, nil
}

// ComputeRootHash returns SHA-256(child_hashes[0..8] concatenated). Data is
// deliberately excluded: see the package doc and spec §9.
func (r *Record) ComputeRootHash() trixel.Hash {
	h := sha256.New()
	for _, c := range r.ChildHashes {
		h.Write(c[:])
	}
	var out trixel.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// UpdateChildHashAndRoot writes child-hashes[slot], recomputes the root
// hash, and increments Updates. Fails with ErrInvalidSlot if slot >= 8.
func (r *Record) UpdateChildHashAndRoot(slot uint8, newHash trixel.Hash) error {
	if slot >= 8 {
		return ErrInvalidSlot
	}
	r.ChildHashes[slot] = newHash
	r.RootHash = r.ComputeRootHash()
	r.Updates++
	return nil
}

// Authorize requires caller == authority unless updates are unpermissioned.
func (r *Record) Authorize(caller string) bool {
	return !r.PermissionedUpdates || caller == r.Authority
}
