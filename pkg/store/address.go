// Copyright 2025 Certen Protocol

package store

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress implements §6's derive_address(world_key, id): a
// deterministic, injective hash of ("trixel" || world_key ||
// id_as_le_u64_bytes). Spec.md leaves the hash function as an
// implementation choice distinct from the SHA-256 used for trixel/world
// hashing (Invariant 1); this implementation documents its choice as
// Keccak-256, per §6's "implementations must document their hash."
func DeriveAddress(worldKey [32]byte, id uint64) [32]byte {
	buf := make([]byte, 0, len("trixel")+32+8)
	buf = append(buf, "trixel"...)
	buf = append(buf, worldKey[:]...)
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, id)
	buf = append(buf, idBytes...)

	sum := crypto.Keccak256(buf)
	var out [32]byte
	copy(out[:], sum)
	return out
}
