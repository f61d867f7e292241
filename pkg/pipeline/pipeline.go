// Copyright 2025 Certen Protocol

package pipeline

import (
	"errors"
	"time"

	"github.com/certen/independant-validator/pkg/htm"
	"github.com/certen/independant-validator/pkg/sphere"
	"github.com/certen/independant-validator/pkg/statistic"
	"github.com/certen/independant-validator/pkg/store"
	"github.com/certen/independant-validator/pkg/trixel"
	"github.com/certen/independant-validator/pkg/world"
)

// CreateWorld creates a new world record at the given address.
func CreateWorld(
	s *store.Store,
	addr [32]byte,
	authority string,
	name [32]byte,
	canonicalResolution uint8,
	permissionedUpdates bool,
	tag statistic.Type,
) (*world.Record, error) {
	w, err := world.Init(authority, addr, name, canonicalResolution, permissionedUpdates, tag)
	if err != nil {
		return nil, wrap(InvalidResolution, err)
	}

	s.Lock()
	defer s.Unlock()
	if err := s.SaveWorld(addr, w); err != nil {
		return nil, wrap(UnspecifiedError, err)
	}
	return w, nil
}

// CreateTrixelAndAncestors implements §4.7's create_trixel_and_ancestors:
// atomically creates the leaf at id and any missing ancestors up to (but
// not including) the world root.
func CreateTrixelAndAncestors(s *store.Store, worldAddr [32]byte, id uint64) error {
	s.Lock()
	defer s.Unlock()

	w, err := s.LoadWorld(worldAddr)
	if err != nil {
		return wrap(InvalidAccount, err)
	}

	if htm.ResolutionOf(id) != w.CanonicalResolution {
		return wrap(InvalidResolution, nil)
	}

	ancestorIDs, err := htm.Ancestors(id)
	if err != nil {
		return wrap(InvalidTrixelID, err)
	}

	leaf, err := s.LoadTrixel(worldAddr, id)
	if err != nil {
		if !errors.Is(err, store.ErrTrixelNotFound) {
			return wrap(UnspecifiedError, err)
		}
		leaf = trixel.Init(worldAddr, id, htm.ResolutionOf(id), w.Data.Tag)
		if err := s.SaveTrixel(worldAddr, leaf); err != nil {
			return wrap(UnspecifiedError, err)
		}
	}

	childSlot := htm.ChildIndex(id).Slot
	carry := leaf.Hash

	for _, ancID := range ancestorIDs {
		anc, err := s.LoadTrixel(worldAddr, ancID)
		created := false
		if err != nil {
			if !errors.Is(err, store.ErrTrixelNotFound) {
				return wrap(UnspecifiedError, err)
			}
			anc = trixel.Init(worldAddr, ancID, htm.ResolutionOf(ancID), w.Data.Tag)
			created = true
		}
		if created {
			// A fresh ancestor gets its slot set without counting an update.
			anc.ChildHashes[childSlot] = carry
			anc.RefreshHash()
		} else if err := anc.UpdateChildHash(childSlot, carry); err != nil {
			return wrap(InvalidArgument, err)
		}
		if err := s.SaveTrixel(worldAddr, anc); err != nil {
			return wrap(UnspecifiedError, err)
		}
		carry = anc.Hash
		childSlot = htm.ChildIndex(ancID).Slot
	}

	if err := w.UpdateChildHashAndRoot(childSlot, carry); err != nil {
		return wrap(InvalidArgument, err)
	}
	if err := s.SaveWorld(worldAddr, w); err != nil {
		return wrap(UnspecifiedError, err)
	}
	return nil
}

// UpdateTrixel implements §4.7's update_trixel: authorize, verify id shape
// and optional coordinates, resolve the ancestor chain, apply the typed
// statistic update at the leaf, and walk the ancestor chain to the root.
func UpdateTrixel(
	s *store.Store,
	worldAddr [32]byte,
	caller string,
	id uint64,
	value int32,
	coords *sphere.Coords,
) error {
	s.Lock()
	defer s.Unlock()

	w, err := s.LoadWorld(worldAddr)
	if err != nil {
		return wrap(InvalidAccount, err)
	}

	if !w.Authorize(caller) {
		return wrap(UnauthorizedAction, nil)
	}

	if htm.ResolutionOf(id) != w.CanonicalResolution {
		return wrap(InvalidResolution, nil)
	}

	if coords != nil {
		located, err := htm.Locate(*coords, int(w.CanonicalResolution))
		if err != nil {
			if errors.Is(err, htm.ErrInvalidCoordinates) {
				return wrap(InvalidCoordinates, err)
			}
			return wrap(InvalidResolution, err)
		}
		if located != id {
			return wrap(InvalidTrixelID, nil)
		}
	}

	ancestorIDs, err := htm.Ancestors(id)
	if err != nil {
		return wrap(InvalidTrixelID, err)
	}

	ancestors := make([]*trixel.Record, len(ancestorIDs))
	for i, ancID := range ancestorIDs {
		anc, err := s.LoadTrixel(worldAddr, ancID)
		if err != nil {
			return wrap(InvalidTrixelAccount, err)
		}
		if anc.WorldID != worldAddr {
			return wrap(AccountMismatch, nil)
		}
		if anc.Data.Tag != w.Data.Tag {
			return wrap(AccountMismatch, nil)
		}
		ancestors[i] = anc
	}

	leaf, err := s.LoadTrixel(worldAddr, id)
	if err != nil {
		return wrap(InvalidTrixelAccount, err)
	}
	if leaf.WorldID != worldAddr || leaf.Data.Tag != w.Data.Tag {
		return wrap(AccountMismatch, nil)
	}

	result, err := statistic.ApplyLeaf(&leaf.Data, int64(value))
	if err != nil {
		return wrap(ArithmeticOverflow, err)
	}
	leaf.LastUpdate = time.Now().Unix()
	leaf.Updates++
	leaf.RefreshHash()
	if err := s.SaveTrixel(worldAddr, leaf); err != nil {
		return wrap(UnspecifiedError, err)
	}

	childSlot := htm.ChildIndex(id).Slot
	carry := leaf.Hash

	for _, anc := range ancestors {
		if err := statistic.ApplyInner(&anc.Data, result); err != nil {
			return wrap(ArithmeticOverflow, err)
		}
		anc.LastUpdate = time.Now().Unix()
		if err := anc.UpdateChildHash(childSlot, carry); err != nil {
			return wrap(InvalidArgument, err)
		}
		if err := s.SaveTrixel(worldAddr, anc); err != nil {
			return wrap(UnspecifiedError, err)
		}
		carry = anc.Hash
		childSlot = htm.ChildIndex(anc.ID).Slot
	}

	if err := statistic.ApplyInner(&w.Data, result); err != nil {
		return wrap(ArithmeticOverflow, err)
	}
	if err := w.UpdateChildHashAndRoot(childSlot, carry); err != nil {
		return wrap(InvalidArgument, err)
	}
	if err := s.SaveWorld(worldAddr, w); err != nil {
		return wrap(UnspecifiedError, err)
	}
	return nil
}
