// Copyright 2025 Certen Protocol

package htm

// ResolutionOf returns 0 if id is a base trixel (1..8), else the number of
// leading digits that must be stripped until the value is <= 8.
func ResolutionOf(id uint64) uint8 {
	var depth uint8
	for id > 8 {
		id /= 10
		depth++
	}
	return depth
}

// ChildSlot is the (slot, resolution) pair a parent uses to address a child
// in its child-hashes array: slot in [0,7] for a base trixel, [0,3]
// otherwise.
type ChildSlot struct {
	Slot       uint8
	Resolution uint8
}

// ChildIndex returns (leftmost_digit-1, resolution_of(id)).
func ChildIndex(id uint64) ChildSlot {
	leading := leadingDigit(id)
	return ChildSlot{Slot: leading - 1, Resolution: ResolutionOf(id)}
}

// leadingDigit returns the leftmost decimal digit of id.
func leadingDigit(id uint64) uint8 {
	for id >= 10 {
		id /= 10
	}
	return uint8(id)
}

// digits returns the decimal digits of id, most significant first.
func digits(id uint64) []uint8 {
	if id == 0 {
		return []uint8{0}
	}
	var rev []uint8
	for id > 0 {
		rev = append(rev, uint8(id%10))
		id /= 10
	}
	out := make([]uint8, len(rev))
	for i, d := range rev {
		out[len(rev)-1-i] = d
	}
	return out
}

// ValidateID checks every digit of id: the rightmost digit must be in
// 1..8, every other digit must be in 1..4. Zero and nine are never valid.
func ValidateID(id uint64) error {
	if id == 0 {
		return ErrInvalidTrixelID
	}
	ds := digits(id)
	for i, d := range ds {
		if i == len(ds)-1 {
			if d < 1 || d > 8 {
				return ErrInvalidTrixelID
			}
			continue
		}
		if d < 1 || d > 4 {
			return ErrInvalidTrixelID
		}
	}
	return nil
}

// Ancestors validates id and returns, in closest-first order, the sequence
// obtained by repeatedly stripping the leftmost decimal digit until the
// value is <= 8 (inclusive of that final base-level ancestor). The list is
// empty for base-level ids. Length equals ResolutionOf(id).
func Ancestors(id uint64) ([]uint64, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if id <= 8 {
		return nil, nil
	}
	ds := digits(id)
	out := make([]uint64, 0, len(ds)-1)
	for i := 1; i < len(ds); i++ {
		var v uint64
		for _, d := range ds[i:] {
			v = v*10 + uint64(d)
		}
		out = append(out, v)
	}
	return out, nil
}
