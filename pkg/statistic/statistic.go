// Copyright 2025 Certen Protocol
//
// Package statistic implements the five typed leaf/inner payload variants
// (component D) and their update rules: Count, AggregateOverwrite,
// AggregateAccumulate, MeanOverwrite, MeanAccumulate.
package statistic

import (
	"encoding/binary"
	"errors"
)

// ErrArithmeticOverflow is returned when a checked add/sub would wrap, and
// when an overwrite variant is given a negative value.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// ErrTagMismatch is returned when an operation is attempted against a
// payload whose tag does not match the expected type.
var ErrTagMismatch = errors.New("statistic tag mismatch")

// Type is the tag identifying which of the five variants a payload carries.
// The tag is part of both the wire serialization and the hash input, and is
// fixed for the lifetime of a world.
type Type uint8

const (
	Count Type = iota
	AggregateOverwrite
	AggregateAccumulate
	MeanOverwrite
	MeanAccumulate
)

// Data is the tagged-union payload. Only the fields relevant to Tag are
// meaningful; the others are always zero.
type Data struct {
	Tag         Type
	CountValue  uint32
	Metric      uint64
	Numerator   uint64
	Denominator uint64
}

// Init returns the zero payload for the given tag.
func Init(tag Type) Data {
	return Data{Tag: tag}
}

// Result is the (delta, activation) pair a leaf update produces for its
// parent to apply, per §4.4.
type Result struct {
	Delta      int64
	Activation bool
}

// ApplyLeaf applies an observation value v to a canonical-leaf payload,
// mutating it in place, and returns the (delta, activation) pair the
// ancestor walk must propagate. All arithmetic is checked; overflow/
// underflow returns ErrArithmeticOverflow and leaves d unmodified.
func ApplyLeaf(d *Data, v int64) (Result, error) {
	switch d.Tag {
	case Count:
		next, err := checkedAddU32(d.CountValue, 1)
		if err != nil {
			return Result{}, err
		}
		d.CountValue = next
		return Result{Delta: 1, Activation: false}, nil

	case AggregateOverwrite:
		if v < 0 {
			return Result{}, ErrArithmeticOverflow
		}
		newVal := uint64(v)
		delta := int64(newVal) - int64(d.Metric)
		d.Metric = newVal
		return Result{Delta: delta, Activation: false}, nil

	case AggregateAccumulate:
		next, err := checkedAddSignedU64(d.Metric, v)
		if err != nil {
			return Result{}, err
		}
		d.Metric = next
		return Result{Delta: v, Activation: false}, nil

	case MeanOverwrite:
		if v < 0 {
			return Result{}, ErrArithmeticOverflow
		}
		newVal := uint64(v)
		delta := int64(newVal) - int64(d.Numerator)
		activated := d.Denominator == 0
		d.Numerator = newVal
		d.Denominator = 1
		return Result{Delta: delta, Activation: activated}, nil

	case MeanAccumulate:
		next, err := checkedAddSignedU64(d.Numerator, v)
		if err != nil {
			return Result{}, err
		}
		activated := d.Denominator == 0
		d.Numerator = next
		d.Denominator = 1
		return Result{Delta: v, Activation: activated}, nil

	default:
		return Result{}, ErrTagMismatch
	}
}

// ApplyInner applies a propagated (delta, activation) pair to an ancestor
// or world payload, mutating it in place, per §4.4.
func ApplyInner(d *Data, r Result) error {
	switch d.Tag {
	case Count:
		next, err := checkedAddU32(d.CountValue, 1)
		if err != nil {
			return err
		}
		d.CountValue = next
		return nil

	case AggregateOverwrite, AggregateAccumulate:
		next, err := checkedAddSignedU64(d.Metric, r.Delta)
		if err != nil {
			return err
		}
		d.Metric = next
		return nil

	case MeanOverwrite, MeanAccumulate:
		next, err := checkedAddSignedU64(d.Numerator, r.Delta)
		if err != nil {
			return err
		}
		d.Numerator = next
		if r.Activation {
			den, err := checkedAddU64(d.Denominator, 1)
			if err != nil {
				return err
			}
			d.Denominator = den
		}
		return nil

	default:
		return ErrTagMismatch
	}
}

func checkedAddU32(a, b uint32) (uint32, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedAddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// checkedAddSignedU64 adds a signed delta to an unsigned accumulator,
// failing on overflow past the u64 range or underflow below zero.
func checkedAddSignedU64(a uint64, delta int64) (uint64, error) {
	if delta >= 0 {
		return checkedAddU64(a, uint64(delta))
	}
	sub := uint64(-delta)
	if sub > a {
		return 0, ErrArithmeticOverflow
	}
	return a - sub, nil
}

// Serialize produces the canonical payload encoding that feeds the hash:
// one tag byte followed by little-endian fields (u32 for Count, u64 for
// Aggregate*, u64+u64 for Mean*).
func Serialize(d Data) []byte {
	switch d.Tag {
	case Count:
		buf := make([]byte, 1+4)
		buf[0] = byte(d.Tag)
		binary.LittleEndian.PutUint32(buf[1:], d.CountValue)
		return buf
	case AggregateOverwrite, AggregateAccumulate:
		buf := make([]byte, 1+8)
		buf[0] = byte(d.Tag)
		binary.LittleEndian.PutUint64(buf[1:], d.Metric)
		return buf
	case MeanOverwrite, MeanAccumulate:
		buf := make([]byte, 1+8+8)
		buf[0] = byte(d.Tag)
		binary.LittleEndian.PutUint64(buf[1:9], d.Numerator)
		binary.LittleEndian.PutUint64(buf[9:17], d.Denominator)
		return buf
	default:
		return []byte{byte(d.Tag)}
	}
}
