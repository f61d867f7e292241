// Copyright 2025 Certen Protocol
//
// Package store sentinel errors.

package store

import "errors"

var (
	// ErrWorldNotFound is returned when a world record is absent.
	ErrWorldNotFound = errors.New("world record not found")

	// ErrTrixelNotFound is returned when a trixel record is absent.
	ErrTrixelNotFound = errors.New("trixel record not found")
)
