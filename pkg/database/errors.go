// Copyright 2025 Certen Protocol
//
// Package database provides sentinel errors for audit log operations.

package database

import "errors"

// Sentinel errors for audit log operations.
var (
	// ErrNotFound is returned when a requested audit entry is not found.
	ErrNotFound = errors.New("entity not found")
)
