// Copyright 2025 Certen Protocol
//
// Package pipeline implements the update pipeline (component G): orchestrate
// locate -> leaf update -> ancestor walk -> root refresh for
// create_trixel_and_ancestors and update_trixel, plus create_world.
package pipeline

import "fmt"

// Code is the stable, named error-code enumeration from §6/§7, crossing
// package boundaries (pipeline, store, server) so callers outside this
// module see a fixed surface regardless of which internal sentinel error
// triggered it.
type Code string

const (
	InvalidArgument      Code = "InvalidArgument"
	InvalidAccount       Code = "InvalidAccount"
	AccountMismatch      Code = "AccountMismatch"
	UnauthorizedAction   Code = "UnauthorizedAction"
	InvalidResolution    Code = "InvalidResolution"
	InvalidCoordinates   Code = "InvalidCoordinates"
	InvalidTrixelAccount Code = "InvalidTrixelAccount"
	InvalidTrixelID      Code = "InvalidTrixelId"
	ArithmeticOverflow   Code = "ArithmeticOverflow"
	UnspecifiedError     Code = "UnspecifiedError"
)

// Error pairs a stable Code with the underlying cause, so callers can
// either branch on Code or errors.Is/errors.As against the wrapped cause.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// wrap builds an *Error for the given code and cause.
func wrap(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}
