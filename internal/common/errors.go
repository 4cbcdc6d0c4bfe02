// Package common defines shared constants and sentinel errors used across
// the client and server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrNotFound reports that the remote side holds no routine documents
	// for a department. Sync treats it as an authoritative deletion.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable covers network failures, timeouts and unknown remote errors.
	ErrUnavailable = errors.New("remote unavailable")

	// ErrLocalStorage wraps failures of the on-device store.
	ErrLocalStorage = errors.New("local storage error")

	// ErrMalformedSchedule is returned when a schedule cannot be filtered
	// (unknown day, unparsable time).
	ErrMalformedSchedule = errors.New("malformed schedule")

	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrValidation   = errors.New("validation error")
)
