package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a write that would break a uniqueness or state rule.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyPaid is returned when a write would touch a settled share.
	ErrAlreadyPaid = errors.New("share already paid")
)
