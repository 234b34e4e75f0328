package store

import "errors"

// Sentinel errors returned by data access operations. The router maps each
// one to a localized response for the calling user.
var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned on a name collision at add or suggest time,
	// including "already pending" suggestion collisions.
	ErrDuplicate = errors.New("duplicate")

	// ErrProtected is returned for attempts to delete or mutate the primary
	// list's protected properties.
	ErrProtected = errors.New("protected")

	// ErrFrozen is returned for item writes against a frozen list.
	ErrFrozen = errors.New("list frozen")

	// ErrInvalidInput is returned when a required value is empty or
	// malformed.
	ErrInvalidInput = errors.New("invalid input")
)
