// Package common defines sentinel errors, id helpers and the payload size
// policy shared by the ProLens client layers. Callers should use errors.Is
// to match the error values.
package common

import "errors"

var (
	// Storage errors.
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrPartialWrite       = errors.New("write failed part-way")

	// Import errors.
	ErrMalformedImport = errors.New("malformed import bundle")

	// Remote errors (cloud mirror, AI gateway).
	ErrRemoteUnreachable  = errors.New("remote service unreachable")
	ErrCloudNotConfigured = errors.New("cloud mirror not configured")

	// Repository / service level errors.
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)
