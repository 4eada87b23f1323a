package domain

import "errors"

var (
	// ErrInvalidSource is returned when a source selected for sync lacks a type or identifier
	ErrInvalidSource = errors.New("invalid registry source")

	// ErrInvalidMetadata is returned when on-chain metadata does not describe a registrable service
	ErrInvalidMetadata = errors.New("invalid registry metadata")

	// ErrGuardWaitTimeout is returned when waiting for a running maintenance operation times out
	ErrGuardWaitTimeout = errors.New("timed out waiting for running operation")

	// ErrNotFound is returned when the ledger API does not know the requested resource
	ErrNotFound = errors.New("not found")
)
