// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Store errors
	ErrStoreNotFound     = "STORE_NOT_FOUND"
	ErrStoreNotSpecified = "STORE_NOT_SPECIFIED"
	ErrStoreError        = "STORE_ERROR"
	ErrConfigInvalid     = "CONFIG_INVALID"

	// Record errors
	ErrRecordNotFound = "RECORD_NOT_FOUND"
	ErrTypeNotFound   = "TYPE_NOT_FOUND"

	// Filter errors
	ErrFilterInvalid = "FILTER_INVALID"

	// Input errors
	ErrManifestInvalid = "MANIFEST_INVALID"
	ErrInvalidInput    = "INVALID_INPUT"
	ErrFileReadError   = "FILE_READ_ERROR"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
