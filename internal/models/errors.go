package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sync error taxonomy. They are caught at the
// operation boundary and surfaced inside SyncResult.Error; they never cross
// the public API as raw errors.
var (
	// ErrSyncBusy is returned when another sync operation is already in
	// flight on this service instance.
	ErrSyncBusy = errors.New("another sync operation is already in progress")

	// ErrProfileNotFound is returned when the local profile does not exist.
	ErrProfileNotFound = errors.New("pet profile not found")

	// ErrRemoteNotFound is returned when the cloud record does not exist.
	ErrRemoteNotFound = errors.New("remote pet record not found")

	// ErrNoRemoteID is returned when an operation requires a remote record
	// but the profile has never completed an initial sync.
	ErrNoRemoteID = errors.New("profile has no associated remote record")

	// ErrUnknownField is returned when a field name is not in the mapping
	// table.
	ErrUnknownField = errors.New("unknown profile field")
)

// TransformError wraps a failure to convert a field value between the local
// and remote representations.
type TransformError struct {
	Field string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("cannot transform field %q: %v", e.Field, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
