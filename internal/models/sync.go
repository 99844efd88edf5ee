package models

import "time"

// SyncResult is the outcome of one sync operation. It is constructed once
// by the operation and never mutated afterwards; errors are flattened to a
// human-readable string rather than propagated as Go errors.
type SyncResult struct {
	Success       bool     `json:"success"`
	FieldsUpdated []string `json:"fieldsUpdated"`
	Conflicts     []string `json:"conflicts"`
	Error         string   `json:"error,omitempty"`
}

// ResolutionStrategy selects which side wins for a conflicted field.
type ResolutionStrategy string

const (
	ResolveLocal  ResolutionStrategy = "local"
	ResolveRemote ResolutionStrategy = "remote"
	ResolveMerge  ResolutionStrategy = "merge"
)

// ConflictResolution is a caller-supplied decision for one conflicted
// field. MergedValue is only consulted for the merge strategy and is given
// in the local representation.
type ConflictResolution struct {
	Field       string             `json:"field"`
	Strategy    ResolutionStrategy `json:"strategy"`
	MergedValue interface{}        `json:"mergedValue,omitempty"`
}

// PendingSync records a failed initial sync so it can be retried once
// connectivity or authentication is restored. Deleted on the next
// successful retry for the same profile.
type PendingSync struct {
	ProfileID   int64     `json:"profileId"`
	Error       string    `json:"error"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"lastAttempt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SyncStatus is a point-in-time snapshot of the sync service.
type SyncStatus struct {
	Syncing         bool       `json:"syncing"`
	RealtimeActive  bool       `json:"realtimeActive"`
	PendingRetries  int        `json:"pendingRetries"`
	LastReconcileAt *time.Time `json:"lastReconcileAt,omitempty"`
}
