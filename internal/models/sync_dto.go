package models

import "time"

// SyncFieldRequest for POST /api/sync/field
type SyncFieldRequest struct {
	ProfileID int64       `json:"profileId"`
	Field     string      `json:"field"`
	Value     interface{} `json:"value"`
}

// ReconcileRequest for POST /api/sync/reconcile
type ReconcileRequest struct {
	ProfileID int64 `json:"profileId"`
}

// ResolveRequest for POST /api/sync/resolve
type ResolveRequest struct {
	ProfileID int64                `json:"profileId"`
	Decisions []ConflictResolution `json:"decisions"`
}

// RealtimeRequest for POST /api/sync/realtime/start
type RealtimeRequest struct {
	ProfileID int64 `json:"profileId"`
}

// InitialSyncRequest for POST /api/sync/initial
type InitialSyncRequest struct {
	ProfileID int64 `json:"profileId"`
}

// RetryResponse for POST /api/sync/retry
type RetryResponse struct {
	Retried   int `json:"retried"`
	Remaining int `json:"remaining"`
}

// CreateProfileResponse for POST /api/profiles
type CreateProfileResponse struct {
	ID int64 `json:"id"`
}

// HealthResponse for the health endpoints
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the generic error body
type ErrorResponse struct {
	Error string `json:"error"`
}
