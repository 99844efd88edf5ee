package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/repository"
)

const pendingKeyPrefix = "sync:pending:"

// PendingQueue persists failed initial-sync attempts in the key-value
// store so they can be retried once connectivity or authentication is
// restored.
type PendingQueue struct {
	kv repository.KVRepo
}

// NewPendingQueue creates a pending-sync queue on the key-value repository
func NewPendingQueue(kv repository.KVRepo) *PendingQueue {
	return &PendingQueue{kv: kv}
}

func pendingKey(profileID int64) string {
	return fmt.Sprintf("%s%d", pendingKeyPrefix, profileID)
}

// Enqueue records a failed sync attempt for a profile. Repeated failures
// for the same profile update the existing record and bump its attempt
// count.
func (q *PendingQueue) Enqueue(ctx context.Context, profileID int64, cause error) error {
	now := time.Now().UTC()

	record := models.PendingSync{
		ProfileID:   profileID,
		Error:       cause.Error(),
		Attempts:    1,
		LastAttempt: now,
		CreatedAt:   now,
	}

	if existing, err := q.Get(ctx, profileID); err == nil && existing != nil {
		record.Attempts = existing.Attempts + 1
		record.CreatedAt = existing.CreatedAt
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return q.kv.Set(ctx, pendingKey(profileID), string(data))
}

// Get returns the pending record for a profile, or nil if none exists
func (q *PendingQueue) Get(ctx context.Context, profileID int64) (*models.PendingSync, error) {
	raw, err := q.kv.Get(ctx, pendingKey(profileID))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var record models.PendingSync
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("corrupt pending record for profile %d: %w", profileID, err)
	}
	return &record, nil
}

// Remove deletes the pending record for a profile
func (q *PendingQueue) Remove(ctx context.Context, profileID int64) error {
	return q.kv.Remove(ctx, pendingKey(profileID))
}

// All returns every pending record
func (q *PendingQueue) All(ctx context.Context) ([]models.PendingSync, error) {
	keys, err := q.kv.Keys(ctx, pendingKeyPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]models.PendingSync, 0, len(keys))
	for _, key := range keys {
		raw, err := q.kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			continue
		}
		var record models.PendingSync
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("corrupt pending record at %s: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Depth returns the number of pending records
func (q *PendingQueue) Depth(ctx context.Context) (int, error) {
	keys, err := q.kv.Keys(ctx, pendingKeyPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
