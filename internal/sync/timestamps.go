package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	stdsync "sync"
	"time"

	"github.com/petsync/syncd/internal/repository"
)

// FieldState is what the timestamp store keeps per field: the time of the
// last local write and, once the field has synced at least once, a digest
// of the value both sides agreed on. The digest is what lets the engine
// tell "both sides changed" apart from "only one side changed" when the
// remote side only exposes a whole-record updated_at.
type FieldState struct {
	Timestamp time.Time `json:"ts"`
	Baseline  string    `json:"base,omitempty"`
}

// TimestampStore persists per-entity, per-field sync state in the
// key-value settings store. Read-modify-write cycles are serialized by an
// internal mutex, so concurrent writes to different fields of the same
// entity never lose each other.
type TimestampStore struct {
	kv repository.KVRepo
	mu stdsync.Mutex
}

// NewTimestampStore creates a timestamp store on the key-value repository
func NewTimestampStore(kv repository.KVRepo) *TimestampStore {
	return &TimestampStore{kv: kv}
}

func fieldStateKey(profileID int64) string {
	return fmt.Sprintf("sync:fields:%d", profileID)
}

// RecordWrite stamps a local write to a field. An existing baseline is
// kept: the field has diverged from it until the next successful sync.
func (s *TimestampStore) RecordWrite(ctx context.Context, profileID int64, field string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states, err := s.load(ctx, profileID)
	if err != nil {
		return err
	}

	st := states[field]
	st.Timestamp = ts.UTC()
	states[field] = st

	return s.save(ctx, profileID, states)
}

// RecordSynced stamps a field as synchronized: both sides now hold value
// (given in the normalized local representation).
func (s *TimestampStore) RecordSynced(ctx context.Context, profileID int64, field string, ts time.Time, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states, err := s.load(ctx, profileID)
	if err != nil {
		return err
	}

	states[field] = FieldState{
		Timestamp: ts.UTC(),
		Baseline:  BaselineHash(value),
	}

	return s.save(ctx, profileID, states)
}

// GetAll returns the per-field state for an entity. Missing entities
// return an empty map.
func (s *TimestampStore) GetAll(ctx context.Context, profileID int64) (map[string]FieldState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, profileID)
}

// Clear removes all recorded state for an entity.
func (s *TimestampStore) Clear(ctx context.Context, profileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Remove(ctx, fieldStateKey(profileID))
}

func (s *TimestampStore) load(ctx context.Context, profileID int64) (map[string]FieldState, error) {
	raw, err := s.kv.Get(ctx, fieldStateKey(profileID))
	if err != nil {
		return nil, err
	}
	states := make(map[string]FieldState)
	if raw == "" {
		return states, nil
	}
	if err := json.Unmarshal([]byte(raw), &states); err != nil {
		return nil, fmt.Errorf("corrupt field state for profile %d: %w", profileID, err)
	}
	return states, nil
}

func (s *TimestampStore) save(ctx context.Context, profileID int64, states map[string]FieldState) error {
	data, err := json.Marshal(states)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, fieldStateKey(profileID), string(data))
}

// BaselineHash digests a field value in its local representation. String
// sets are sorted first so element order never affects the digest.
func BaselineHash(value interface{}) string {
	switch v := value.(type) {
	case []string:
		sorted := make([]string, len(v))
		copy(sorted, v)
		sort.Strings(sorted)
		value = sorted
	case nil:
		value = ""
	}

	data, err := json.Marshal(value)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", value))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
