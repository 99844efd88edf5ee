// Package sync implements the bidirectional field-level synchronization
// engine for pet profiles: immediate single-field pushes, full
// reconciliation between the local and cloud copies, conflict resolution,
// the real-time change listener, and the offline retry queue.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/petsync/syncd/internal/cloud"
	"github.com/petsync/syncd/internal/fieldmap"
	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/observability"
	"github.com/petsync/syncd/internal/repository"
)

// Service owns all sync state for one device owner. It is an explicit
// object rather than package-level state so separate instances can sync
// separate entities independently and tests stay deterministic.
type Service struct {
	ownerID    string
	profiles   repository.PetProfileRepo
	kv         repository.KVRepo
	cloud      cloud.Store
	timestamps *TimestampStore
	queue      *PendingQueue
	listener   *Listener
	metrics    *observability.SyncMetrics

	// syncing is the single-flight guard: a second Reconcile, SyncField or
	// EnsureRemote while one is in flight fails immediately with a busy
	// result instead of blocking. The real-time listener runs outside it.
	syncing atomic.Bool

	mu            stdsync.Mutex
	lastReconcile *time.Time
}

// NewService creates a sync service for one owner. metrics may be nil.
func NewService(ownerID string, profiles repository.PetProfileRepo, kv repository.KVRepo, cloudStore cloud.Store, metrics *observability.SyncMetrics) *Service {
	timestamps := NewTimestampStore(kv)
	return &Service{
		ownerID:    ownerID,
		profiles:   profiles,
		kv:         kv,
		cloud:      cloudStore,
		timestamps: timestamps,
		queue:      NewPendingQueue(kv),
		listener:   NewListener(ownerID, profiles, cloudStore, timestamps),
		metrics:    metrics,
	}
}

func remoteIDKey(profileID int64) string {
	return fmt.Sprintf("sync:remote:%d", profileID)
}

// RemoteID returns the remote record id associated with a profile, or
// models.ErrNoRemoteID when the profile has never completed an initial
// sync. At most one remote id is ever associated with a local id.
func (s *Service) RemoteID(ctx context.Context, profileID int64) (string, error) {
	id, err := s.kv.Get(ctx, remoteIDKey(profileID))
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", models.ErrNoRemoteID
	}
	return id, nil
}

// SyncField is the fast path: it pushes one changed field to both stores
// as soon as it changes. The local write always lands before the remote
// one; if the remote write fails the recorded timestamp keeps favoring the
// local value, so a later reconciliation heals the divergence instead of
// losing the edit.
func (s *Service) SyncField(ctx context.Context, profileID int64, field string, value interface{}) models.SyncResult {
	if !s.syncing.CompareAndSwap(false, true) {
		return s.failure("sync_field", models.ErrSyncBusy)
	}
	defer s.syncing.Store(false)

	mapping, ok := fieldmap.ByLocal(field)
	if !ok {
		return s.failure("sync_field", fmt.Errorf("%w: %s", models.ErrUnknownField, field))
	}

	now := time.Now().UTC()
	if err := s.timestamps.RecordWrite(ctx, profileID, field, now); err != nil {
		return s.failure("sync_field", fmt.Errorf("record field timestamp: %w", err))
	}

	if err := s.profiles.Update(ctx, profileID, map[string]interface{}{field: value}, s.ownerID); err != nil {
		return s.failure("sync_field", fmt.Errorf("local write: %w", err))
	}

	remoteID, err := s.RemoteID(ctx, profileID)
	if err != nil {
		return s.failure("sync_field", err)
	}

	remoteValue, err := mapping.ToRemote(value)
	if err != nil {
		return s.failure("sync_field", &models.TransformError{Field: field, Err: err})
	}

	// The insurance composite is replaced whole on the remote side, so a
	// sub-field write has to carry its sibling along.
	if mapping.Remote == models.RemoteFieldInsurance {
		profile, err := s.profiles.GetByID(ctx, profileID, s.ownerID)
		if err != nil {
			return s.failure("sync_field", err)
		}
		remoteValue = insuranceComposite(profile)
	}

	if err := s.cloud.Update(ctx, remoteID, map[string]interface{}{mapping.Remote: remoteValue}); err != nil {
		// Local and remote are now diverged with the timestamp favoring
		// local; the next reconciliation pushes this value again.
		return s.failure("sync_field", fmt.Errorf("remote write: %w", err))
	}

	normalized, err := fieldmap.Normalize(field, value)
	if err == nil {
		if err := s.timestamps.RecordSynced(ctx, profileID, field, now, normalized); err != nil {
			observability.Warnf("Failed to record synced state for field %s: %v", field, err)
		}
	}

	if s.metrics != nil {
		s.metrics.FieldsSynced(ctx, 1)
	}

	return models.SyncResult{Success: true, FieldsUpdated: []string{field}}
}

// Reconcile runs the full diff/merge pass over every mapped field of one
// profile and applies all non-conflicting decisions. Conflicted fields are
// reported and left untouched on both sides.
func (s *Service) Reconcile(ctx context.Context, profileID int64) models.SyncResult {
	if !s.syncing.CompareAndSwap(false, true) {
		return s.failure("reconcile", models.ErrSyncBusy)
	}
	defer s.syncing.Store(false)

	result := s.reconcileLocked(ctx, profileID)

	now := time.Now().UTC()
	s.mu.Lock()
	s.lastReconcile = &now
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Reconciliation(ctx, len(result.FieldsUpdated), len(result.Conflicts), !result.Success)
	}
	return result
}

// fieldDecision is one per-field outcome computed during reconciliation.
type fieldDecision struct {
	mapping     fieldmap.Mapping
	localValue  interface{} // normalized local representation
	remoteValue interface{} // remote value in local representation
}

func (s *Service) reconcileLocked(ctx context.Context, profileID int64) models.SyncResult {
	profile, err := s.profiles.GetByID(ctx, profileID, s.ownerID)
	if err != nil {
		return s.failure("reconcile", err)
	}

	remoteID, err := s.RemoteID(ctx, profileID)
	if err != nil {
		return s.failure("reconcile", err)
	}

	remote, err := s.cloud.Get(ctx, remoteID)
	if err != nil {
		return s.failure("reconcile", err)
	}

	states, err := s.timestamps.GetAll(ctx, profileID)
	if err != nil {
		return s.failure("reconcile", err)
	}

	localFields := profile.Fields()
	remoteFields := remote.Fields()

	var conflicts []string
	var errs []string
	var pullLocal []fieldDecision // remote wins: write into local store
	var pushRemote []fieldDecision // local wins: write into remote store

	for _, mapping := range fieldmap.Mappings() {
		localNorm, err := fieldmap.Normalize(mapping.Local, localFields[mapping.Local])
		if err != nil {
			errs = append(errs, (&models.TransformError{Field: mapping.Local, Err: err}).Error())
			continue
		}
		remoteAsLocal, err := mapping.ToLocal(remoteFields[mapping.Remote])
		if err != nil {
			errs = append(errs, (&models.TransformError{Field: mapping.Local, Err: err}).Error())
			continue
		}

		// Identical values need no action regardless of timestamps.
		if fieldmap.Equal(localNorm, remoteAsLocal) {
			continue
		}

		decision := fieldDecision{mapping: mapping, localValue: localNorm, remoteValue: remoteAsLocal}
		state := states[mapping.Local]

		switch s.decide(state, remote.UpdatedAt, localNorm, remoteAsLocal) {
		case decideConflict:
			conflicts = append(conflicts, mapping.Local)
		case decideRemoteWins:
			pullLocal = append(pullLocal, decision)
		case decideLocalWins:
			pushRemote = append(pushRemote, decision)
		case decideKeepLocal:
			// Tie or no signal since last sync: the local value stands and
			// nothing is written to either side.
		}
	}

	var updated []string
	now := time.Now().UTC()

	// Apply remote-wins decisions as one partial local update. The policy
	// number is never read back (only the provider is authoritative for
	// the insurance composite), but its sync state is still refreshed so
	// it stops looking divergent.
	if len(pullLocal) > 0 {
		patch := make(map[string]interface{}, len(pullLocal))
		for _, d := range pullLocal {
			if d.mapping.ReadBack {
				patch[d.mapping.Local] = d.remoteValue
			}
		}
		if err := s.profiles.Update(ctx, profileID, patch, s.ownerID); err != nil {
			errs = append(errs, fmt.Sprintf("local write: %v", err))
		} else {
			for _, d := range pullLocal {
				if d.mapping.ReadBack {
					localFields[d.mapping.Local] = d.remoteValue
				}
				updated = append(updated, d.mapping.Local)
				if err := s.timestamps.RecordSynced(ctx, profileID, d.mapping.Local, now, d.remoteValue); err != nil {
					errs = append(errs, fmt.Sprintf("record sync state for %s: %v", d.mapping.Local, err))
				}
			}
		}
	}

	// Apply local-wins decisions as one partial remote update, best-effort
	// and independent of the local batch above.
	if len(pushRemote) > 0 {
		patch := make(map[string]interface{}, len(pushRemote))
		failed := make(map[string]bool)
		for _, d := range pushRemote {
			if d.mapping.Remote == models.RemoteFieldInsurance {
				patch[d.mapping.Remote] = insuranceFromFields(localFields)
				continue
			}
			remoteValue, err := d.mapping.ToRemote(localFields[d.mapping.Local])
			if err != nil {
				errs = append(errs, (&models.TransformError{Field: d.mapping.Local, Err: err}).Error())
				failed[d.mapping.Local] = true
				continue
			}
			patch[d.mapping.Remote] = remoteValue
		}
		if err := s.cloud.Update(ctx, remoteID, patch); err != nil {
			errs = append(errs, fmt.Sprintf("remote write: %v", err))
		} else {
			for _, d := range pushRemote {
				if failed[d.mapping.Local] {
					continue
				}
				updated = append(updated, d.mapping.Local)
				if err := s.timestamps.RecordSynced(ctx, profileID, d.mapping.Local, now, d.localValue); err != nil {
					errs = append(errs, fmt.Sprintf("record sync state for %s: %v", d.mapping.Local, err))
				}
			}
		}
	}

	result := models.SyncResult{
		Success:       len(conflicts) == 0 && len(errs) == 0,
		FieldsUpdated: updated,
		Conflicts:     conflicts,
	}
	if len(errs) > 0 {
		result.Error = strings.Join(errs, "; ")
	}

	if len(conflicts) > 0 {
		observability.WithField("profile_id", profileID).
			Warnf("Reconciliation found %d conflicting field(s): %s", len(conflicts), strings.Join(conflicts, ", "))
	}

	return result
}

type decision int

const (
	decideKeepLocal decision = iota
	decideLocalWins
	decideRemoteWins
	decideConflict
)

// decide picks a winner for one field whose values differ. When a synced
// baseline exists, a side "changed" iff its value departed from that
// baseline; both changed means a true conflict. Without a baseline the
// whole-record remote updated_at is the only signal, which is coarse: a
// remote write to an unrelated field can make this field look remote-newer.
// Exact timestamp ties keep the local value.
func (s *Service) decide(state FieldState, remoteUpdatedAt time.Time, localValue, remoteValue interface{}) decision {
	if state.Baseline != "" {
		localChanged := BaselineHash(localValue) != state.Baseline
		remoteChanged := BaselineHash(remoteValue) != state.Baseline
		switch {
		case localChanged && remoteChanged:
			return decideConflict
		case remoteChanged:
			return decideRemoteWins
		case localChanged:
			return decideLocalWins
		default:
			return decideKeepLocal
		}
	}

	// No baseline: fall back to comparing the last local write against the
	// record-level remote timestamp. A field never written locally has no
	// claim, so the remote value wins.
	if state.Timestamp.IsZero() || remoteUpdatedAt.After(state.Timestamp) {
		return decideRemoteWins
	}
	if state.Timestamp.After(remoteUpdatedAt) {
		return decideLocalWins
	}
	return decideKeepLocal
}

// Resolve applies caller-supplied decisions for conflicted fields.
// Decisions are applied independently: one failure never prevents the
// remaining decisions from being attempted.
func (s *Service) Resolve(ctx context.Context, profileID int64, decisions []models.ConflictResolution) models.SyncResult {
	profile, err := s.profiles.GetByID(ctx, profileID, s.ownerID)
	if err != nil {
		return s.failure("resolve", err)
	}
	remoteID, err := s.RemoteID(ctx, profileID)
	if err != nil {
		return s.failure("resolve", err)
	}
	remote, err := s.cloud.Get(ctx, remoteID)
	if err != nil {
		return s.failure("resolve", err)
	}

	localFields := profile.Fields()
	remoteFields := remote.Fields()
	now := time.Now().UTC()

	var updated []string
	var errs []string

	for _, d := range decisions {
		if err := s.applyResolution(ctx, profileID, remoteID, d, localFields, remoteFields, now); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", d.Field, err))
			continue
		}
		updated = append(updated, d.Field)
	}

	if s.metrics != nil {
		s.metrics.ConflictsResolved(ctx, len(updated))
	}

	result := models.SyncResult{
		Success:       len(errs) == 0,
		FieldsUpdated: updated,
	}
	if len(errs) > 0 {
		result.Error = strings.Join(errs, "; ")
	}
	return result
}

func (s *Service) applyResolution(ctx context.Context, profileID int64, remoteID string, d models.ConflictResolution, localFields, remoteFields map[string]interface{}, now time.Time) error {
	mapping, ok := fieldmap.ByLocal(d.Field)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownField, d.Field)
	}

	var synced interface{}

	switch d.Strategy {
	case models.ResolveLocal:
		remoteValue, err := mapping.ToRemote(localFields[d.Field])
		if err != nil {
			return &models.TransformError{Field: d.Field, Err: err}
		}
		if mapping.Remote == models.RemoteFieldInsurance {
			remoteValue = insuranceFromFields(localFields)
		}
		if err := s.cloud.Update(ctx, remoteID, map[string]interface{}{mapping.Remote: remoteValue}); err != nil {
			return fmt.Errorf("remote write: %w", err)
		}
		synced, err = fieldmap.Normalize(d.Field, localFields[d.Field])
		if err != nil {
			return &models.TransformError{Field: d.Field, Err: err}
		}

	case models.ResolveRemote:
		localValue, err := mapping.ToLocal(remoteFields[mapping.Remote])
		if err != nil {
			return &models.TransformError{Field: d.Field, Err: err}
		}
		if mapping.ReadBack {
			if err := s.profiles.Update(ctx, profileID, map[string]interface{}{d.Field: localValue}, s.ownerID); err != nil {
				return fmt.Errorf("local write: %w", err)
			}
		}
		synced = localValue

	case models.ResolveMerge:
		if err := s.profiles.Update(ctx, profileID, map[string]interface{}{d.Field: d.MergedValue}, s.ownerID); err != nil {
			return fmt.Errorf("local write: %w", err)
		}
		remoteValue, err := mapping.ToRemote(d.MergedValue)
		if err != nil {
			return &models.TransformError{Field: d.Field, Err: err}
		}
		if mapping.Remote == models.RemoteFieldInsurance {
			localFields[d.Field] = d.MergedValue
			remoteValue = insuranceFromFields(localFields)
		}
		if err := s.cloud.Update(ctx, remoteID, map[string]interface{}{mapping.Remote: remoteValue}); err != nil {
			return fmt.Errorf("remote write: %w", err)
		}
		synced, err = fieldmap.Normalize(d.Field, d.MergedValue)
		if err != nil {
			return &models.TransformError{Field: d.Field, Err: err}
		}

	default:
		return fmt.Errorf("unknown resolution strategy %q", d.Strategy)
	}

	// A fresh timestamp and baseline take the field out of conflict on the
	// next reconciliation.
	return s.timestamps.RecordSynced(ctx, profileID, d.Field, now, synced)
}

// EnsureRemote performs the initial sync for a profile: it inserts the
// cloud record, associates the assigned remote id with the local id, and
// seeds the per-field sync state. On failure the attempt is persisted in
// the pending queue for a later retry.
func (s *Service) EnsureRemote(ctx context.Context, profileID int64) models.SyncResult {
	if !s.syncing.CompareAndSwap(false, true) {
		return s.failure("initial_sync", models.ErrSyncBusy)
	}
	defer s.syncing.Store(false)

	return s.ensureRemoteLocked(ctx, profileID)
}

func (s *Service) ensureRemoteLocked(ctx context.Context, profileID int64) models.SyncResult {
	if _, err := s.RemoteID(ctx, profileID); err == nil {
		// Already associated; never create a duplicate remote record.
		return models.SyncResult{Success: true}
	} else if !errors.Is(err, models.ErrNoRemoteID) {
		return s.failure("initial_sync", err)
	}

	profile, err := s.profiles.GetByID(ctx, profileID, s.ownerID)
	if err != nil {
		return s.failure("initial_sync", err)
	}

	record, err := remoteRecordFromProfile(profile)
	if err != nil {
		return s.failure("initial_sync", err)
	}

	created, err := s.cloud.Insert(ctx, record)
	if err != nil {
		if qerr := s.queue.Enqueue(ctx, profileID, err); qerr != nil {
			observability.Errorf("Failed to enqueue pending sync for profile %d: %v", profileID, qerr)
		}
		return s.failure("initial_sync", fmt.Errorf("remote insert: %w", err))
	}

	if err := s.kv.Set(ctx, remoteIDKey(profileID), created.ID); err != nil {
		return s.failure("initial_sync", fmt.Errorf("record remote id: %w", err))
	}

	now := time.Now().UTC()
	localFields := profile.Fields()
	var updated []string
	for _, mapping := range fieldmap.Mappings() {
		normalized, err := fieldmap.Normalize(mapping.Local, localFields[mapping.Local])
		if err != nil {
			continue
		}
		if err := s.timestamps.RecordSynced(ctx, profileID, mapping.Local, now, normalized); err != nil {
			observability.Warnf("Failed to seed sync state for field %s: %v", mapping.Local, err)
			continue
		}
		updated = append(updated, mapping.Local)
	}

	if err := s.queue.Remove(ctx, profileID); err != nil {
		observability.Warnf("Failed to clear pending sync for profile %d: %v", profileID, err)
	}

	return models.SyncResult{Success: true, FieldsUpdated: updated}
}

// RetryPending retries every queued initial sync. Returns the number of
// profiles that synced successfully and the number still pending.
func (s *Service) RetryPending(ctx context.Context) (retried, remaining int, err error) {
	records, err := s.queue.All(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, record := range records {
		result := s.EnsureRemote(ctx, record.ProfileID)
		if result.Success {
			retried++
		} else {
			remaining++
			observability.WithField("profile_id", record.ProfileID).
				Warnf("Pending sync retry failed: %s", result.Error)
		}
	}
	return retried, remaining, nil
}

// StartRealTime subscribes the real-time listener to the profile's cloud
// record. The listener runs outside the single-flight guard.
func (s *Service) StartRealTime(ctx context.Context, profileID int64) error {
	remoteID, err := s.RemoteID(ctx, profileID)
	if err != nil {
		return err
	}
	return s.listener.Start(profileID, remoteID)
}

// StopRealTime unsubscribes the listener; safe to call when not subscribed.
func (s *Service) StopRealTime() {
	s.listener.Stop()
}

// ClearSyncData removes all sync bookkeeping for a profile: field
// timestamps, the remote-id association and any pending record. The
// profile itself is untouched.
func (s *Service) ClearSyncData(ctx context.Context, profileID int64) error {
	if err := s.timestamps.Clear(ctx, profileID); err != nil {
		return err
	}
	if err := s.queue.Remove(ctx, profileID); err != nil {
		return err
	}
	return s.kv.Remove(ctx, remoteIDKey(profileID))
}

// Status reports a snapshot of the service.
func (s *Service) Status(ctx context.Context) models.SyncStatus {
	depth, err := s.queue.Depth(ctx)
	if err != nil {
		observability.Warnf("Failed to read pending queue depth: %v", err)
	}

	s.mu.Lock()
	last := s.lastReconcile
	s.mu.Unlock()

	return models.SyncStatus{
		Syncing:         s.syncing.Load(),
		RealtimeActive:  s.listener.Active(),
		PendingRetries:  depth,
		LastReconcileAt: last,
	}
}

func (s *Service) failure(operation string, err error) models.SyncResult {
	observability.WithField("operation", operation).Warnf("Sync operation failed: %v", err)
	if s.metrics != nil {
		s.metrics.OperationError(context.Background(), operation)
	}
	return models.SyncResult{Success: false, Error: err.Error()}
}

// insuranceComposite builds the full remote insurance object from the
// current local profile so a sub-field write never erases its sibling key.
func insuranceComposite(p *models.PetProfile) map[string]interface{} {
	return map[string]interface{}{
		"provider":      p.InsuranceProvider,
		"policy_number": p.InsurancePolicyNumber,
	}
}

func insuranceFromFields(localFields map[string]interface{}) map[string]interface{} {
	provider, _ := localFields[models.FieldInsuranceProvider].(string)
	policy, _ := localFields[models.FieldInsurancePolicyNumber].(string)
	return map[string]interface{}{
		"provider":      provider,
		"policy_number": policy,
	}
}

// remoteRecordFromProfile builds the full cloud record for an initial
// insert. This is the one path where both insurance sub-fields survive
// into the composite.
func remoteRecordFromProfile(p *models.PetProfile) (*models.RemotePetRecord, error) {
	record := &models.RemotePetRecord{
		OwnerID:          p.OwnerID,
		Name:             p.Name,
		Species:          p.Species,
		Breed:            p.Breed,
		Color:            p.ColorMarkings,
		Gender:           p.Sex,
		Notes:            p.Notes,
		EmergencyContact: p.EmergencyContactName,
	}

	localFields := p.Fields()

	if v, err := transformLocal(models.FieldDateOfBirth, localFields); err != nil {
		return nil, err
	} else if t, ok := v.(time.Time); ok {
		record.BirthDate = &t
	}

	if v, err := transformLocal(models.FieldWeight, localFields); err != nil {
		return nil, err
	} else if w, ok := v.(float64); ok {
		record.Weight = &w
	}

	for field, target := range map[string]*[]string{
		models.FieldPersonalityTraits:   &record.PersonalityTraits,
		models.FieldMedicalConditions:   &record.MedicalConditions,
		models.FieldDietaryRestrictions: &record.DietaryRestrictions,
	} {
		v, err := transformLocal(field, localFields)
		if err != nil {
			return nil, err
		}
		if set, ok := v.([]string); ok {
			*target = set
		}
	}

	if p.InsuranceProvider != "" || p.InsurancePolicyNumber != "" {
		record.Insurance = &models.RemoteInsurance{
			Provider:     p.InsuranceProvider,
			PolicyNumber: p.InsurancePolicyNumber,
		}
	}

	return record, nil
}

func transformLocal(field string, localFields map[string]interface{}) (interface{}, error) {
	mapping, _ := fieldmap.ByLocal(field)
	v, err := mapping.ToRemote(localFields[field])
	if err != nil {
		return nil, &models.TransformError{Field: field, Err: err}
	}
	return v, nil
}
