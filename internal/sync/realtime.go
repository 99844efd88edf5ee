package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/petsync/syncd/internal/cloud"
	"github.com/petsync/syncd/internal/fieldmap"
	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/observability"
	"github.com/petsync/syncd/internal/repository"
)

// Listener subscribes to the cloud change stream for one record and
// mirrors remote edits into the local store. It only ever writes locally;
// local edits reach the cloud through SyncField and Reconcile.
type Listener struct {
	ownerID    string
	profiles   repository.PetProfileRepo
	cloud      cloud.Store
	timestamps *TimestampStore

	mu     stdsync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewListener creates a real-time listener; it is inert until Start
func NewListener(ownerID string, profiles repository.PetProfileRepo, cloudStore cloud.Store, timestamps *TimestampStore) *Listener {
	return &Listener{
		ownerID:    ownerID,
		profiles:   profiles,
		cloud:      cloudStore,
		timestamps: timestamps,
	}
}

// Start subscribes to change events for the given record. Starting while
// already subscribed tears down the previous subscription first, so at
// most one is ever active.
func (l *Listener) Start(profileID int64, remoteID string) error {
	l.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := l.cloud.Subscribe(ctx, remoteID)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})

	l.mu.Lock()
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		for change := range events {
			l.apply(profileID, change)
		}
	}()

	observability.WithField("profile_id", profileID).Infof("Real-time sync started for remote record %s", remoteID)
	return nil
}

// Stop tears down the active subscription, if any. Safe to call repeatedly
// and when no subscription is active.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	done := l.done
	l.cancel = nil
	l.done = nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	observability.Infof("Real-time sync stopped")
}

// Active reports whether a subscription is currently running
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// apply mirrors one remote change into the local store. Fields whose last
// local write is newer than the change are left alone; the next full
// reconciliation settles those. Writes use a background context so an
// in-flight change still lands after Stop.
func (l *Listener) apply(profileID int64, change models.RemoteChange) {
	ctx := context.Background()

	states, err := l.timestamps.GetAll(ctx, profileID)
	if err != nil {
		observability.Warnf("Skipping remote change, cannot read sync state: %v", err)
		return
	}

	patch := make(map[string]interface{})
	applied := make([]string, 0, len(change.Fields))

	for remoteField, remoteValue := range change.Fields {
		for _, mapping := range fieldmap.ByRemote(remoteField) {
			if !mapping.ReadBack {
				continue
			}
			if states[mapping.Local].Timestamp.After(change.UpdatedAt) {
				// Local edit is newer than this push; keep it.
				continue
			}

			localValue, err := mapping.ToLocal(remoteValue)
			if err != nil {
				observability.Warnf("Skipping remote change for field %s: %v", mapping.Local, err)
				continue
			}

			localNorm, err := fieldmap.Normalize(mapping.Local, localValue)
			if err == nil && states[mapping.Local].Baseline == BaselineHash(localNorm) {
				// Value already matches what we last synced.
				continue
			}

			patch[mapping.Local] = localValue
			applied = append(applied, mapping.Local)
		}
	}

	if len(patch) == 0 {
		return
	}

	if err := l.profiles.Update(ctx, profileID, patch, l.ownerID); err != nil {
		observability.WithField("profile_id", profileID).Warnf("Failed to apply remote change: %v", err)
		return
	}

	ts := change.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	for _, field := range applied {
		if err := l.timestamps.RecordSynced(ctx, profileID, field, ts, patch[field]); err != nil {
			observability.Warnf("Failed to record sync state for field %s: %v", field, err)
		}
	}

	observability.WithField("profile_id", profileID).Debugf("Applied remote change to %d field(s)", len(applied))
}
