package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petsync/syncd/internal/models"
)

func TestListener(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	t.Run("remote changes are mirrored into the local store", func(t *testing.T) {
		svc, profiles, kv, cloudStore := newTestService()
		id, remoteID := seedPair(t, svc, profiles, kv, cloudStore, base)

		require.NoError(t, svc.StartRealTime(ctx, id))
		defer svc.StopRealTime()
		assert.True(t, svc.listener.Active())

		cloudStore.push(models.RemoteChange{
			RemoteID:  remoteID,
			UpdatedAt: time.Now().UTC(),
			Fields:    map[string]interface{}{models.RemoteFieldName: "Bella"},
		})

		assert.Eventually(t, func() bool {
			p, err := profiles.GetByID(ctx, id, testOwner)
			return err == nil && p.Name == "Bella"
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("stale pushes do not clobber newer local edits", func(t *testing.T) {
		svc, profiles, kv, cloudStore := newTestService()
		id, remoteID := seedPair(t, svc, profiles, kv, cloudStore, base)

		// Local edit stamped now; the push carries an older updated_at.
		require.NoError(t, svc.timestamps.RecordWrite(ctx, id, models.FieldName, time.Now().UTC()))
		profiles.profiles[id].Name = "Bella"

		require.NoError(t, svc.StartRealTime(ctx, id))
		defer svc.StopRealTime()

		cloudStore.push(models.RemoteChange{
			RemoteID:  remoteID,
			UpdatedAt: base.Add(time.Minute),
			Fields: map[string]interface{}{
				models.RemoteFieldName:  "Charlie",
				models.RemoteFieldNotes: "from the cloud",
			},
		})

		assert.Eventually(t, func() bool {
			p, err := profiles.GetByID(ctx, id, testOwner)
			return err == nil && p.Notes == "from the cloud"
		}, time.Second, 10*time.Millisecond)

		p, err := profiles.GetByID(ctx, id, testOwner)
		require.NoError(t, err)
		assert.Equal(t, "Bella", p.Name)
	})

	t.Run("policy number pushes are ignored", func(t *testing.T) {
		svc, profiles, kv, cloudStore := newTestService()
		id, remoteID := seedPair(t, svc, profiles, kv, cloudStore, base)

		require.NoError(t, svc.StartRealTime(ctx, id))
		defer svc.StopRealTime()

		cloudStore.push(models.RemoteChange{
			RemoteID:  remoteID,
			UpdatedAt: time.Now().UTC(),
			Fields: map[string]interface{}{
				models.RemoteFieldInsurance: map[string]interface{}{
					"provider":      "NewCare",
					"policy_number": "PN-9",
				},
			},
		})

		assert.Eventually(t, func() bool {
			p, err := profiles.GetByID(ctx, id, testOwner)
			return err == nil && p.InsuranceProvider == "NewCare"
		}, time.Second, 10*time.Millisecond)

		p, err := profiles.GetByID(ctx, id, testOwner)
		require.NoError(t, err)
		assert.Equal(t, "PN-1", p.InsurancePolicyNumber)
	})

	t.Run("restart replaces the previous subscription", func(t *testing.T) {
		svc, profiles, kv, cloudStore := newTestService()
		id, _ := seedPair(t, svc, profiles, kv, cloudStore, base)

		require.NoError(t, svc.StartRealTime(ctx, id))
		require.NoError(t, svc.StartRealTime(ctx, id))
		defer svc.StopRealTime()

		assert.True(t, svc.listener.Active())
		assert.Len(t, cloudStore.events, 2)
	})

	t.Run("stop is idempotent and safe before start", func(t *testing.T) {
		svc, profiles, kv, cloudStore := newTestService()
		id, _ := seedPair(t, svc, profiles, kv, cloudStore, base)

		svc.StopRealTime()
		require.NoError(t, svc.StartRealTime(ctx, id))
		svc.StopRealTime()
		svc.StopRealTime()
		assert.False(t, svc.listener.Active())
	})

	t.Run("subscription failures surface to the caller", func(t *testing.T) {
		svc, profiles, kv, cloudStore := newTestService()
		id, _ := seedPair(t, svc, profiles, kv, cloudStore, base)
		cloudStore.subErr = errors.New("connection refused")

		err := svc.StartRealTime(ctx, id)
		assert.Error(t, err)
		assert.False(t, svc.listener.Active())
	})

	t.Run("start requires a remote association", func(t *testing.T) {
		svc, profiles, _, _ := newTestService()
		id, err := profiles.Create(ctx, testProfile())
		require.NoError(t, err)

		err = svc.StartRealTime(ctx, id)
		assert.ErrorIs(t, err, models.ErrNoRemoteID)
	})
}
