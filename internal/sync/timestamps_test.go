package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petsync/syncd/internal/models"
)

func TestTimestampStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing entities return an empty map", func(t *testing.T) {
		store := NewTimestampStore(newFakeKV())

		states, err := store.GetAll(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, states)
	})

	t.Run("record write keeps the previous baseline", func(t *testing.T) {
		store := NewTimestampStore(newFakeKV())
		synced := time.Now().UTC().Add(-time.Hour)

		require.NoError(t, store.RecordSynced(ctx, 1, models.FieldName, synced, "Rex"))
		require.NoError(t, store.RecordWrite(ctx, 1, models.FieldName, synced.Add(time.Minute)))

		states, err := store.GetAll(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, BaselineHash("Rex"), states[models.FieldName].Baseline)
		assert.Equal(t, synced.Add(time.Minute), states[models.FieldName].Timestamp)
	})

	t.Run("record synced replaces the baseline", func(t *testing.T) {
		store := NewTimestampStore(newFakeKV())
		ts := time.Now().UTC()

		require.NoError(t, store.RecordSynced(ctx, 1, models.FieldName, ts, "Rex"))
		require.NoError(t, store.RecordSynced(ctx, 1, models.FieldName, ts, "Bella"))

		states, err := store.GetAll(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, BaselineHash("Bella"), states[models.FieldName].Baseline)
	})

	t.Run("entities are independent and clear is scoped", func(t *testing.T) {
		store := NewTimestampStore(newFakeKV())
		ts := time.Now().UTC()

		require.NoError(t, store.RecordSynced(ctx, 1, models.FieldName, ts, "Rex"))
		require.NoError(t, store.RecordSynced(ctx, 2, models.FieldName, ts, "Milo"))
		require.NoError(t, store.Clear(ctx, 1))

		one, err := store.GetAll(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, one)

		two, err := store.GetAll(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, two, 1)
	})
}

func TestBaselineHash(t *testing.T) {
	t.Run("set order does not affect the digest", func(t *testing.T) {
		assert.Equal(t,
			BaselineHash([]string{"a", "b"}),
			BaselineHash([]string{"b", "a"}),
		)
	})

	t.Run("nil and empty string digest identically", func(t *testing.T) {
		assert.Equal(t, BaselineHash(nil), BaselineHash(""))
	})

	t.Run("different values digest differently", func(t *testing.T) {
		assert.NotEqual(t, BaselineHash("Rex"), BaselineHash("Bella"))
		assert.NotEqual(t, BaselineHash([]string{"a"}), BaselineHash([]string{"a", "a"}))
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		in := []string{"b", "a"}
		BaselineHash(in)
		assert.Equal(t, []string{"b", "a"}, in)
	})
}
