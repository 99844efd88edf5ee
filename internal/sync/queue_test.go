package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueue and get", func(t *testing.T) {
		q := NewPendingQueue(newFakeKV())

		require.NoError(t, q.Enqueue(ctx, 7, errors.New("unauthorized")))

		record, err := q.Get(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, int64(7), record.ProfileID)
		assert.Equal(t, "unauthorized", record.Error)
		assert.Equal(t, 1, record.Attempts)
	})

	t.Run("repeat failures bump attempts and keep created at", func(t *testing.T) {
		q := NewPendingQueue(newFakeKV())

		require.NoError(t, q.Enqueue(ctx, 7, errors.New("first")))
		first, err := q.Get(ctx, 7)
		require.NoError(t, err)

		require.NoError(t, q.Enqueue(ctx, 7, errors.New("second")))
		second, err := q.Get(ctx, 7)
		require.NoError(t, err)

		assert.Equal(t, 2, second.Attempts)
		assert.Equal(t, "second", second.Error)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("get on absent profile returns nil", func(t *testing.T) {
		q := NewPendingQueue(newFakeKV())

		record, err := q.Get(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("all and depth cover every queued profile", func(t *testing.T) {
		q := NewPendingQueue(newFakeKV())

		require.NoError(t, q.Enqueue(ctx, 1, errors.New("a")))
		require.NoError(t, q.Enqueue(ctx, 2, errors.New("b")))

		records, err := q.All(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		depth, err := q.Depth(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, depth)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		q := NewPendingQueue(newFakeKV())

		require.NoError(t, q.Enqueue(ctx, 1, errors.New("a")))
		require.NoError(t, q.Remove(ctx, 1))
		require.NoError(t, q.Remove(ctx, 1))

		depth, err := q.Depth(ctx)
		require.NoError(t, err)
		assert.Zero(t, depth)
	})
}
