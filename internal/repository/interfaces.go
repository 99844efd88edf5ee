package repository

import (
	"context"
	"database/sql"

	"github.com/petsync/syncd/internal/models"
)

// DBTX is the database surface the repositories run on. Both *sql.DB and
// the traced observability wrapper satisfy it.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PetProfileRepo defines operations on the on-device pet profile store.
// Update accepts a partial field map keyed by local field name; unknown
// keys are rejected.
type PetProfileRepo interface {
	Create(ctx context.Context, profile *models.PetProfile) (int64, error)
	GetByID(ctx context.Context, id int64, ownerID string) (*models.PetProfile, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}, ownerID string) error
}

// KVRepo is the key-value settings store used for local sync bookkeeping:
// field timestamps, remote-id associations and the pending-sync queue.
type KVRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
