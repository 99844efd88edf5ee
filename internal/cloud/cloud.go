// Package cloud contains clients for the shared cloud copy of pet records.
// Two implementations exist: an HTTP/JSON client whose change channel is a
// WebSocket subscription, and a direct PostgreSQL client whose change
// channel is LISTEN/NOTIFY. The sync engine only sees the Store interface.
package cloud

import (
	"context"

	"github.com/petsync/syncd/internal/models"
)

// Store is the cloud data store consumed by the sync engine.
type Store interface {
	// Get fetches the full remote record. Returns models.ErrRemoteNotFound
	// when the record does not exist.
	Get(ctx context.Context, remoteID string) (*models.RemotePetRecord, error)

	// Insert creates the remote record and returns it with its assigned id.
	Insert(ctx context.Context, record *models.RemotePetRecord) (*models.RemotePetRecord, error)

	// Update applies a partial update keyed by remote field name and stamps
	// the record's updated_at.
	Update(ctx context.Context, remoteID string, fields map[string]interface{}) error

	// Subscribe opens the change-notification channel for one record. The
	// returned channel is closed when ctx is cancelled or the underlying
	// connection is lost.
	Subscribe(ctx context.Context, remoteID string) (<-chan models.RemoteChange, error)
}
