package repository

import (
	"context"
	"database/sql"
	"time"
)

type kvRepository struct {
	db DBTX
}

// NewKVRepository creates a SQLite-backed key-value settings repository
func NewKVRepository(db DBTX) KVRepo {
	return &kvRepository{db: db}
}

// Get returns the value for a key, or empty string if the key is absent
func (r *kvRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores a value under a key (upsert)
func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

// Remove deletes a key; removing an absent key is not an error
func (r *kvRepository) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	return err
}

// Keys returns all keys with the given prefix
func (r *kvRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT key FROM settings WHERE key LIKE ? ORDER BY key",
		prefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
