package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes the on-device SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Pet profiles (the local copy of the syncable entity)
	CREATE TABLE IF NOT EXISTS pet_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		species TEXT NOT NULL DEFAULT '',
		breed TEXT NOT NULL DEFAULT '',
		date_of_birth TEXT NOT NULL DEFAULT '',
		weight TEXT NOT NULL DEFAULT '',
		color_markings TEXT NOT NULL DEFAULT '',
		sex TEXT NOT NULL DEFAULT '',
		personality_traits TEXT NOT NULL DEFAULT '[]',
		medical_conditions TEXT NOT NULL DEFAULT '[]',
		dietary_restrictions TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		insurance_provider TEXT NOT NULL DEFAULT '',
		insurance_policy_number TEXT NOT NULL DEFAULT '',
		emergency_contact_name TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pet_profiles_owner_id ON pet_profiles(owner_id);

	-- Key-value settings store (field timestamps, remote-id associations,
	-- pending-sync queue)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(schema)
	return err
}
