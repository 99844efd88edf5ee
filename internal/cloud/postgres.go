package cloud

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/observability"
)

// notifyChannel is the LISTEN/NOTIFY channel the row trigger publishes to.
const notifyChannel = "pet_record_changes"

// remoteFieldColumns maps remote field names to pet_records columns.
var remoteFieldColumns = map[string]string{
	models.RemoteFieldName:                "name",
	models.RemoteFieldSpecies:             "species",
	models.RemoteFieldBreed:               "breed",
	models.RemoteFieldBirthDate:           "birth_date",
	models.RemoteFieldWeight:              "weight",
	models.RemoteFieldColor:               "color",
	models.RemoteFieldGender:              "gender",
	models.RemoteFieldPersonalityTraits:   "personality_traits",
	models.RemoteFieldMedicalConditions:   "medical_conditions",
	models.RemoteFieldDietaryRestrictions: "dietary_restrictions",
	models.RemoteFieldNotes:               "notes",
	models.RemoteFieldInsurance:           "insurance",
	models.RemoteFieldEmergencyContact:    "emergency_contact",
}

// PostgresStore is a cloud store backed directly by PostgreSQL, with
// LISTEN/NOTIFY as the change-notification channel.
type PostgresStore struct {
	db       *sql.DB
	connInfo string
}

// NewPostgresStore creates and initializes a PostgreSQL-backed cloud store
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := createPetRecordTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresStore{db: db, connInfo: connStr}, nil
}

// Close closes the underlying database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func createPetRecordTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pet_records (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		species TEXT NOT NULL DEFAULT '',
		breed TEXT NOT NULL DEFAULT '',
		birth_date DATE,
		weight DOUBLE PRECISION,
		color TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		personality_traits TEXT[] NOT NULL DEFAULT '{}',
		medical_conditions TEXT[] NOT NULL DEFAULT '{}',
		dietary_restrictions TEXT[] NOT NULL DEFAULT '{}',
		notes TEXT NOT NULL DEFAULT '',
		insurance JSONB,
		emergency_contact TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_pet_records_owner_id ON pet_records(owner_id);

	CREATE OR REPLACE FUNCTION notify_pet_record_change() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('pet_record_changes', row_to_json(NEW)::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS pet_records_notify ON pet_records;
	CREATE TRIGGER pet_records_notify
		AFTER UPDATE ON pet_records
		FOR EACH ROW EXECUTE FUNCTION notify_pet_record_change();
	`

	_, err := db.Exec(schema)
	return err
}

// Get fetches the full remote record
func (s *PostgresStore) Get(ctx context.Context, remoteID string) (*models.RemotePetRecord, error) {
	query := `
		SELECT id, owner_id, name, species, breed, birth_date, weight,
			color, gender, personality_traits, medical_conditions,
			dietary_restrictions, notes, insurance, emergency_contact,
			created_at, updated_at
		FROM pet_records
		WHERE id = $1
	`

	var r models.RemotePetRecord
	var insurance []byte
	err := s.db.QueryRowContext(ctx, query, remoteID).Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Species, &r.Breed, &r.BirthDate,
		&r.Weight, &r.Color, &r.Gender,
		pq.Array(&r.PersonalityTraits),
		pq.Array(&r.MedicalConditions),
		pq.Array(&r.DietaryRestrictions),
		&r.Notes, &insurance, &r.EmergencyContact,
		&r.CreatedAt, &r.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrRemoteNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(insurance) > 0 {
		var ins models.RemoteInsurance
		if err := json.Unmarshal(insurance, &ins); err != nil {
			return nil, fmt.Errorf("invalid insurance for record %s: %w", remoteID, err)
		}
		r.Insurance = &ins
	}

	return &r, nil
}

// Insert creates the remote record and returns it with its assigned id
func (s *PostgresStore) Insert(ctx context.Context, record *models.RemotePetRecord) (*models.RemotePetRecord, error) {
	created := *record
	created.ID = uuid.New().String()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	var insurance interface{}
	if created.Insurance != nil {
		data, err := json.Marshal(created.Insurance)
		if err != nil {
			return nil, err
		}
		insurance = data
	}

	query := `
		INSERT INTO pet_records (
			id, owner_id, name, species, breed, birth_date, weight,
			color, gender, personality_traits, medical_conditions,
			dietary_restrictions, notes, insurance, emergency_contact,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := s.db.ExecContext(ctx, query,
		created.ID, created.OwnerID, created.Name, created.Species,
		created.Breed, created.BirthDate, created.Weight, created.Color,
		created.Gender,
		pq.Array(emptyArray(created.PersonalityTraits)),
		pq.Array(emptyArray(created.MedicalConditions)),
		pq.Array(emptyArray(created.DietaryRestrictions)),
		created.Notes, insurance, created.EmergencyContact,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update keyed by remote field name and stamps
// updated_at. The row trigger publishes the new row state afterwards.
func (s *PostgresStore) Update(ctx context.Context, remoteID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)

	for name, value := range fields {
		column, ok := remoteFieldColumns[name]
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrUnknownField, name)
		}
		arg, err := columnValue(name, value)
		if err != nil {
			return err
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, arg)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, time.Now().UTC(), remoteID)

	query := "UPDATE pet_records SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrRemoteNotFound
	}
	return nil
}

func columnValue(name string, value interface{}) (interface{}, error) {
	switch name {
	case models.RemoteFieldPersonalityTraits,
		models.RemoteFieldMedicalConditions,
		models.RemoteFieldDietaryRestrictions:
		s, ok := toStrings(value)
		if !ok {
			return nil, fmt.Errorf("field %s expects a string list, got %T", name, value)
		}
		return pq.Array(s), nil
	case models.RemoteFieldInsurance:
		if value == nil {
			return nil, nil
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return data, nil
	default:
		return value, nil
	}
}

// Subscribe listens on the NOTIFY channel and forwards row changes for the
// requested record until ctx is cancelled.
func (s *PostgresStore) Subscribe(ctx context.Context, remoteID string) (<-chan models.RemoteChange, error) {
	listener := pq.NewListener(s.connInfo, 10*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				observability.Warnf("Postgres listener event %d: %v", event, err)
			}
		})

	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, err
	}

	events := make(chan models.RemoteChange, 16)

	go func() {
		defer close(events)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					// Reconnect notification; nothing to forward.
					continue
				}

				change, err := parseRowNotification(n.Extra)
				if err != nil {
					observability.Warnf("Discarding malformed change notification: %v", err)
					continue
				}
				if change.RemoteID != remoteID {
					continue
				}

				select {
				case events <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func parseRowNotification(payload string) (models.RemoteChange, error) {
	var row map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		return models.RemoteChange{}, err
	}

	id, _ := row["id"].(string)
	if id == "" {
		return models.RemoteChange{}, fmt.Errorf("notification without record id")
	}

	updatedAt, err := parseTimestamp(row["updated_at"])
	if err != nil {
		return models.RemoteChange{}, err
	}

	fields := make(map[string]interface{}, len(remoteFieldColumns))
	for name := range remoteFieldColumns {
		if v, ok := row[name]; ok {
			fields[name] = v
		}
	}

	return models.RemoteChange{
		RemoteID:  id,
		UpdatedAt: updatedAt,
		Fields:    fields,
	}, nil
}

func parseTimestamp(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("notification without updated_at")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999-07:00", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable updated_at %q", s)
}

func toStrings(v interface{}) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	case nil:
		return []string{}, true
	default:
		return nil, false
	}
}

func emptyArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
