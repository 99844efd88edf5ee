package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/petsync/syncd/internal/models"
)

// localFieldColumns maps local field names to pet_profiles columns.
var localFieldColumns = map[string]string{
	models.FieldName:                  "name",
	models.FieldSpecies:               "species",
	models.FieldBreed:                 "breed",
	models.FieldDateOfBirth:           "date_of_birth",
	models.FieldWeight:                "weight",
	models.FieldColorMarkings:         "color_markings",
	models.FieldSex:                   "sex",
	models.FieldPersonalityTraits:     "personality_traits",
	models.FieldMedicalConditions:     "medical_conditions",
	models.FieldDietaryRestrictions:   "dietary_restrictions",
	models.FieldNotes:                 "notes",
	models.FieldInsuranceProvider:     "insurance_provider",
	models.FieldInsurancePolicyNumber: "insurance_policy_number",
	models.FieldEmergencyContactName:  "emergency_contact_name",
}

// setValuedFields are stored as JSON arrays in their column.
var setValuedFields = map[string]bool{
	models.FieldPersonalityTraits:   true,
	models.FieldMedicalConditions:   true,
	models.FieldDietaryRestrictions: true,
}

type petProfileRepository struct {
	db DBTX
}

// NewPetProfileRepository creates a SQLite-backed pet profile repository
func NewPetProfileRepository(db DBTX) PetProfileRepo {
	return &petProfileRepository{db: db}
}

// Create inserts a new profile and returns its assigned local id
func (r *petProfileRepository) Create(ctx context.Context, p *models.PetProfile) (int64, error) {
	now := time.Now().UTC()
	traits, _ := json.Marshal(emptyIfNil(p.PersonalityTraits))
	conditions, _ := json.Marshal(emptyIfNil(p.MedicalConditions))
	restrictions, _ := json.Marshal(emptyIfNil(p.DietaryRestrictions))

	query := `
		INSERT INTO pet_profiles (
			owner_id, name, species, breed, date_of_birth, weight,
			color_markings, sex, personality_traits, medical_conditions,
			dietary_restrictions, notes, insurance_provider,
			insurance_policy_number, emergency_contact_name,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		p.OwnerID, p.Name, p.Species, p.Breed, p.DateOfBirth, p.Weight,
		p.ColorMarkings, p.Sex, string(traits), string(conditions),
		string(restrictions), p.Notes, p.InsuranceProvider,
		p.InsurancePolicyNumber, p.EmergencyContactName,
		now, now,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a profile by local id, scoped to its owner
func (r *petProfileRepository) GetByID(ctx context.Context, id int64, ownerID string) (*models.PetProfile, error) {
	query := `
		SELECT id, owner_id, name, species, breed, date_of_birth, weight,
			color_markings, sex, personality_traits, medical_conditions,
			dietary_restrictions, notes, insurance_provider,
			insurance_policy_number, emergency_contact_name,
			created_at, updated_at
		FROM pet_profiles
		WHERE id = ? AND owner_id = ?
	`

	var p models.PetProfile
	var traits, conditions, restrictions string
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.DateOfBirth,
		&p.Weight, &p.ColorMarkings, &p.Sex, &traits, &conditions,
		&restrictions, &p.Notes, &p.InsuranceProvider,
		&p.InsurancePolicyNumber, &p.EmergencyContactName,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(traits), &p.PersonalityTraits); err != nil {
		return nil, fmt.Errorf("invalid personality_traits for profile %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(conditions), &p.MedicalConditions); err != nil {
		return nil, fmt.Errorf("invalid medical_conditions for profile %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(restrictions), &p.DietaryRestrictions); err != nil {
		return nil, fmt.Errorf("invalid dietary_restrictions for profile %d: %w", id, err)
	}

	return &p, nil
}

// Update applies a partial field map to a profile. Field names outside the
// mapping table are rejected before any write happens.
func (r *petProfileRepository) Update(ctx context.Context, id int64, fields map[string]interface{}, ownerID string) error {
	if len(fields) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+3)

	for name, value := range fields {
		column, ok := localFieldColumns[name]
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrUnknownField, name)
		}

		stored, err := storedValue(name, value)
		if err != nil {
			return err
		}
		setClauses = append(setClauses, column+" = ?")
		args = append(args, stored)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, ownerID)

	query := "UPDATE pet_profiles SET " + strings.Join(setClauses, ", ") +
		" WHERE id = ? AND owner_id = ?"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

func storedValue(name string, value interface{}) (interface{}, error) {
	if !setValuedFields[name] {
		if value == nil {
			return "", nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s expects a string, got %T", name, value)
		}
		return s, nil
	}

	switch v := value.(type) {
	case nil:
		return "[]", nil
	case []string:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("field %s expects strings, got %T", name, e)
			}
			out = append(out, s)
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("field %s expects a string list, got %T", name, value)
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
