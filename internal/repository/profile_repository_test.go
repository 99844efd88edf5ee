package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petsync/syncd/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleProfile() *models.PetProfile {
	return &models.PetProfile{
		OwnerID:               "owner-1",
		Name:                  "Rex",
		Species:               "dog",
		Breed:                 "beagle",
		DateOfBirth:           "2019-07-01",
		Weight:                "12.5",
		ColorMarkings:         "brown",
		Sex:                   "male",
		PersonalityTraits:     []string{"calm", "curious"},
		InsuranceProvider:     "PetCare",
		InsurancePolicyNumber: "PN-1",
		EmergencyContactName:  "Dana",
	}
}

func TestPetProfileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get round trip", func(t *testing.T) {
		repo := NewPetProfileRepository(testDB(t))

		id, err := repo.Create(ctx, sampleProfile())
		require.NoError(t, err)
		require.NotZero(t, id)

		p, err := repo.GetByID(ctx, id, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "Rex", p.Name)
		assert.Equal(t, "2019-07-01", p.DateOfBirth)
		assert.Equal(t, "12.5", p.Weight)
		assert.Equal(t, []string{"calm", "curious"}, p.PersonalityTraits)
		assert.Empty(t, p.MedicalConditions)
	})

	t.Run("profiles are scoped to their owner", func(t *testing.T) {
		repo := NewPetProfileRepository(testDB(t))

		id, err := repo.Create(ctx, sampleProfile())
		require.NoError(t, err)

		_, err = repo.GetByID(ctx, id, "someone-else")
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
	})

	t.Run("partial update touches only the given fields", func(t *testing.T) {
		repo := NewPetProfileRepository(testDB(t))

		id, err := repo.Create(ctx, sampleProfile())
		require.NoError(t, err)

		err = repo.Update(ctx, id, map[string]interface{}{
			models.FieldName:              "Bella",
			models.FieldPersonalityTraits: []string{"playful"},
		}, "owner-1")
		require.NoError(t, err)

		p, err := repo.GetByID(ctx, id, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "Bella", p.Name)
		assert.Equal(t, []string{"playful"}, p.PersonalityTraits)
		assert.Equal(t, "beagle", p.Breed)
	})

	t.Run("json decoded values are accepted", func(t *testing.T) {
		repo := NewPetProfileRepository(testDB(t))

		id, err := repo.Create(ctx, sampleProfile())
		require.NoError(t, err)

		err = repo.Update(ctx, id, map[string]interface{}{
			models.FieldMedicalConditions: []interface{}{"allergy"},
		}, "owner-1")
		require.NoError(t, err)

		p, err := repo.GetByID(ctx, id, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"allergy"}, p.MedicalConditions)
	})

	t.Run("unknown fields are rejected before any write", func(t *testing.T) {
		repo := NewPetProfileRepository(testDB(t))

		id, err := repo.Create(ctx, sampleProfile())
		require.NoError(t, err)

		err = repo.Update(ctx, id, map[string]interface{}{
			models.FieldName: "Bella",
			"favoriteToy":    "ball",
		}, "owner-1")
		assert.ErrorIs(t, err, models.ErrUnknownField)
	})

	t.Run("updating a missing profile fails", func(t *testing.T) {
		repo := NewPetProfileRepository(testDB(t))

		err := repo.Update(ctx, 99, map[string]interface{}{
			models.FieldName: "Bella",
		}, "owner-1")
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
	})
}
