package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPetProfileFields(t *testing.T) {
	p := PetProfile{
		Name:              "Rex",
		Weight:            "12.5",
		PersonalityTraits: []string{"calm"},
	}

	fields := p.Fields()
	assert.Equal(t, "Rex", fields[FieldName])
	assert.Equal(t, "12.5", fields[FieldWeight])
	assert.Equal(t, []string{"calm"}, fields[FieldPersonalityTraits])

	v, ok := p.FieldValue(FieldName)
	require.True(t, ok)
	assert.Equal(t, "Rex", v)

	_, ok = p.FieldValue("favoriteToy")
	assert.False(t, ok)
}

func TestRemotePetRecordFields(t *testing.T) {
	t.Run("absent pointers surface as nil", func(t *testing.T) {
		r := RemotePetRecord{Name: "Rex"}

		fields := r.Fields()
		assert.Nil(t, fields[RemoteFieldBirthDate])
		assert.Nil(t, fields[RemoteFieldWeight])
		assert.Nil(t, fields[RemoteFieldInsurance])
	})

	t.Run("present values are dereferenced", func(t *testing.T) {
		birth := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)
		weight := 12.5
		r := RemotePetRecord{
			BirthDate: &birth,
			Weight:    &weight,
			Insurance: &RemoteInsurance{Provider: "PetCare", PolicyNumber: "PN-1"},
		}

		fields := r.Fields()
		assert.Equal(t, birth, fields[RemoteFieldBirthDate])
		assert.Equal(t, 12.5, fields[RemoteFieldWeight])
		assert.Equal(t, map[string]interface{}{
			"provider":      "PetCare",
			"policy_number": "PN-1",
		}, fields[RemoteFieldInsurance])
	})
}
