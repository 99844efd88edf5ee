package models

import "time"

// Remote field names as exposed by the cloud pet record.
const (
	RemoteFieldName                = "name"
	RemoteFieldSpecies             = "species"
	RemoteFieldBreed               = "breed"
	RemoteFieldBirthDate           = "birth_date"
	RemoteFieldWeight              = "weight"
	RemoteFieldColor               = "color"
	RemoteFieldGender              = "gender"
	RemoteFieldPersonalityTraits   = "personality_traits"
	RemoteFieldMedicalConditions   = "medical_conditions"
	RemoteFieldDietaryRestrictions = "dietary_restrictions"
	RemoteFieldNotes               = "notes"
	RemoteFieldInsurance           = "insurance"
	RemoteFieldEmergencyContact    = "emergency_contact"
)

// RemoteInsurance is the composite insurance object stored in the cloud
// record. Two local fields collapse into it; only the provider is restored
// on read-back.
type RemoteInsurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policy_number"`
}

// RemotePetRecord is the cloud representation of a pet profile. The record
// carries a single whole-entity updated_at; there are no per-field remote
// timestamps, which limits conflict detection granularity.
type RemotePetRecord struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Weight    *float64   `json:"weight,omitempty"`
	Color     string     `json:"color"`
	Gender    string     `json:"gender"`

	PersonalityTraits   []string `json:"personality_traits"`
	MedicalConditions   []string `json:"medical_conditions"`
	DietaryRestrictions []string `json:"dietary_restrictions"`

	Notes            string           `json:"notes"`
	Insurance        *RemoteInsurance `json:"insurance,omitempty"`
	EmergencyContact string           `json:"emergency_contact"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldValue returns the value of a single field by its remote name.
func (r *RemotePetRecord) FieldValue(name string) (interface{}, bool) {
	v, ok := r.Fields()[name]
	return v, ok
}

// Fields returns a snapshot of all mapped fields keyed by remote field name.
func (r *RemotePetRecord) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		RemoteFieldName:                r.Name,
		RemoteFieldSpecies:             r.Species,
		RemoteFieldBreed:               r.Breed,
		RemoteFieldColor:               r.Color,
		RemoteFieldGender:              r.Gender,
		RemoteFieldPersonalityTraits:   r.PersonalityTraits,
		RemoteFieldMedicalConditions:   r.MedicalConditions,
		RemoteFieldDietaryRestrictions: r.DietaryRestrictions,
		RemoteFieldNotes:               r.Notes,
		RemoteFieldEmergencyContact:    r.EmergencyContact,
	}

	if r.BirthDate != nil {
		fields[RemoteFieldBirthDate] = *r.BirthDate
	} else {
		fields[RemoteFieldBirthDate] = nil
	}
	if r.Weight != nil {
		fields[RemoteFieldWeight] = *r.Weight
	} else {
		fields[RemoteFieldWeight] = nil
	}
	if r.Insurance != nil {
		fields[RemoteFieldInsurance] = map[string]interface{}{
			"provider":      r.Insurance.Provider,
			"policy_number": r.Insurance.PolicyNumber,
		}
	} else {
		fields[RemoteFieldInsurance] = nil
	}

	return fields
}

// RemoteChange is a single change-notification event delivered by the cloud
// store's subscription channel. Fields is keyed by remote field name and
// holds the new row state for the fields present in the event.
type RemoteChange struct {
	RemoteID  string                 `json:"remote_id"`
	UpdatedAt time.Time              `json:"updated_at"`
	Fields    map[string]interface{} `json:"fields"`
}
