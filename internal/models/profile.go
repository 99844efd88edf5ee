package models

import "time"

// Local field names for the pet profile. These are the keys used by the
// field mapping table, the field timestamp store, and partial updates
// against the local repository.
const (
	FieldName                  = "name"
	FieldSpecies               = "species"
	FieldBreed                 = "breed"
	FieldDateOfBirth           = "dateOfBirth"
	FieldWeight                = "weight"
	FieldColorMarkings         = "colorMarkings"
	FieldSex                   = "sex"
	FieldPersonalityTraits     = "personalityTraits"
	FieldMedicalConditions     = "medicalConditions"
	FieldDietaryRestrictions   = "dietaryRestrictions"
	FieldNotes                 = "notes"
	FieldInsuranceProvider     = "insuranceProvider"
	FieldInsurancePolicyNumber = "insurancePolicyNumber"
	FieldEmergencyContactName  = "emergencyContactName"
)

// PetProfile is the local (on-device) representation of a pet profile.
// Dates are stored as YYYY-MM-DD strings and the weight as a decimal
// string, matching how the mobile form captures them.
type PetProfile struct {
	ID      int64  `json:"id"`
	OwnerID string `json:"ownerId"`

	Name          string `json:"name"`
	Species       string `json:"species"`
	Breed         string `json:"breed"`
	DateOfBirth   string `json:"dateOfBirth"`
	Weight        string `json:"weight"`
	ColorMarkings string `json:"colorMarkings"`
	Sex           string `json:"sex"`

	PersonalityTraits   []string `json:"personalityTraits"`
	MedicalConditions   []string `json:"medicalConditions"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`

	Notes                 string `json:"notes"`
	InsuranceProvider     string `json:"insuranceProvider"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber"`
	EmergencyContactName  string `json:"emergencyContactName"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FieldValue returns the value of a single field by its local name.
func (p *PetProfile) FieldValue(name string) (interface{}, bool) {
	v, ok := p.Fields()[name]
	return v, ok
}

// Fields returns a snapshot of all mapped fields keyed by local field name.
func (p *PetProfile) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldName:                  p.Name,
		FieldSpecies:               p.Species,
		FieldBreed:                 p.Breed,
		FieldDateOfBirth:           p.DateOfBirth,
		FieldWeight:                p.Weight,
		FieldColorMarkings:         p.ColorMarkings,
		FieldSex:                   p.Sex,
		FieldPersonalityTraits:     p.PersonalityTraits,
		FieldMedicalConditions:     p.MedicalConditions,
		FieldDietaryRestrictions:   p.DietaryRestrictions,
		FieldNotes:                 p.Notes,
		FieldInsuranceProvider:     p.InsuranceProvider,
		FieldInsurancePolicyNumber: p.InsurancePolicyNumber,
		FieldEmergencyContactName:  p.EmergencyContactName,
	}
}
