// Package fieldmap defines the static bidirectional mapping between local
// pet profile fields and the cloud record's fields, together with the value
// transformers for each pair. Everything in this package is pure.
package fieldmap

import (
	"reflect"

	"github.com/petsync/syncd/internal/models"
)

// TransformFunc converts a single field value between representations.
type TransformFunc func(interface{}) (interface{}, error)

// Mapping binds one local field to one remote field. The mapping is not
// bijective: both insurance fields collapse into the remote "insurance"
// composite. ReadBack marks whether the remote value is restored into this
// local field on reconciliation and realtime updates; the policy number is
// not restored (the provider is authoritative for the composite on read).
type Mapping struct {
	Local    string
	Remote   string
	ReadBack bool
	ToRemote TransformFunc
	ToLocal  TransformFunc
}

var mappings = []Mapping{
	{Local: models.FieldName, Remote: models.RemoteFieldName, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
	{Local: models.FieldSpecies, Remote: models.RemoteFieldSpecies, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
	{Local: models.FieldBreed, Remote: models.RemoteFieldBreed, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
	{Local: models.FieldDateOfBirth, Remote: models.RemoteFieldBirthDate, ReadBack: true, ToRemote: dateToRemote, ToLocal: dateToLocal},
	{Local: models.FieldWeight, Remote: models.RemoteFieldWeight, ReadBack: true, ToRemote: weightToRemote, ToLocal: weightToLocal},
	{Local: models.FieldColorMarkings, Remote: models.RemoteFieldColor, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
	{Local: models.FieldSex, Remote: models.RemoteFieldGender, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
	{Local: models.FieldPersonalityTraits, Remote: models.RemoteFieldPersonalityTraits, ReadBack: true, ToRemote: setToRemote, ToLocal: setToLocal},
	{Local: models.FieldMedicalConditions, Remote: models.RemoteFieldMedicalConditions, ReadBack: true, ToRemote: setToRemote, ToLocal: setToLocal},
	{Local: models.FieldDietaryRestrictions, Remote: models.RemoteFieldDietaryRestrictions, ReadBack: true, ToRemote: setToRemote, ToLocal: setToLocal},
	{Local: models.FieldNotes, Remote: models.RemoteFieldNotes, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
	{Local: models.FieldInsuranceProvider, Remote: models.RemoteFieldInsurance, ReadBack: true, ToRemote: providerToRemote, ToLocal: providerToLocal},
	// The policy number shares the composite but is never read back; only
	// the provider sub-field is authoritative on read. This asymmetry
	// mirrors the mobile client and is tracked in DESIGN.md.
	{Local: models.FieldInsurancePolicyNumber, Remote: models.RemoteFieldInsurance, ReadBack: false, ToRemote: policyToRemote, ToLocal: policyToLocal},
	{Local: models.FieldEmergencyContactName, Remote: models.RemoteFieldEmergencyContact, ReadBack: true, ToRemote: toRemoteString, ToLocal: toLocalString},
}

// Mappings returns the full mapping table in declaration order.
func Mappings() []Mapping {
	out := make([]Mapping, len(mappings))
	copy(out, mappings)
	return out
}

// ByLocal looks up the mapping for a local field name.
func ByLocal(name string) (Mapping, bool) {
	for _, m := range mappings {
		if m.Local == name {
			return m, true
		}
	}
	return Mapping{}, false
}

// ByRemote returns every mapping bound to a remote field name. The
// insurance composite returns two entries.
func ByRemote(name string) []Mapping {
	var out []Mapping
	for _, m := range mappings {
		if m.Remote == name {
			out = append(out, m)
		}
	}
	return out
}

// Normalize applies the same precision loss the forward transform applies,
// so that toLocal(toRemote(x)) == Normalize(x) holds for every mapped
// field. Used to bring local values into the comparable representation.
func Normalize(localName string, v interface{}) (interface{}, error) {
	m, ok := ByLocal(localName)
	if !ok {
		return nil, models.ErrUnknownField
	}
	remote, err := m.ToRemote(v)
	if err != nil {
		return nil, err
	}
	return m.ToLocal(remote)
}

// Equal reports whether two values in the local representation are the
// same. Set-valued fields compare order-insensitively; everything else is
// a deep comparison.
func Equal(a, b interface{}) bool {
	as, aok := toStringSlice(a)
	bs, bok := toStringSlice(b)
	if aok && bok {
		return equalSets(as, bs)
	}
	if aok != bok {
		return false
	}
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}
