package fieldmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petsync/syncd/internal/models"
)

func TestDateTransform(t *testing.T) {
	m, ok := ByLocal(models.FieldDateOfBirth)
	require.True(t, ok)

	t.Run("local date becomes UTC calendar date", func(t *testing.T) {
		v, err := m.ToRemote("2020-03-15")
		require.NoError(t, err)

		d, ok := v.(time.Time)
		require.True(t, ok)
		assert.Equal(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("round trip preserves the date", func(t *testing.T) {
		remote, err := m.ToRemote("2020-03-15")
		require.NoError(t, err)

		local, err := m.ToLocal(remote)
		require.NoError(t, err)
		assert.Equal(t, "2020-03-15", local)
	})

	t.Run("timestamp string truncates to its date", func(t *testing.T) {
		local, err := m.ToLocal("2020-03-15T22:45:00Z")
		require.NoError(t, err)
		assert.Equal(t, "2020-03-15", local)
	})

	t.Run("empty string maps to absent", func(t *testing.T) {
		remote, err := m.ToRemote("")
		require.NoError(t, err)
		assert.Nil(t, remote)

		local, err := m.ToLocal(nil)
		require.NoError(t, err)
		assert.Equal(t, "", local)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := m.ToRemote("not-a-date")
		assert.Error(t, err)
	})
}

func TestWeightTransform(t *testing.T) {
	m, ok := ByLocal(models.FieldWeight)
	require.True(t, ok)

	t.Run("decimal string becomes a number", func(t *testing.T) {
		v, err := m.ToRemote("12.5")
		require.NoError(t, err)
		assert.Equal(t, 12.5, v)
	})

	t.Run("trailing zeros are not preserved", func(t *testing.T) {
		remote, err := m.ToRemote("12.50")
		require.NoError(t, err)

		local, err := m.ToLocal(remote)
		require.NoError(t, err)
		assert.Equal(t, "12.5", local)
	})

	t.Run("normalize collapses equivalent spellings", func(t *testing.T) {
		a, err := Normalize(models.FieldWeight, "12.50")
		require.NoError(t, err)
		b, err := Normalize(models.FieldWeight, "12.5")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("empty string maps to absent", func(t *testing.T) {
		remote, err := m.ToRemote("")
		require.NoError(t, err)
		assert.Nil(t, remote)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := m.ToRemote("heavy")
		assert.Error(t, err)
	})
}

func TestSetTransform(t *testing.T) {
	m, ok := ByLocal(models.FieldPersonalityTraits)
	require.True(t, ok)

	t.Run("remote representation is sorted", func(t *testing.T) {
		v, err := m.ToRemote([]string{"playful", "calm", "curious"})
		require.NoError(t, err)
		assert.Equal(t, []string{"calm", "curious", "playful"}, v)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		in := []string{"b", "a"}
		_, err := m.ToRemote(in)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, in)
	})

	t.Run("nil maps to empty set", func(t *testing.T) {
		v, err := m.ToRemote(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{}, v)
	})

	t.Run("json decoded slices are accepted", func(t *testing.T) {
		v, err := m.ToLocal([]interface{}{"calm", "playful"})
		require.NoError(t, err)
		assert.Equal(t, []string{"calm", "playful"}, v)
	})
}

func TestInsuranceComposite(t *testing.T) {
	provider, ok := ByLocal(models.FieldInsuranceProvider)
	require.True(t, ok)
	policy, ok := ByLocal(models.FieldInsurancePolicyNumber)
	require.True(t, ok)

	t.Run("both fields share the remote composite", func(t *testing.T) {
		assert.Equal(t, models.RemoteFieldInsurance, provider.Remote)
		assert.Equal(t, models.RemoteFieldInsurance, policy.Remote)

		both := ByRemote(models.RemoteFieldInsurance)
		assert.Len(t, both, 2)
	})

	t.Run("only the provider is read back", func(t *testing.T) {
		assert.True(t, provider.ReadBack)
		assert.False(t, policy.ReadBack)
	})

	t.Run("sub fields extract from the composite", func(t *testing.T) {
		composite := map[string]interface{}{"provider": "PetCare Co", "policy_number": "PN-1234"}

		p, err := provider.ToLocal(composite)
		require.NoError(t, err)
		assert.Equal(t, "PetCare Co", p)

		n, err := policy.ToLocal(composite)
		require.NoError(t, err)
		assert.Equal(t, "PN-1234", n)
	})

	t.Run("typed composite values are accepted", func(t *testing.T) {
		ins := &models.RemoteInsurance{Provider: "PetCare Co", PolicyNumber: "PN-1234"}

		p, err := provider.ToLocal(ins)
		require.NoError(t, err)
		assert.Equal(t, "PetCare Co", p)
	})

	t.Run("absent composite maps to empty strings", func(t *testing.T) {
		p, err := provider.ToLocal(nil)
		require.NoError(t, err)
		assert.Equal(t, "", p)
	})
}

func TestNormalizeRoundTripLaw(t *testing.T) {
	// Normalize(x) must equal toLocal(toRemote(x)) and be a fixed point:
	// normalizing twice changes nothing.
	cases := []struct {
		field string
		value interface{}
	}{
		{models.FieldName, "Rex"},
		{models.FieldDateOfBirth, "2019-07-01"},
		{models.FieldWeight, "7.25"},
		{models.FieldPersonalityTraits, []string{"curious", "calm"}},
		{models.FieldInsuranceProvider, "PetCare Co"},
		{models.FieldInsurancePolicyNumber, "PN-1234"},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			once, err := Normalize(tc.field, tc.value)
			require.NoError(t, err)

			twice, err := Normalize(tc.field, once)
			require.NoError(t, err)
			assert.True(t, Equal(once, twice))
		})
	}
}

func TestEqual(t *testing.T) {
	t.Run("sets compare order insensitively", func(t *testing.T) {
		assert.True(t, Equal([]string{"a", "b"}, []string{"b", "a"}))
		assert.False(t, Equal([]string{"a"}, []string{"a", "a"}))
	})

	t.Run("mixed slice representations compare equal", func(t *testing.T) {
		assert.True(t, Equal([]string{"a", "b"}, []interface{}{"b", "a"}))
	})

	t.Run("scalars compare deeply", func(t *testing.T) {
		assert.True(t, Equal("12.5", "12.5"))
		assert.False(t, Equal("12.5", "12.50"))
		assert.True(t, Equal(nil, nil))
		assert.False(t, Equal("", nil))
	})
}

func TestMappingTableCoversEveryLocalField(t *testing.T) {
	profile := models.PetProfile{}
	for name := range profile.Fields() {
		_, ok := ByLocal(name)
		assert.True(t, ok, "field %s has no mapping", name)
	}
	assert.Len(t, Mappings(), len(profile.Fields()))
}
