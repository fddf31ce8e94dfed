package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cis/pkg/domain-errors"
)

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	g, err := r.Lookup("ctv3id")
	require.NoError(t, err)
	assert.Equal(t, "CTV3ID", g.Name())

	g, err = r.Lookup("SnomedId")
	require.NoError(t, err)
	assert.Equal(t, "SNOMEDID", g.Name())

	_, err = r.Lookup("ICD10")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	assert.Equal(t, []string{"CTV3ID", "SNOMEDID"}, r.Names())
}

func TestCTV3ID(t *testing.T) {
	g := CTV3ID{}

	t.Run("next increments with carry", func(t *testing.T) {
		cases := map[string]string{
			"":      "00000",
			"00000": "00001",
			"00009": "0000A",
			"0000Z": "0000a",
			"0000z": "00010",
			"XaBzz": "XaC00",
		}
		for prev, want := range cases {
			got, err := g.Next(prev)
			require.NoError(t, err, prev)
			assert.Equal(t, want, got, prev)
		}
	})

	t.Run("next is strictly increasing", func(t *testing.T) {
		prev := "0zzzy"
		for range 5 {
			next, err := g.Next(prev)
			require.NoError(t, err)
			a, _ := g.Sequence(prev)
			b, ok := g.Sequence(next)
			require.True(t, ok)
			assert.Equal(t, a+1, b)
			prev = next
		}
	})

	t.Run("exhaustion", func(t *testing.T) {
		_, err := g.Next("zzzzz")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeResourceExhausted))
	})

	t.Run("validation", func(t *testing.T) {
		assert.True(t, g.Valid("Xa0Bz"))
		assert.False(t, g.Valid("Xa0B"))
		assert.False(t, g.Valid("Xa0B."))
		_, err := g.Next("bad!!")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, ok := g.CheckDigit("Xa0Bz")
		assert.False(t, ok)
	})
}

func TestSNOMEDID(t *testing.T) {
	g := SNOMEDID{}

	t.Run("next", func(t *testing.T) {
		cases := map[string]string{
			"":        "A-00000",
			"A-00000": "A-00001",
			"T-D400F": "T-D4010",
			"F-FFFFF": "G-00000",
		}
		for prev, want := range cases {
			got, err := g.Next(prev)
			require.NoError(t, err, prev)
			assert.Equal(t, want, got, prev)
		}
	})

	t.Run("sequence spans axes", func(t *testing.T) {
		a, ok := g.Sequence("F-FFFFF")
		require.True(t, ok)
		b, ok := g.Sequence("G-00000")
		require.True(t, ok)
		assert.Equal(t, a+1, b)
	})

	t.Run("exhaustion", func(t *testing.T) {
		_, err := g.Next("Z-FFFFF")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeResourceExhausted))
	})

	t.Run("validation", func(t *testing.T) {
		assert.True(t, g.Valid("T-D4000"))
		assert.False(t, g.Valid("T-d4000"))
		assert.False(t, g.Valid("TD40000"))
		assert.False(t, g.Valid("1-D4000"))
		assert.False(t, g.Valid("T-G4000"))
	})
}
