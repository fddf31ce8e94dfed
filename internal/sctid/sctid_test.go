package sctid

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "cis/pkg/domain-errors"
)

type CodecSuite struct {
	suite.Suite
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

var knownValid = []string{
	"138875005",
	"404684003",
	"73211009",
	"370136006",
	"900000000000207008",
}

func (s *CodecSuite) TestComputeCheckDigit() {
	s.Run("known values", func() {
		cases := map[string]int{
			"12300":        8,
			"1100000310":   4,
			"999100000311": 6,
			"123401":       1,
			"13887500":     5,
		}
		for digits, want := range cases {
			got, err := ComputeCheckDigit(digits)
			s.Require().NoError(err)
			s.Equal(want, got, digits)
		}
	})

	s.Run("rejects non digits", func() {
		_, err := ComputeCheckDigit("12a4")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects empty input", func() {
		_, err := ComputeCheckDigit("")
		s.Require().Error(err)
	})
}

func (s *CodecSuite) TestIsValid() {
	for _, id := range knownValid {
		s.True(IsValid(id), id)
	}
	s.False(IsValid("609354008"))
	s.False(IsValid("1388750O5"))
	s.False(IsValid("5"))
}

func (s *CodecSuite) TestDetectsSingleSubstitution() {
	for _, id := range knownValid {
		for pos := 0; pos < len(id); pos++ {
			for d := byte('0'); d <= '9'; d++ {
				if d == id[pos] {
					continue
				}
				mutated := id[:pos] + string(d) + id[pos+1:]
				s.False(IsValid(mutated), "substitution %s -> %s", id, mutated)
			}
		}
	}
}

func (s *CodecSuite) TestDetectsAdjacentTransposition() {
	for _, id := range knownValid {
		for pos := 0; pos+1 < len(id); pos++ {
			if id[pos] == id[pos+1] {
				continue
			}
			b := []byte(id)
			b[pos], b[pos+1] = b[pos+1], b[pos]
			s.False(IsValid(string(b)), "transposition %s -> %s", id, string(b))
		}
	}
}

func (s *CodecSuite) TestValidPartition() {
	accepted := 0
	for i := 0; i < 100; i++ {
		p := strconv.Itoa(i)
		if i < 10 {
			p = "0" + p
		}
		if ValidPartition(p) {
			accepted++
		}
	}
	s.Equal(12, accepted)

	for _, p := range []string{"00", "01", "02", "03", "04", "05", "10", "11", "12", "13", "14", "15"} {
		s.True(ValidPartition(p), p)
	}
	for _, p := range []string{"06", "16", "20", "99", "0", "100", ""} {
		s.False(ValidPartition(p), p)
	}
}

func (s *CodecSuite) TestPartitionsFor() {
	s.Equal(CorePartitions, PartitionsFor(0))
	ext := PartitionsFor(1000003)
	s.Equal(ExtensionPartitions, ext)
	for _, p := range append(PartitionsFor(0), ext...) {
		s.True(ValidPartition(p), p)
	}

	ext[0] = "99"
	s.Equal("10", ExtensionPartitions[0], "callers get a copy")
}

func (s *CodecSuite) TestParse() {
	s.Run("core concept", func() {
		st, err := Parse("138875005")
		s.Require().NoError(err)
		s.Equal(int64(138875), st.Sequence)
		s.Equal(int64(0), st.Namespace)
		s.Equal("00", st.PartitionID)
		s.Equal(5, st.CheckDigit)
		s.False(st.IsExtension())
	})

	s.Run("extension concept", func() {
		st, err := Parse("900000000000207008")
		s.Require().NoError(err)
		s.Equal(int64(900000000), st.Sequence)
		s.Equal(int64(1000000), st.Namespace)
		s.Equal("10", st.PartitionID)
		s.True(st.IsExtension())
	})

	s.Run("format errors", func() {
		cases := map[string]string{
			"abc123":              "SctId is not a number.",
			"12345":               "SctId length is less than 6 digits.",
			"1234567890123456789": "SctId length is greater than 18 digits.",
			"123474":              "Partition Id 47 is not valid.",
			"609354008":           "SctId is not valid. Check digit should be 7.",
		}
		for id, msg := range cases {
			_, err := Parse(id)
			s.Require().Error(err, id)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), id)
			s.Contains(err.Error(), msg, id)
		}
	})

	s.Run("extension partition without namespace", func() {
		cd, err := ComputeCheckDigit("1234510")
		s.Require().NoError(err)
		_, err = Parse("1234510" + strconv.Itoa(cd))
		s.Require().Error(err)
		s.Contains(err.Error(), "no namespace could be identified")
	})

	s.Run("padded sequence is rejected", func() {
		canonical, err := Compose(0, "00", 123)
		s.Require().NoError(err)
		cd, err := ComputeCheckDigit("0012300")
		s.Require().NoError(err)
		padded := "0012300" + strconv.Itoa(cd)
		s.NotEqual(canonical, padded)

		_, err = Parse(padded)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Contains(err.Error(), "leading zeros")
	})

	s.Run("zero extension sequence is accepted", func() {
		id, err := Compose(1000003, "10", 0)
		s.Require().NoError(err)
		st, err := Parse(id)
		s.Require().NoError(err)
		s.Equal(int64(0), st.Sequence)
		s.Equal(int64(1000003), st.Namespace)
	})
}

func (s *CodecSuite) TestCompose() {
	s.Run("core id appends partition and check digit", func() {
		id, err := Compose(0, "00", 123)
		s.Require().NoError(err)
		s.Equal("123008", id)
	})

	s.Run("extension id embeds namespace", func() {
		id, err := Compose(1000003, "10", 1)
		s.Require().NoError(err)
		s.Equal("11000003104", id)
	})

	s.Run("round trip", func() {
		inputs := []struct {
			ns        int64
			partition string
			seq       int64
		}{
			{0, "00", 100},
			{0, "01", 987654},
			{0, "02", 4242},
			{1000000, "10", 900000000},
			{9999999, "11", 0},
			{1234567, "15", 12345678},
		}
		for _, in := range inputs {
			id, err := Compose(in.ns, in.partition, in.seq)
			s.Require().NoError(err)
			s.True(IsValid(id), id)
			st, err := Parse(id)
			s.Require().NoError(err, id)
			s.Equal(in.seq, st.Sequence)
			s.Equal(in.ns, st.Namespace)
			s.Equal(in.partition, st.PartitionID)
		}
	})

	s.Run("rejects inconsistent inputs", func() {
		bad := []struct {
			ns        int64
			partition string
			seq       int64
		}{
			{0, "07", 100},
			{0, "10", 100},
			{1000003, "00", 100},
			{42, "10", 100},
			{0, "00", -1},
			{0, "00", 99},
			{0, "00", 1234567890123456},
			{1000003, "10", 123456789},
		}
		for _, in := range bad {
			_, err := Compose(in.ns, in.partition, in.seq)
			s.Require().Error(err, "%+v", in)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestCheck(t *testing.T) {
	t.Run("padded sequence", func(t *testing.T) {
		cd, err := ComputeCheckDigit("0012300")
		require.NoError(t, err)
		r := Check("0012300" + strconv.Itoa(cd))
		assert.False(t, r.Valid)
		assert.Empty(t, r.ComponentType)
		assert.Contains(t, r.ErrorMessage, "SctId sequence has leading zeros.")
	})

	t.Run("valid core concept", func(t *testing.T) {
		r := Check("138875005")
		assert.True(t, r.Valid)
		assert.Equal(t, "Core concept Id", r.ComponentType)
		require.NotNil(t, r.Sequence)
		assert.Equal(t, int64(138875), *r.Sequence)
		require.NotNil(t, r.Namespace)
		assert.Equal(t, int64(0), *r.Namespace)
		assert.Equal(t, "00", r.PartitionID)
		assert.Empty(t, r.ErrorMessage)
	})

	t.Run("valid extension description", func(t *testing.T) {
		id, err := Compose(1000003, "11", 77)
		require.NoError(t, err)
		r := Check(id)
		assert.True(t, r.Valid)
		assert.Equal(t, "Extension description Id", r.ComponentType)
		assert.Equal(t, int64(1000003), *r.Namespace)
	})

	t.Run("wrong check digit reports expected digit", func(t *testing.T) {
		r := Check("609354008")
		assert.False(t, r.Valid)
		assert.Equal(t, "SctId is not valid. Check digit should be 7.", r.ErrorMessage)
		assert.Empty(t, r.ComponentType)
		require.NotNil(t, r.CheckDigit)
		assert.Equal(t, 8, *r.CheckDigit)
	})

	t.Run("not a number", func(t *testing.T) {
		r := Check("12x456")
		assert.False(t, r.Valid)
		assert.Equal(t, "SctId is not a number.", r.ErrorMessage)
		assert.Nil(t, r.Sequence)
	})

	t.Run("bad partition", func(t *testing.T) {
		r := Check("123474")
		assert.False(t, r.Valid)
		assert.Contains(t, r.ErrorMessage, "Partition Id 47 is not valid.")
	})
}
