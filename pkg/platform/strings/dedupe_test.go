package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  XUsf1  ", "XUsf2  ", "  XUsf3"},
			expected: []string{"XUsf1", "XUsf2", "XUsf3"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"R-F1234", "R-F1235", "R-F1234"},
			expected: []string{"R-F1234", "R-F1235"},
		},
		{
			name:     "keeps case sensitive values apart",
			input:    []string{"XaBcd", "Xabcd"},
			expected: []string{"XaBcd", "Xabcd"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"a", "", "  ", "b"},
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, Missing([]string{"a", "b", "c"}, []string{"b"}))
	assert.Nil(t, Missing([]string{"a"}, []string{"a", "z"}))
	assert.Equal(t, []string{"a"}, Missing([]string{"a"}, nil))
}
