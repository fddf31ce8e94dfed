package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	kv := []any{
		"identifier", "123008",
		"quantity", 3,
		"sequence", int64(42),
		42, "not-a-key",
		"scope", 7,
		"dangling",
	}

	assert.Equal(t, "123008", ExtractString(kv, "identifier"))
	assert.Equal(t, "", ExtractString(kv, "scope"), "wrong type reads as empty")
	assert.Equal(t, "", ExtractString(kv, "dangling"), "key without value")
	assert.Equal(t, "", ExtractString(kv, "missing"))

	assert.Equal(t, 3, ExtractInt(kv, "quantity"))
	assert.Equal(t, 42, ExtractInt(kv, "sequence"))
	assert.Equal(t, 0, ExtractInt(kv, "identifier"))
	assert.Equal(t, 0, ExtractInt(nil, "quantity"))
}
