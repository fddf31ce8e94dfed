package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "cis/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for _, id := range []string{"a", "b", "a", "c"} {
		require.NoError(t, s.Append(ctx, audit.Event{Identifier: id, Action: "Generate"}))
	}

	byID, err := s.ListByIdentifier(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "c", all[3].Identifier)

	recent, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].Identifier)
	assert.Equal(t, "c", recent[1].Identifier)

	recent, err = s.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 4)

	s.Clear()
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
