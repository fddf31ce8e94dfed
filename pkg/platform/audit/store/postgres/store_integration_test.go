//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	idpostgres "cis/internal/identifier/store/postgres"
	audit "cis/pkg/platform/audit"
	"cis/pkg/platform/audit/store/postgres"
	"cis/pkg/testutil/containers"
)

func TestAuditStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, idpostgres.Migrate(ctx, pg.DB))
	require.NoError(t, pg.TruncateTables(ctx, "audit_events"))

	store := postgres.New(pg.DB)
	base := time.Now().UTC().Truncate(time.Microsecond)
	event := func(action, to string, at time.Time) audit.Event {
		return audit.Event{
			Category:   audit.CategoryLifecycle,
			Timestamp:  at,
			Family:     audit.FamilySCTID,
			Identifier: "609354008",
			Scope:      "0/00",
			Action:     action,
			ToStatus:   to,
			Author:     "editor",
		}
	}

	require.NoError(t, store.Append(ctx, event("identifier_reserved", "Reserved", base)))
	id := uuid.New()
	assigned := event("identifier_generated", "Assigned", base.Add(time.Second))
	require.NoError(t, store.AppendWithID(ctx, id, assigned))
	require.NoError(t, store.AppendWithID(ctx, id, assigned), "replayed ids are ignored")

	history, err := store.ListByIdentifier(ctx, "609354008")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "Reserved", history[0].ToStatus)
	require.Equal(t, audit.FamilySCTID, history[1].Family)

	recent, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "identifier_generated", recent[0].Action)

	require.NoError(t, store.Append(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Timestamp: base.Add(2 * time.Second),
		Family:    audit.FamilySCTID,
		Scope:     "0/00",
		Action:    string(audit.EventPoolPregenerated),
		Quantity:  25,
	}))
	recent, err = store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, 25, recent[0].Quantity)
}
