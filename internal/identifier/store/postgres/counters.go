package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"cis/internal/identifier/models"
)

// PartitionCounterStore persists per-partition sequences. Read-modify-write
// safety comes from the service's keyed lock, not from this store.
type PartitionCounterStore struct {
	db *sql.DB
}

func NewPartitionCounterStore(db *sql.DB) *PartitionCounterStore {
	return &PartitionCounterStore{db: db}
}

func (s *PartitionCounterStore) Get(ctx context.Context, key models.PartitionKey) (*models.PartitionCounter, error) {
	counter := models.PartitionCounter{Namespace: key.Namespace, PartitionID: key.PartitionID}
	err := s.db.QueryRowContext(ctx,
		`SELECT sequence FROM partition_counters WHERE namespace = $1 AND partition_id = $2`,
		key.Namespace, key.PartitionID,
	).Scan(&counter.Sequence)
	if err != nil {
		return nil, translate(err, "get partition counter")
	}
	return &counter, nil
}

func (s *PartitionCounterStore) Save(ctx context.Context, counter *models.PartitionCounter) error {
	query := `
		INSERT INTO partition_counters (namespace, partition_id, sequence)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, partition_id) DO UPDATE SET
			sequence = EXCLUDED.sequence
	`
	if _, err := s.db.ExecContext(ctx, query, counter.Namespace, counter.PartitionID, counter.Sequence); err != nil {
		return fmt.Errorf("save partition counter: %w", err)
	}
	return nil
}

// SchemeCursorStore persists the last generated id per scheme.
type SchemeCursorStore struct {
	db *sql.DB
}

func NewSchemeCursorStore(db *sql.DB) *SchemeCursorStore {
	return &SchemeCursorStore{db: db}
}

func (s *SchemeCursorStore) Get(ctx context.Context, scheme string) (*models.SchemeCursor, error) {
	cursor := models.SchemeCursor{Scheme: scheme}
	err := s.db.QueryRowContext(ctx, `SELECT id_base FROM scheme_cursors WHERE scheme = $1`, scheme).Scan(&cursor.IDBase)
	if err != nil {
		return nil, translate(err, "get scheme cursor")
	}
	return &cursor, nil
}

func (s *SchemeCursorStore) Save(ctx context.Context, cursor *models.SchemeCursor) error {
	query := `
		INSERT INTO scheme_cursors (scheme, id_base)
		VALUES ($1, $2)
		ON CONFLICT (scheme) DO UPDATE SET
			id_base = EXCLUDED.id_base
	`
	if _, err := s.db.ExecContext(ctx, query, cursor.Scheme, cursor.IDBase); err != nil {
		return fmt.Errorf("save scheme cursor: %w", err)
	}
	return nil
}
