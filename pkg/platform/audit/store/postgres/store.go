package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "cis/pkg/platform/audit"

	"github.com/google/uuid"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one event under a fresh id.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	return s.AppendWithID(ctx, uuid.New(), event)
}

// AppendWithID inserts event under eventID. Duplicate ids are ignored so
// replays from a broker are idempotent.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, family, identifier, scope, action,
			from_status, to_status, system_id, author, software, request_id, quantity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		string(event.Family),
		event.Identifier,
		event.Scope,
		event.Action,
		event.FromStatus,
		event.ToStatus,
		event.SystemID,
		event.Author,
		event.Software,
		event.RequestID,
		event.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectEvents = `
	SELECT category, timestamp, family, identifier, scope, action,
		   from_status, to_status, system_id, author, software, request_id, quantity
	FROM audit_events
`

// ListByIdentifier returns the history of one identifier, oldest first.
func (s *Store) ListByIdentifier(ctx context.Context, identifier string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+` WHERE identifier = $1 ORDER BY timestamp ASC`, identifier)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+` ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category, family string
			event            audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&family,
			&event.Identifier,
			&event.Scope,
			&event.Action,
			&event.FromStatus,
			&event.ToStatus,
			&event.SystemID,
			&event.Author,
			&event.Software,
			&event.RequestID,
			&event.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Family = audit.Family(family)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
