package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/pkg/platform/sentinel"
)

// SchemeIDStore persists scheme identifier records in the scheme_ids table.
type SchemeIDStore struct {
	db *sql.DB
}

func NewSchemeIDStore(db *sql.DB) *SchemeIDStore {
	return &SchemeIDStore{db: db}
}

const schemeColumns = `scheme, scheme_id, sequence, check_digit, system_id, status,
	author, software, comment, expiration_date, job_id, created_at, modified_at`

func scanSchemeID(row rowScanner) (*models.SchemeIDRecord, error) {
	var (
		rec        models.SchemeIDRecord
		status     string
		seq        sql.NullInt64
		checkDigit sql.NullInt16
		exp        sql.NullTime
		jobID      sql.NullInt64
	)
	err := row.Scan(
		&rec.Scheme,
		&rec.SchemeID,
		&seq,
		&checkDigit,
		&rec.SystemID,
		&status,
		&rec.Author,
		&rec.Software,
		&rec.Comment,
		&exp,
		&jobID,
		&rec.CreatedAt,
		&rec.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = lifecycle.Status(status)
	rec.Sequence = int64Ptr(seq)
	if checkDigit.Valid {
		cd := int(checkDigit.Int16)
		rec.CheckDigit = &cd
	}
	if exp.Valid {
		t := exp.Time
		rec.ExpirationDate = &t
	}
	rec.JobID = int64Ptr(jobID)
	return &rec, nil
}

func (s *SchemeIDStore) queryMany(ctx context.Context, op, query string, args ...any) ([]*models.SchemeIDRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []*models.SchemeIDRecord{}
	for rows.Next() {
		rec, err := scanSchemeID(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s iterate: %w", op, err)
	}
	return out, nil
}

func (s *SchemeIDStore) FindByID(ctx context.Context, scheme, schemeID string) (*models.SchemeIDRecord, error) {
	query := `SELECT ` + schemeColumns + ` FROM scheme_ids WHERE scheme = $1 AND scheme_id = $2`
	rec, err := scanSchemeID(s.db.QueryRowContext(ctx, query, scheme, schemeID))
	if err != nil {
		return nil, translate(err, "find scheme id")
	}
	return rec, nil
}

func (s *SchemeIDStore) FindByIDs(ctx context.Context, scheme string, schemeIDs []string) ([]*models.SchemeIDRecord, error) {
	query := `SELECT ` + schemeColumns + ` FROM scheme_ids WHERE scheme = $1 AND scheme_id = ANY($2) ORDER BY scheme_id`
	return s.queryMany(ctx, "find scheme ids", query, scheme, pq.Array(schemeIDs))
}

func (s *SchemeIDStore) FindBySystemID(ctx context.Context, scheme, systemID string) (*models.SchemeIDRecord, error) {
	query := `SELECT ` + schemeColumns + ` FROM scheme_ids WHERE scheme = $1 AND system_id = $2 AND system_id <> ''`
	rec, err := scanSchemeID(s.db.QueryRowContext(ctx, query, scheme, systemID))
	if err != nil {
		return nil, translate(err, "find scheme id by system id")
	}
	return rec, nil
}

func (s *SchemeIDStore) FindBySystemIDs(ctx context.Context, scheme string, systemIDs []string) ([]*models.SchemeIDRecord, error) {
	query := `SELECT ` + schemeColumns + ` FROM scheme_ids WHERE scheme = $1 AND system_id = ANY($2) AND system_id <> '' ORDER BY scheme_id`
	return s.queryMany(ctx, "find scheme ids by system ids", query, scheme, pq.Array(systemIDs))
}

func (s *SchemeIDStore) FindAvailable(ctx context.Context, scheme string) (*models.SchemeIDRecord, error) {
	query := `
		SELECT ` + schemeColumns + `
		FROM scheme_ids
		WHERE scheme = $1 AND status = $2
		ORDER BY created_at, scheme_id
		LIMIT 1
	`
	rec, err := scanSchemeID(s.db.QueryRowContext(ctx, query, scheme, string(lifecycle.StatusAvailable)))
	if err != nil {
		return nil, translate(err, "find available scheme id")
	}
	return rec, nil
}

const insertSchemeID = `
	INSERT INTO scheme_ids (` + schemeColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

func schemeArgs(rec *models.SchemeIDRecord) []any {
	var (
		exp sql.NullTime
		cd  sql.NullInt16
	)
	if rec.ExpirationDate != nil {
		exp = sql.NullTime{Time: *rec.ExpirationDate, Valid: true}
	}
	if rec.CheckDigit != nil {
		cd = sql.NullInt16{Int16: int16(*rec.CheckDigit), Valid: true}
	}
	return []any{
		rec.Scheme,
		rec.SchemeID,
		nullInt64(rec.Sequence),
		cd,
		rec.SystemID,
		string(rec.Status),
		rec.Author,
		rec.Software,
		rec.Comment,
		exp,
		nullInt64(rec.JobID),
		rec.CreatedAt,
		rec.ModifiedAt,
	}
}

func (s *SchemeIDStore) Create(ctx context.Context, rec *models.SchemeIDRecord) error {
	_, err := s.db.ExecContext(ctx, insertSchemeID, schemeArgs(rec)...)
	return translate(err, "create scheme id")
}

func (s *SchemeIDStore) FindOrCreate(ctx context.Context, rec *models.SchemeIDRecord) (*models.SchemeIDRecord, error) {
	_, err := s.db.ExecContext(ctx, insertSchemeID+` ON CONFLICT (scheme, scheme_id) DO NOTHING`, schemeArgs(rec)...)
	if err != nil {
		return nil, translate(err, "find or create scheme id")
	}
	return s.FindByID(ctx, rec.Scheme, rec.SchemeID)
}

func (s *SchemeIDStore) Update(ctx context.Context, rec *models.SchemeIDRecord, expected lifecycle.Status) error {
	var exp sql.NullTime
	if rec.ExpirationDate != nil {
		exp = sql.NullTime{Time: *rec.ExpirationDate, Valid: true}
	}
	query := `
		UPDATE scheme_ids SET
			system_id = $3,
			status = $4,
			author = $5,
			software = $6,
			comment = $7,
			expiration_date = $8,
			job_id = $9,
			modified_at = $10
		WHERE scheme = $1 AND scheme_id = $2 AND status = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		rec.Scheme,
		rec.SchemeID,
		rec.SystemID,
		string(rec.Status),
		rec.Author,
		rec.Software,
		rec.Comment,
		exp,
		nullInt64(rec.JobID),
		rec.ModifiedAt,
		string(expected),
	)
	if err != nil {
		return translate(err, "update scheme id")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update scheme id rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM scheme_ids WHERE scheme = $1 AND scheme_id = $2)`,
		rec.Scheme, rec.SchemeID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check scheme id exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}
