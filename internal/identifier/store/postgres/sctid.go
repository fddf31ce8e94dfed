package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/pkg/platform/sentinel"
)

// SCTIDStore persists SCTID records in the sctids table.
// This store is pure I/O; lifecycle rules belong in the service.
type SCTIDStore struct {
	db *sql.DB
}

func NewSCTIDStore(db *sql.DB) *SCTIDStore {
	return &SCTIDStore{db: db}
}

const sctidColumns = `sctid, sequence, namespace, partition_id, check_digit, system_id, status,
	author, software, comment, expiration_date, job_id, created_at, modified_at`

func scanSCTID(row rowScanner) (*models.SCTIDRecord, error) {
	var (
		rec    models.SCTIDRecord
		status string
		exp    sql.NullTime
		jobID  sql.NullInt64
	)
	err := row.Scan(
		&rec.SCTID,
		&rec.Sequence,
		&rec.Namespace,
		&rec.PartitionID,
		&rec.CheckDigit,
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
	if exp.Valid {
		t := exp.Time
		rec.ExpirationDate = &t
	}
	rec.JobID = int64Ptr(jobID)
	return &rec, nil
}

func (s *SCTIDStore) FindByID(ctx context.Context, sctid string) (*models.SCTIDRecord, error) {
	query := `SELECT ` + sctidColumns + ` FROM sctids WHERE sctid = $1`
	rec, err := scanSCTID(s.db.QueryRowContext(ctx, query, sctid))
	if err != nil {
		return nil, translate(err, "find sctid")
	}
	return rec, nil
}

func (s *SCTIDStore) FindBySystemID(ctx context.Context, namespace int64, systemID string) (*models.SCTIDRecord, error) {
	query := `SELECT ` + sctidColumns + ` FROM sctids WHERE namespace = $1 AND system_id = $2 AND system_id <> ''`
	rec, err := scanSCTID(s.db.QueryRowContext(ctx, query, namespace, systemID))
	if err != nil {
		return nil, translate(err, "find sctid by system id")
	}
	return rec, nil
}

func (s *SCTIDStore) FindAvailable(ctx context.Context, key models.PartitionKey) (*models.SCTIDRecord, error) {
	query := `
		SELECT ` + sctidColumns + `
		FROM sctids
		WHERE namespace = $1 AND partition_id = $2 AND status = $3
		ORDER BY sequence
		LIMIT 1
	`
	rec, err := scanSCTID(s.db.QueryRowContext(ctx, query, key.Namespace, key.PartitionID, string(lifecycle.StatusAvailable)))
	if err != nil {
		return nil, translate(err, "find available sctid")
	}
	return rec, nil
}

func (s *SCTIDStore) Find(ctx context.Context, filter models.SCTIDFilter, limit, offset int) ([]*models.SCTIDRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Namespace != nil {
		add("namespace = $%d", *filter.Namespace)
	}
	if filter.PartitionID != "" {
		add("partition_id = $%d", filter.PartitionID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.SystemID != "" {
		add("system_id = $%d", filter.SystemID)
	}
	if filter.Author != "" {
		add("author = $%d", filter.Author)
	}
	if filter.JobID != nil {
		add("job_id = $%d", *filter.JobID)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + sctidColumns + ` FROM sctids`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY sctid")
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query sctids: %w", err)
	}
	defer rows.Close()

	out := []*models.SCTIDRecord{}
	for rows.Next() {
		rec, err := scanSCTID(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sctid: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sctids: %w", err)
	}
	return out, nil
}

const insertSCTID = `
	INSERT INTO sctids (` + sctidColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

func sctidArgs(rec *models.SCTIDRecord) []any {
	var exp sql.NullTime
	if rec.ExpirationDate != nil {
		exp = sql.NullTime{Time: *rec.ExpirationDate, Valid: true}
	}
	return []any{
		rec.SCTID,
		rec.Sequence,
		rec.Namespace,
		rec.PartitionID,
		rec.CheckDigit,
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

func (s *SCTIDStore) Create(ctx context.Context, rec *models.SCTIDRecord) error {
	_, err := s.db.ExecContext(ctx, insertSCTID, sctidArgs(rec)...)
	return translate(err, "create sctid")
}

// FindOrCreate inserts rec unless the SCTID already exists, then reads back
// whichever record won.
func (s *SCTIDStore) FindOrCreate(ctx context.Context, rec *models.SCTIDRecord) (*models.SCTIDRecord, error) {
	_, err := s.db.ExecContext(ctx, insertSCTID+` ON CONFLICT (sctid) DO NOTHING`, sctidArgs(rec)...)
	if err != nil {
		return nil, translate(err, "find or create sctid")
	}
	return s.FindByID(ctx, rec.SCTID)
}

func (s *SCTIDStore) Update(ctx context.Context, rec *models.SCTIDRecord, expected lifecycle.Status) error {
	var exp sql.NullTime
	if rec.ExpirationDate != nil {
		exp = sql.NullTime{Time: *rec.ExpirationDate, Valid: true}
	}
	query := `
		UPDATE sctids SET
			system_id = $2,
			status = $3,
			author = $4,
			software = $5,
			comment = $6,
			expiration_date = $7,
			job_id = $8,
			modified_at = $9
		WHERE sctid = $1 AND status = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		rec.SCTID,
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
		return translate(err, "update sctid")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sctid rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sctids WHERE sctid = $1)`, rec.SCTID).Scan(&exists); err != nil {
		return fmt.Errorf("check sctid exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}
