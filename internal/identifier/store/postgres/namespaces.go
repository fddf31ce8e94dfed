package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"cis/internal/identifier/models"
)

// NamespaceRegistry keeps namespace metadata in the namespaces table.
type NamespaceRegistry struct {
	db *sql.DB
}

func NewNamespaceRegistry(db *sql.DB) *NamespaceRegistry {
	return &NamespaceRegistry{db: db}
}

func (r *NamespaceRegistry) FindNamespace(ctx context.Context, namespace int64) (*models.Namespace, error) {
	ns := models.Namespace{Namespace: namespace}
	err := r.db.QueryRowContext(ctx,
		`SELECT organization_name, email FROM namespaces WHERE namespace = $1`, namespace,
	).Scan(&ns.OrganizationName, &ns.Email)
	if err != nil {
		return nil, translate(err, "find namespace")
	}
	return &ns, nil
}

func (r *NamespaceRegistry) Save(ctx context.Context, ns *models.Namespace) error {
	query := `
		INSERT INTO namespaces (namespace, organization_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace) DO UPDATE SET
			organization_name = EXCLUDED.organization_name,
			email = EXCLUDED.email
	`
	if _, err := r.db.ExecContext(ctx, query, ns.Namespace, ns.OrganizationName, ns.Email); err != nil {
		return fmt.Errorf("save namespace: %w", err)
	}
	return nil
}
