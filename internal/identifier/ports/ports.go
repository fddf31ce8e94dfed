// Package ports defines the interfaces the identifier service consumes.
// Stores are pure I/O and report failures with sentinel errors; lifecycle
// rules and locking belong to the service.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"cis/internal/identifier/models"
	"cis/internal/keylock"
	"cis/internal/lifecycle"
	"cis/pkg/platform/audit"
)

// SCTIDStore persists SCTID records.
type SCTIDStore interface {
	// FindByID returns sentinel.ErrNotFound when the SCTID was never recorded.
	FindByID(ctx context.Context, sctid string) (*models.SCTIDRecord, error)

	// FindBySystemID looks up the record bound to systemID in namespace.
	FindBySystemID(ctx context.Context, namespace int64, systemID string) (*models.SCTIDRecord, error)

	// FindAvailable returns one Available record of the partition, or
	// sentinel.ErrNotFound when the pool is empty.
	FindAvailable(ctx context.Context, key models.PartitionKey) (*models.SCTIDRecord, error)

	// Find returns records matching filter ordered by SCTID.
	Find(ctx context.Context, filter models.SCTIDFilter, limit, offset int) ([]*models.SCTIDRecord, error)

	// Create inserts rec. Duplicate SCTIDs or system ids yield sentinel.ErrConflict.
	Create(ctx context.Context, rec *models.SCTIDRecord) error

	// FindOrCreate returns the stored record for rec.SCTID, inserting rec first
	// when none exists.
	FindOrCreate(ctx context.Context, rec *models.SCTIDRecord) (*models.SCTIDRecord, error)

	// Update overwrites the mutable fields of rec provided the stored status
	// still equals expected; otherwise it returns sentinel.ErrInvalidState.
	Update(ctx context.Context, rec *models.SCTIDRecord, expected lifecycle.Status) error
}

// SchemeIDStore persists scheme identifier records. Every method is scoped
// to one scheme.
type SchemeIDStore interface {
	FindByID(ctx context.Context, scheme, schemeID string) (*models.SchemeIDRecord, error)
	// FindByIDs returns the records that exist; missing ids are omitted.
	FindByIDs(ctx context.Context, scheme string, schemeIDs []string) ([]*models.SchemeIDRecord, error)
	FindBySystemID(ctx context.Context, scheme, systemID string) (*models.SchemeIDRecord, error)
	FindBySystemIDs(ctx context.Context, scheme string, systemIDs []string) ([]*models.SchemeIDRecord, error)
	FindAvailable(ctx context.Context, scheme string) (*models.SchemeIDRecord, error)
	Create(ctx context.Context, rec *models.SchemeIDRecord) error
	FindOrCreate(ctx context.Context, rec *models.SchemeIDRecord) (*models.SchemeIDRecord, error)
	Update(ctx context.Context, rec *models.SchemeIDRecord, expected lifecycle.Status) error
}

// PartitionCounterStore holds the last issued sequence per partition.
// Callers must hold the partition's lock across Get and Save.
type PartitionCounterStore interface {
	// Get returns sentinel.ErrNotFound for a partition that was never provisioned.
	Get(ctx context.Context, key models.PartitionKey) (*models.PartitionCounter, error)
	Save(ctx context.Context, counter *models.PartitionCounter) error
}

// SchemeCursorStore holds the last generated identifier per scheme.
type SchemeCursorStore interface {
	Get(ctx context.Context, scheme string) (*models.SchemeCursor, error)
	Save(ctx context.Context, cursor *models.SchemeCursor) error
}

// NamespaceRegistry resolves namespace metadata.
type NamespaceRegistry interface {
	FindNamespace(ctx context.Context, namespace int64) (*models.Namespace, error)
	// Save adds or replaces the entry for ns.Namespace.
	Save(ctx context.Context, ns *models.Namespace) error
}

// Locker serialises work per key.
type Locker interface {
	Acquire(ctx context.Context, key string) (keylock.Release, error)
}

// AuditPublisher emits lifecycle audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
