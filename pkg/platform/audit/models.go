package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can route or retain them differently.
type EventCategory string

const (
	// CategoryLifecycle covers status changes of issued identifiers. These
	// are the system of record for who holds which identifier.
	CategoryLifecycle EventCategory = "lifecycle"

	// CategoryOperations covers bookkeeping such as pool pregeneration.
	CategoryOperations EventCategory = "operations"
)

// Family names the kind of identifier an event is about.
type Family string

const (
	FamilySCTID  Family = "sctid"
	FamilyScheme Family = "scheme"
)

// Event is emitted from domain logic to capture a lifecycle change. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	Family     Family        `json:"family"`
	Identifier string        `json:"identifier"`
	// Scope is the namespace/partition of an SCTID or the scheme name.
	Scope      string `json:"scope"`
	Action     string `json:"action"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	SystemID   string `json:"system_id,omitempty"`
	// Quantity counts the records an operations event touched.
	Quantity   int    `json:"quantity,omitempty"`
	Author     string `json:"author,omitempty"`
	Software   string `json:"software,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventIdentifierGenerated  AuditEvent = "identifier_generated"
	EventIdentifierReserved   AuditEvent = "identifier_reserved"
	EventIdentifierRegistered AuditEvent = "identifier_registered"
	EventIdentifierDeprecated AuditEvent = "identifier_deprecated"
	EventIdentifierReleased   AuditEvent = "identifier_released"
	EventIdentifierPublished  AuditEvent = "identifier_published"
	EventPoolPregenerated     AuditEvent = "pool_pregenerated"
	EventNamespaceRegistered  AuditEvent = "namespace_registered"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentifierGenerated:  CategoryLifecycle,
	EventIdentifierReserved:   CategoryLifecycle,
	EventIdentifierRegistered: CategoryLifecycle,
	EventIdentifierDeprecated: CategoryLifecycle,
	EventIdentifierReleased:   CategoryLifecycle,
	EventIdentifierPublished:  CategoryLifecycle,
	EventPoolPregenerated:     CategoryOperations,
	EventNamespaceRegistered:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ForAction maps a lifecycle action name ("Generate", "Reserve", ...) to
// its audit event.
func ForAction(action string) AuditEvent {
	switch action {
	case "Generate":
		return EventIdentifierGenerated
	case "Reserve":
		return EventIdentifierReserved
	case "Register":
		return EventIdentifierRegistered
	case "Deprecate":
		return EventIdentifierDeprecated
	case "Release":
		return EventIdentifierReleased
	case "Publish":
		return EventIdentifierPublished
	default:
		return AuditEvent(action)
	}
}

// Emitter accepts audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
