// Package service is the identifier allocation and lifecycle engine.
//
// Every status change of an SCTID or scheme identifier goes through
// lifecycle.Transition and is persisted with a conditional update, so a
// record claimed concurrently by another request is detected rather than
// overwritten. Counters and scheme cursors are only read and written while
// holding the KeyedLock of their key; the final record write happens outside
// the numeric partition lock.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"cis/internal/identifier/metrics"
	"cis/internal/identifier/ports"
	"cis/internal/keylock"
	"cis/internal/lifecycle"
	"cis/internal/scheme"
	"cis/pkg/attrs"
	dErrors "cis/pkg/domain-errors"
	"cis/pkg/platform/audit"
	"cis/pkg/platform/sentinel"
	"cis/pkg/requestcontext"
)

const (
	// DefaultMaxAttempts bounds how many counter or cursor candidates one
	// allocation may skip before giving up.
	DefaultMaxAttempts = 100

	// DefaultQueryLimit applies when Query is called without a limit.
	DefaultQueryLimit = 100

	tracerName = "cis/identifier"
)

// Stores groups the persistence ports the engine needs.
type Stores struct {
	SCTIDs    ports.SCTIDStore
	SchemeIDs ports.SchemeIDStore
	Counters  ports.PartitionCounterStore
	Cursors   ports.SchemeCursorStore
}

// Service allocates identifiers and applies lifecycle actions to them.
type Service struct {
	sctids    ports.SCTIDStore
	schemeIDs ports.SchemeIDStore
	counters  ports.PartitionCounterStore
	cursors   ports.SchemeCursorStore
	locker    ports.Locker

	namespaces     ports.NamespaceRegistry
	generators     *scheme.Registry
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	maxAttempts int
	newSystemID func() string
	nsLookups   singleflight.Group
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithNamespaceRegistry enables namespace enrichment of check reports.
func WithNamespaceRegistry(registry ports.NamespaceRegistry) Option {
	return func(s *Service) {
		s.namespaces = registry
	}
}

// WithGenerators replaces the built-in scheme generators.
func WithGenerators(registry *scheme.Registry) Option {
	return func(s *Service) {
		s.generators = registry
	}
}

// WithMaxAttempts overrides DefaultMaxAttempts. Non-positive values are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithSystemIDSource replaces the random UUID given to records that are
// created without a caller supplied system id.
func WithSystemIDSource(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newSystemID = fn
		}
	}
}

// New constructs a Service. A nil locker selects an in-process keylock.Local,
// which is only correct while a single replica runs.
func New(stores Stores, locker ports.Locker, opts ...Option) (*Service, error) {
	switch {
	case stores.SCTIDs == nil:
		return nil, errors.New("sctid store is required")
	case stores.SchemeIDs == nil:
		return nil, errors.New("scheme id store is required")
	case stores.Counters == nil:
		return nil, errors.New("partition counter store is required")
	case stores.Cursors == nil:
		return nil, errors.New("scheme cursor store is required")
	}
	if locker == nil {
		locker = keylock.NewLocal()
	}
	s := &Service{
		sctids:      stores.SCTIDs,
		schemeIDs:   stores.SchemeIDs,
		counters:    stores.Counters,
		cursors:     stores.Cursors,
		locker:      locker,
		generators:  scheme.DefaultRegistry(),
		logger:      slog.New(slog.DiscardHandler),
		maxAttempts: DefaultMaxAttempts,
		newSystemID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s, nil
}

// begin opens a span for an engine operation. The returned func closes it,
// recording err and the operation latency.
func (s *Service) begin(ctx context.Context, operation string, kv ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "identifier."+operation, trace.WithAttributes(kv...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveOperation(operation, time.Since(start))
	}
}

// withLock runs fn while holding key and reports how long acquisition took.
func (s *Service) withLock(ctx context.Context, family audit.Family, key string, fn func(ctx context.Context) error) error {
	start := time.Now()
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire lock "+key)
	}
	defer release()
	s.metrics.ObserveLockWait(string(family), time.Since(start))
	return fn(ctx)
}

// author falls back to the authenticated caller when the request names none.
func author(ctx context.Context, given string) string {
	if given != "" {
		return given
	}
	return requestcontext.Author(ctx)
}

// retryable reports whether a failed claim should move on to the next
// candidate: the record was in the wrong status or changed under us.
func retryable(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeConflict) && !errors.Is(err, sentinel.ErrConflict)
}

// lostRace reports a conditional update that found the record moved on.
func lostRace(err error, id string, action lifecycle.Action) error {
	return dErrors.Wrap(err, dErrors.CodeConflict,
		"Cannot "+action.Verb()+" "+id+", status changed concurrently")
}

func internal(err error, message string) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

func (s *Service) rejected(family audit.Family, id string, current lifecycle.Status, action lifecycle.Action) error {
	s.metrics.IncRejection(string(family), action.String())
	return lifecycle.Rejection(id, current, action)
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Family:     audit.Family(attrs.ExtractString(attributes, "family")),
		Identifier: attrs.ExtractString(attributes, "identifier"),
		Scope:      attrs.ExtractString(attributes, "scope"),
		Action:     event,
		FromStatus: attrs.ExtractString(attributes, "from_status"),
		ToStatus:   attrs.ExtractString(attributes, "to_status"),
		SystemID:   attrs.ExtractString(attributes, "system_id"),
		Author:     attrs.ExtractString(attributes, "author"),
		Software:   attrs.ExtractString(attributes, "software"),
		Quantity:   attrs.ExtractInt(attributes, "quantity"),
		RequestID:  requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
