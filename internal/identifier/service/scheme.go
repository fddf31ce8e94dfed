package service

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"cis/internal/identifier/metrics"
	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/internal/scheme"
	dErrors "cis/pkg/domain-errors"
	"cis/pkg/platform/audit"
	"cis/pkg/platform/sentinel"
	pstrings "cis/pkg/platform/strings"
	"cis/pkg/requestcontext"
)

// GenerateSchemeIDs allocates op.Quantity identifiers of op.Scheme and
// assigns them. The whole batch holds the scheme lock.
func (s *Service) GenerateSchemeIDs(ctx context.Context, op models.SchemeOperation) ([]*models.SchemeIDRecord, error) {
	return s.allocateSchemeIDs(ctx, "scheme.generate", op, lifecycle.ActionGenerate)
}

// ReserveSchemeIDs allocates op.Quantity identifiers of op.Scheme and holds them.
func (s *Service) ReserveSchemeIDs(ctx context.Context, op models.SchemeOperation) ([]*models.SchemeIDRecord, error) {
	return s.allocateSchemeIDs(ctx, "scheme.reserve", op, lifecycle.ActionReserve)
}

func (s *Service) allocateSchemeIDs(ctx context.Context, operation string, op models.SchemeOperation, action lifecycle.Action) (recs []*models.SchemeIDRecord, err error) {
	ctx, end := s.begin(ctx, operation,
		attribute.String("scheme", op.Scheme),
		attribute.Int("quantity", op.Quantity),
	)
	defer func() { end(err) }()

	gen, err := s.generators.Lookup(op.Scheme)
	if err != nil {
		return nil, err
	}
	if op.Quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Quantity must be positive.")
	}
	if len(op.SystemIDs) > 0 && len(op.SystemIDs) != op.Quantity {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "systemIds must have one entry per requested identifier")
	}
	if err := validateSystemIDs(op); err != nil {
		return nil, err
	}
	op.Scheme = gen.Name()
	op.Author = author(ctx, op.Author)

	recs = make([]*models.SchemeIDRecord, 0, op.Quantity)
	err = s.withLock(ctx, audit.FamilyScheme, models.SchemeLockKey(op.Scheme), func(ctx context.Context) error {
		cursor, err := s.loadCursor(ctx, op.Scheme)
		if err != nil {
			return err
		}
		for i := range op.Quantity {
			rec, err := s.allocateSchemeID(ctx, gen, cursor, op, i, action)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		if len(recs) == 0 {
			return nil, err
		}
		return recs, &models.BatchError{Committed: schemeValues(recs), Failed: "item " + strconv.Itoa(len(recs)+1), Err: err}
	}
	return recs, nil
}

// allocateSchemeID produces item i of a batch. The caller holds the scheme
// lock; cursor is saved whenever it advances to a claimed identifier.
func (s *Service) allocateSchemeID(ctx context.Context, gen scheme.Generator, cursor *models.SchemeCursor, op models.SchemeOperation, i int, action lifecycle.Action) (*models.SchemeIDRecord, error) {
	systemID := ""
	if !op.AutoSysID {
		systemID = op.SystemIDAt(i)
	}
	if systemID != "" {
		existing, err := s.schemeIDs.FindBySystemID(ctx, op.Scheme, systemID)
		switch {
		case err == nil:
			if existing.Status == lifecycle.Target(action) {
				s.metrics.IncAllocation(string(audit.FamilyScheme), metrics.SourceSystem)
				return existing, nil
			}
			return s.transitionScheme(ctx, existing, op, action, "")
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, internal(err, "failed to look up system id")
		}
	} else {
		systemID = s.newSystemID()
	}

	pooled, err := s.schemeIDs.FindAvailable(ctx, op.Scheme)
	switch {
	case err == nil:
		rec, err := s.transitionScheme(ctx, pooled, op, action, systemID)
		if err == nil {
			s.metrics.IncAllocation(string(audit.FamilyScheme), metrics.SourcePool)
			return rec, nil
		}
		if !retryable(err) {
			return nil, err
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, internal(err, "failed to read available pool")
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		next, err := gen.Next(cursor.IDBase)
		if err != nil {
			return nil, err
		}
		cursor.IDBase = next
		candidate, err := s.schemeIDs.FindOrCreate(ctx, s.newSchemeRecord(ctx, gen, next, s.newSystemID()))
		if err != nil {
			return nil, internal(err, "failed to materialise scheme id record")
		}
		rec, err := s.transitionScheme(ctx, candidate, op, action, systemID)
		if err == nil {
			if err := s.cursors.Save(ctx, cursor); err != nil {
				return nil, internal(err, "failed to save scheme cursor")
			}
			s.metrics.IncAllocation(string(audit.FamilyScheme), metrics.SourceCounter)
			return rec, nil
		}
		if !retryable(err) {
			return nil, err
		}
		s.metrics.IncRetry(string(audit.FamilyScheme))
	}
	s.logger.WarnContext(ctx, "scheme allocation exhausted",
		"scheme", op.Scheme,
		"cursor", cursor.IDBase,
		"attempts", s.maxAttempts,
	)
	return nil, dErrors.New(dErrors.CodeResourceExhausted, "allocation space exhausted")
}

// loadCursor returns the scheme's cursor; a scheme that never generated
// anything starts from the generator's first value.
func (s *Service) loadCursor(ctx context.Context, schemeName string) (*models.SchemeCursor, error) {
	cursor, err := s.cursors.Get(ctx, schemeName)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &models.SchemeCursor{Scheme: schemeName}, nil
	}
	if err != nil {
		return nil, internal(err, "failed to read scheme cursor")
	}
	return cursor, nil
}

// PregenerateSchemeIDs fills the available pool of a scheme with quantity
// fresh identifiers.
func (s *Service) PregenerateSchemeIDs(ctx context.Context, schemeName string, quantity int) (created []*models.SchemeIDRecord, err error) {
	ctx, end := s.begin(ctx, "scheme.pregenerate",
		attribute.String("scheme", schemeName),
		attribute.Int("quantity", quantity),
	)
	defer func() { end(err) }()

	gen, err := s.generators.Lookup(schemeName)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Quantity must be positive.")
	}
	schemeName = gen.Name()

	created = make([]*models.SchemeIDRecord, 0, quantity)
	err = s.withLock(ctx, audit.FamilyScheme, models.SchemeLockKey(schemeName), func(ctx context.Context) error {
		cursor, err := s.loadCursor(ctx, schemeName)
		if err != nil {
			return err
		}
		for len(created) < quantity {
			next, err := gen.Next(cursor.IDBase)
			if err != nil {
				return err
			}
			cursor.IDBase = next
			rec := s.newSchemeRecord(ctx, gen, next, "")
			err = s.schemeIDs.Create(ctx, rec)
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			if err != nil {
				return internal(err, "failed to create pool record "+next)
			}
			created = append(created, rec)
		}
		if err := s.cursors.Save(ctx, cursor); err != nil {
			return internal(err, "failed to save scheme cursor")
		}
		return nil
	})
	if err != nil {
		return created, err
	}

	s.logAudit(ctx, string(audit.EventPoolPregenerated),
		"family", string(audit.FamilyScheme),
		"scope", schemeName,
		"quantity", len(created),
	)
	return created, nil
}

// RegisterSchemeIDs assigns identifiers minted elsewhere. Every transition is
// checked before anything is written; a write failure stops the batch with a
// *models.BatchError.
func (s *Service) RegisterSchemeIDs(ctx context.Context, op models.SchemeOperation) (recs []*models.SchemeIDRecord, err error) {
	ctx, end := s.begin(ctx, "scheme.register",
		attribute.String("scheme", op.Scheme),
		attribute.Int("count", len(op.SchemeIDs)),
	)
	defer func() { end(err) }()

	gen, err := s.generators.Lookup(op.Scheme)
	if err != nil {
		return nil, err
	}
	op.Scheme = gen.Name()
	op.Author = author(ctx, op.Author)
	if err := validateSchemeBatch(gen, op.SchemeIDs); err != nil {
		return nil, err
	}
	if len(op.SystemIDs) > 0 && len(op.SystemIDs) != len(op.SchemeIDs) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "systemIds must have one entry per schemeId")
	}
	if err := validateSystemIDs(op); err != nil {
		return nil, err
	}

	pending := make([]pendingSchemeID, 0, len(op.SchemeIDs))
	for i, id := range op.SchemeIDs {
		systemID := ""
		if !op.AutoSysID {
			systemID = op.SystemIDAt(i)
		}
		if systemID != "" {
			bound, err := s.schemeIDs.FindBySystemID(ctx, op.Scheme, systemID)
			switch {
			case err == nil && bound.SchemeID != id:
				return nil, dErrors.New(dErrors.CodeConflict,
					"SystemId:"+systemID+" already exists with SchemeId:"+bound.SchemeID)
			case err != nil && !errors.Is(err, sentinel.ErrNotFound):
				return nil, internal(err, "failed to look up system id")
			}
		}

		current, err := s.loadOrCreateScheme(ctx, gen, id)
		if err != nil {
			return nil, err
		}
		if current.Status == lifecycle.StatusAssigned && systemID != "" && current.SystemID == systemID {
			pending = append(pending, pendingSchemeID{current: current})
			continue
		}
		next, ok := lifecycle.Transition(current.Status, lifecycle.ActionRegister)
		if !ok {
			return nil, s.rejected(audit.FamilyScheme, current.SchemeID, current.Status, lifecycle.ActionRegister)
		}
		updated := current.Clone()
		op.ApplyTo(updated, next, requestcontext.Now(ctx))
		updated.JobID = op.JobID
		if systemID != "" {
			updated.SystemID = systemID
		}
		pending = append(pending, pendingSchemeID{current: current, updated: updated})
	}
	return s.commitSchemeBatch(ctx, op, lifecycle.ActionRegister, pending)
}

// UpdateSchemeIDs applies Deprecate, Release or Publish to every identifier in
// op.SchemeIDs with the same validate-then-write discipline as RegisterSchemeIDs.
func (s *Service) UpdateSchemeIDs(ctx context.Context, op models.SchemeOperation, action lifecycle.Action) (recs []*models.SchemeIDRecord, err error) {
	ctx, end := s.begin(ctx, "scheme."+action.Verb(),
		attribute.String("scheme", op.Scheme),
		attribute.Int("count", len(op.SchemeIDs)),
	)
	defer func() { end(err) }()

	switch action {
	case lifecycle.ActionDeprecate, lifecycle.ActionRelease, lifecycle.ActionPublish:
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Action "+action.String()+" cannot be applied to existing scheme ids")
	}
	gen, err := s.generators.Lookup(op.Scheme)
	if err != nil {
		return nil, err
	}
	op.Scheme = gen.Name()
	op.Author = author(ctx, op.Author)
	if err := validateSchemeBatch(gen, op.SchemeIDs); err != nil {
		return nil, err
	}

	pending := make([]pendingSchemeID, 0, len(op.SchemeIDs))
	for _, id := range op.SchemeIDs {
		current, err := s.loadOrCreateScheme(ctx, gen, id)
		if err != nil {
			return nil, err
		}
		next, ok := lifecycle.Transition(current.Status, action)
		if !ok {
			return nil, s.rejected(audit.FamilyScheme, current.SchemeID, current.Status, action)
		}
		updated := current.Clone()
		op.ApplyTo(updated, next, requestcontext.Now(ctx))
		updated.JobID = op.JobID
		pending = append(pending, pendingSchemeID{current: current, updated: updated})
	}
	return s.commitSchemeBatch(ctx, op, action, pending)
}

// pendingSchemeID is a validated transition awaiting its write. A nil
// updated means the record already sits in the requested state.
type pendingSchemeID struct {
	current *models.SchemeIDRecord
	updated *models.SchemeIDRecord
}

func (s *Service) commitSchemeBatch(ctx context.Context, op models.SchemeOperation, action lifecycle.Action, pending []pendingSchemeID) ([]*models.SchemeIDRecord, error) {
	recs := make([]*models.SchemeIDRecord, 0, len(pending))
	var committed []string
	for _, p := range pending {
		if p.updated == nil {
			recs = append(recs, p.current)
			continue
		}
		if err := s.schemeIDs.Update(ctx, p.updated, p.current.Status); err != nil {
			return recs, &models.BatchError{
				Committed: committed,
				Failed:    p.current.SchemeID,
				Err:       s.schemeUpdateError(err, p.updated, action),
			}
		}
		committed = append(committed, p.updated.SchemeID)
		recs = append(recs, p.updated)
		s.auditSchemeTransition(ctx, op.Scheme, action, p.current.Status, p.updated)
	}
	return recs, nil
}

// transitionScheme applies action to current and persists it conditionally.
func (s *Service) transitionScheme(ctx context.Context, current *models.SchemeIDRecord, op models.SchemeOperation, action lifecycle.Action, systemID string) (*models.SchemeIDRecord, error) {
	next, ok := lifecycle.Transition(current.Status, action)
	if !ok {
		return nil, s.rejected(audit.FamilyScheme, current.SchemeID, current.Status, action)
	}
	updated := current.Clone()
	op.ApplyTo(updated, next, requestcontext.Now(ctx))
	if systemID != "" {
		updated.SystemID = systemID
	}
	if err := s.schemeIDs.Update(ctx, updated, current.Status); err != nil {
		return nil, s.schemeUpdateError(err, updated, action)
	}
	s.auditSchemeTransition(ctx, op.Scheme, action, current.Status, updated)
	return updated, nil
}

func (s *Service) schemeUpdateError(err error, rec *models.SchemeIDRecord, action lifecycle.Action) error {
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		return lostRace(err, rec.SchemeID, action)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict,
			"SystemId:"+rec.SystemID+" already exists in scheme "+rec.Scheme)
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "SchemeId "+rec.SchemeID+" not found")
	default:
		return internal(err, "failed to update scheme id record")
	}
}

func (s *Service) auditSchemeTransition(ctx context.Context, schemeName string, action lifecycle.Action, from lifecycle.Status, rec *models.SchemeIDRecord) {
	s.logAudit(ctx, string(audit.ForAction(action.String())),
		"family", string(audit.FamilyScheme),
		"identifier", rec.SchemeID,
		"scope", schemeName,
		"from_status", from.String(),
		"to_status", rec.Status.String(),
		"system_id", rec.SystemID,
		"author", rec.Author,
		"software", rec.Software,
	)
}

// GetSchemeIDs returns the records of ids in request order, after removing
// blanks and duplicates. Valid ids never seen before are created Available.
func (s *Service) GetSchemeIDs(ctx context.Context, schemeName string, ids []string) (recs []*models.SchemeIDRecord, err error) {
	ctx, end := s.begin(ctx, "scheme.get", attribute.String("scheme", schemeName))
	defer func() { end(err) }()

	gen, err := s.generators.Lookup(schemeName)
	if err != nil {
		return nil, err
	}
	schemeName = gen.Name()
	ids = pstrings.DedupeAndTrim(ids)
	for _, id := range ids {
		if !gen.Valid(id) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "Not valid SchemeId: "+id)
		}
	}
	if len(ids) == 0 {
		return []*models.SchemeIDRecord{}, nil
	}

	found, err := s.schemeIDs.FindByIDs(ctx, schemeName, ids)
	if err != nil {
		return nil, internal(err, "failed to load scheme ids")
	}
	byID := make(map[string]*models.SchemeIDRecord, len(found))
	for _, rec := range found {
		byID[rec.SchemeID] = rec
	}
	for _, id := range pstrings.Missing(ids, schemeValues(found)) {
		rec, err := s.schemeIDs.FindOrCreate(ctx, s.newSchemeRecord(ctx, gen, id, s.newSystemID()))
		if err != nil {
			return nil, internal(err, "failed to materialise scheme id record")
		}
		byID[id] = rec
	}

	recs = make([]*models.SchemeIDRecord, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, byID[id])
	}
	return recs, nil
}

// GetSchemeID returns one record, creating it Available on first sight.
func (s *Service) GetSchemeID(ctx context.Context, schemeName, id string) (*models.SchemeIDRecord, error) {
	recs, err := s.GetSchemeIDs(ctx, schemeName, []string{id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "schemeId is required")
	}
	return recs[0], nil
}

// GetSchemeIDsBySystemIDs returns the records bound to systemIDs. Unbound
// system ids are omitted.
func (s *Service) GetSchemeIDsBySystemIDs(ctx context.Context, schemeName string, systemIDs []string) (recs []*models.SchemeIDRecord, err error) {
	ctx, end := s.begin(ctx, "scheme.get_by_system_ids", attribute.String("scheme", schemeName))
	defer func() { end(err) }()

	gen, err := s.generators.Lookup(schemeName)
	if err != nil {
		return nil, err
	}
	systemIDs = pstrings.DedupeAndTrim(systemIDs)
	if len(systemIDs) == 0 {
		return []*models.SchemeIDRecord{}, nil
	}
	recs, err = s.schemeIDs.FindBySystemIDs(ctx, gen.Name(), systemIDs)
	if err != nil {
		return nil, internal(err, "failed to look up system ids")
	}
	return recs, nil
}

func (s *Service) loadOrCreateScheme(ctx context.Context, gen scheme.Generator, id string) (*models.SchemeIDRecord, error) {
	rec, err := s.schemeIDs.FindByID(ctx, gen.Name(), id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, internal(err, "failed to load scheme id record")
	}
	rec, err = s.schemeIDs.FindOrCreate(ctx, s.newSchemeRecord(ctx, gen, id, s.newSystemID()))
	if err != nil {
		return nil, internal(err, "failed to materialise scheme id record")
	}
	return rec, nil
}

func (s *Service) newSchemeRecord(ctx context.Context, gen scheme.Generator, id, systemID string) *models.SchemeIDRecord {
	now := requestcontext.Now(ctx)
	rec := &models.SchemeIDRecord{
		Scheme:     gen.Name(),
		SchemeID:   id,
		SystemID:   systemID,
		Status:     lifecycle.StatusAvailable,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if seq, ok := gen.Sequence(id); ok {
		rec.Sequence = &seq
	}
	if cd, ok := gen.CheckDigit(id); ok {
		rec.CheckDigit = &cd
	}
	return rec
}

// validateSchemeBatch rejects empty batches, malformed ids and repeats.
func validateSchemeBatch(gen scheme.Generator, ids []string) error {
	if len(ids) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "schemeIds must not be empty")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !gen.Valid(id) {
			return dErrors.New(dErrors.CodeInvalidInput, "Not valid SchemeId: "+id)
		}
		if _, dup := seen[id]; dup {
			return dErrors.New(dErrors.CodeInvalidInput, "Duplicate SchemeId: "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// validateSystemIDs rejects a batch that binds one system id to two items.
// Auto-generated system ids are never repeated.
func validateSystemIDs(op models.SchemeOperation) error {
	if op.AutoSysID {
		return nil
	}
	seen := make(map[string]struct{}, len(op.SystemIDs))
	for _, id := range op.SystemIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return dErrors.New(dErrors.CodeInvalidInput, "Duplicate SystemId: "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func schemeValues(recs []*models.SchemeIDRecord) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.SchemeID
	}
	return out
}
