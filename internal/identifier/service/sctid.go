package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"cis/internal/identifier/metrics"
	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/internal/sctid"
	dErrors "cis/pkg/domain-errors"
	"cis/pkg/platform/audit"
	"cis/pkg/platform/sentinel"
	"cis/pkg/requestcontext"
)

// Generate allocates an SCTID in op's namespace and partition and assigns it.
func (s *Service) Generate(ctx context.Context, op models.Operation) (rec *models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.generate", scopeAttrs(op)...)
	defer func() { end(err) }()
	return s.allocate(ctx, op, lifecycle.ActionGenerate)
}

// Reserve allocates an SCTID and holds it without assigning it.
func (s *Service) Reserve(ctx context.Context, op models.Operation) (rec *models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.reserve", scopeAttrs(op)...)
	defer func() { end(err) }()
	return s.allocate(ctx, op, lifecycle.ActionReserve)
}

// Register assigns op.SCTID, an identifier minted outside this service.
// Re-registering the same SCTID under the same system id is a no-op.
func (s *Service) Register(ctx context.Context, op models.Operation) (rec *models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.register", attribute.String("sctid", op.SCTID))
	defer func() { end(err) }()

	if err := bindStructure(&op); err != nil {
		return nil, err
	}
	op.Author = author(ctx, op.Author)

	if op.SystemID != "" && !op.AutoSysID {
		existing, err := s.sctids.FindBySystemID(ctx, op.Namespace, op.SystemID)
		switch {
		case err == nil:
			if existing.SCTID != op.SCTID {
				return nil, dErrors.New(dErrors.CodeConflict,
					"SystemId:"+op.SystemID+" already exists with SctId:"+existing.SCTID)
			}
			if existing.Status == lifecycle.StatusAssigned {
				return existing, nil
			}
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, internal(err, "failed to look up system id")
		}
	}

	current, err := s.loadOrCreate(ctx, op.SCTID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, current, op, lifecycle.ActionRegister, boundSystemID(op))
}

// Deprecate marks op.SCTID as no longer to be used.
func (s *Service) Deprecate(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error) {
	return s.act(ctx, "sctid.deprecate", op, lifecycle.ActionDeprecate)
}

// Release returns op.SCTID unused.
func (s *Service) Release(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error) {
	return s.act(ctx, "sctid.release", op, lifecycle.ActionRelease)
}

// Publish marks an assigned op.SCTID as part of a release.
func (s *Service) Publish(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error) {
	return s.act(ctx, "sctid.publish", op, lifecycle.ActionPublish)
}

func (s *Service) act(ctx context.Context, operation string, op models.Operation, action lifecycle.Action) (rec *models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, operation, attribute.String("sctid", op.SCTID))
	defer func() { end(err) }()

	if err := bindStructure(&op); err != nil {
		return nil, err
	}
	op.Author = author(ctx, op.Author)
	current, err := s.loadOrCreate(ctx, op.SCTID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, current, op, action, "")
}

// allocate runs the system id short-circuit, then the available pool, then
// the partition counter.
func (s *Service) allocate(ctx context.Context, op models.Operation, action lifecycle.Action) (*models.SCTIDRecord, error) {
	if err := validateScope(op.Namespace, op.PartitionID); err != nil {
		return nil, err
	}
	op.Author = author(ctx, op.Author)

	if op.SystemID != "" && !op.AutoSysID {
		existing, err := s.sctids.FindBySystemID(ctx, op.Namespace, op.SystemID)
		switch {
		case err == nil:
			if existing.Status == lifecycle.Target(action) {
				s.metrics.IncAllocation(string(audit.FamilySCTID), metrics.SourceSystem)
				return existing, nil
			}
			return s.transition(ctx, existing, op, action, "")
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, internal(err, "failed to look up system id")
		}
	}

	systemID := boundSystemID(op)
	if systemID == "" {
		systemID = s.newSystemID()
	}

	rec, err := s.claimFromPool(ctx, op, action, systemID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.metrics.IncAllocation(string(audit.FamilySCTID), metrics.SourcePool)
		return rec, nil
	}

	key := op.Key()
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		seq, err := s.nextSequence(ctx, key)
		if err != nil {
			return nil, err
		}
		candidate, err := s.candidate(ctx, key, seq)
		if err != nil {
			return nil, err
		}
		rec, err := s.transition(ctx, candidate, op, action, systemID)
		if err == nil {
			s.metrics.IncAllocation(string(audit.FamilySCTID), metrics.SourceCounter)
			return rec, nil
		}
		if !retryable(err) {
			return nil, err
		}
		s.metrics.IncRetry(string(audit.FamilySCTID))
		s.logger.DebugContext(ctx, "skipping sctid candidate",
			"sctid", candidate.SCTID,
			"status", candidate.Status,
			"attempt", attempt+1,
		)
	}
	s.logger.WarnContext(ctx, "sctid allocation exhausted",
		"partition", key.String(),
		"attempts", s.maxAttempts,
	)
	return nil, dErrors.New(dErrors.CodeResourceExhausted, "allocation space exhausted")
}

// claimFromPool takes one pregenerated Available record of the partition.
// It returns nil without error when the pool is empty or the record could
// not be claimed.
func (s *Service) claimFromPool(ctx context.Context, op models.Operation, action lifecycle.Action, systemID string) (*models.SCTIDRecord, error) {
	var claimed *models.SCTIDRecord
	err := s.withLock(ctx, audit.FamilySCTID, op.Key().LockKey(), func(ctx context.Context) error {
		rec, err := s.sctids.FindAvailable(ctx, op.Key())
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return internal(err, "failed to read available pool")
		}
		claimed, err = s.transition(ctx, rec, op, action, systemID)
		if err != nil && retryable(err) {
			claimed = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// nextSequence advances the partition counter under its lock.
func (s *Service) nextSequence(ctx context.Context, key models.PartitionKey) (int64, error) {
	var seq int64
	err := s.withLock(ctx, audit.FamilySCTID, key.LockKey(), func(ctx context.Context) error {
		counter, err := s.counters.Get(ctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "Partition "+key.String()+" is not provisioned.")
		}
		if err != nil {
			return internal(err, "failed to read partition counter")
		}
		seq = max(counter.Sequence+1, sctid.MinSequence(key.PartitionID))
		counter.Sequence = seq
		if err := s.counters.Save(ctx, counter); err != nil {
			return internal(err, "failed to save partition counter")
		}
		return nil
	})
	return seq, err
}

// candidate composes the SCTID for seq and loads its record, creating it
// Available when it was never seen.
func (s *Service) candidate(ctx context.Context, key models.PartitionKey, seq int64) (*models.SCTIDRecord, error) {
	id, err := sctid.Compose(key.Namespace, key.PartitionID, seq)
	if err != nil {
		// the scope was validated up front, so only the sequence can be out of range
		return nil, dErrors.Wrap(err, dErrors.CodeResourceExhausted, "allocation space exhausted")
	}
	rec, err := s.sctids.FindOrCreate(ctx, s.newRecord(ctx, id, s.newSystemID()))
	if err != nil {
		return nil, internal(err, "failed to materialise sctid record")
	}
	return rec, nil
}

// transition applies action to current and persists it conditionally on the
// status read. A non-empty systemID rebinds the record.
func (s *Service) transition(ctx context.Context, current *models.SCTIDRecord, op models.Operation, action lifecycle.Action, systemID string) (*models.SCTIDRecord, error) {
	next, ok := lifecycle.Transition(current.Status, action)
	if !ok {
		return nil, s.rejected(audit.FamilySCTID, current.SCTID, current.Status, action)
	}
	updated := current.Clone()
	op.ApplyTo(updated, next, requestcontext.Now(ctx))
	if systemID != "" {
		updated.SystemID = systemID
	}
	if action != lifecycle.ActionGenerate && action != lifecycle.ActionReserve {
		updated.JobID = op.JobID
	}

	if err := s.sctids.Update(ctx, updated, current.Status); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, lostRace(err, current.SCTID, action)
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.Wrap(err, dErrors.CodeConflict,
				"SystemId:"+updated.SystemID+" already exists in namespace "+strconv.FormatInt(updated.Namespace, 10))
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "SCTID "+current.SCTID+" not found")
		default:
			return nil, internal(err, "failed to update sctid record")
		}
	}

	s.logAudit(ctx, string(audit.ForAction(action.String())),
		"family", string(audit.FamilySCTID),
		"identifier", updated.SCTID,
		"scope", op.Key().String(),
		"from_status", current.Status.String(),
		"to_status", updated.Status.String(),
		"system_id", updated.SystemID,
		"author", updated.Author,
		"software", updated.Software,
	)
	return updated, nil
}

// loadOrCreate returns the record of a structurally valid id, creating an
// Available one with a random system id on first sight.
func (s *Service) loadOrCreate(ctx context.Context, id string) (*models.SCTIDRecord, error) {
	rec, err := s.sctids.FindByID(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, internal(err, "failed to load sctid record")
	}
	rec, err = s.sctids.FindOrCreate(ctx, s.newRecord(ctx, id, s.newSystemID()))
	if err != nil {
		return nil, internal(err, "failed to materialise sctid record")
	}
	return rec, nil
}

// newRecord builds an Available record for a valid id.
func (s *Service) newRecord(ctx context.Context, id, systemID string) *models.SCTIDRecord {
	st, _ := sctid.Parse(id)
	now := requestcontext.Now(ctx)
	return &models.SCTIDRecord{
		SCTID:       id,
		Sequence:    st.Sequence,
		Namespace:   st.Namespace,
		PartitionID: st.PartitionID,
		CheckDigit:  st.CheckDigit,
		SystemID:    systemID,
		Status:      lifecycle.StatusAvailable,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

// Pregenerate fills the available pool of a partition with quantity records
// taken from its counter. Sequences that already have a record are skipped.
func (s *Service) Pregenerate(ctx context.Context, namespace int64, partitionID string, quantity int) (created []*models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.pregenerate",
		attribute.Int64("namespace", namespace),
		attribute.String("partition", partitionID),
		attribute.Int("quantity", quantity),
	)
	defer func() { end(err) }()

	if err := validateScope(namespace, partitionID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Quantity must be positive.")
	}

	key := models.PartitionKey{Namespace: namespace, PartitionID: partitionID}
	var first int64
	err = s.withLock(ctx, audit.FamilySCTID, key.LockKey(), func(ctx context.Context) error {
		counter, err := s.counters.Get(ctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "Partition "+key.String()+" is not provisioned.")
		}
		if err != nil {
			return internal(err, "failed to read partition counter")
		}
		first = max(counter.Sequence+1, sctid.MinSequence(partitionID))
		last := first + int64(quantity) - 1
		if _, err := sctid.Compose(namespace, partitionID, last); err != nil {
			return dErrors.Wrap(err, dErrors.CodeResourceExhausted, "allocation space exhausted")
		}
		counter.Sequence = last
		if err := s.counters.Save(ctx, counter); err != nil {
			return internal(err, "failed to save partition counter")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created = make([]*models.SCTIDRecord, 0, quantity)
	for seq := first; seq < first+int64(quantity); seq++ {
		id, err := sctid.Compose(namespace, partitionID, seq)
		if err != nil {
			return created, err
		}
		rec := s.newRecord(ctx, id, "")
		err = s.sctids.Create(ctx, rec)
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return created, internal(err, "failed to create pool record "+id)
		}
		created = append(created, rec)
	}

	s.logAudit(ctx, string(audit.EventPoolPregenerated),
		"family", string(audit.FamilySCTID),
		"scope", key.String(),
		"quantity", len(created),
	)
	return created, nil
}

// GetByID validates id and returns its record, materialising an Available
// record the first time a valid id is looked up.
func (s *Service) GetByID(ctx context.Context, id string) (rec *models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.get", attribute.String("sctid", id))
	defer func() { end(err) }()

	if _, err := sctid.Parse(id); err != nil {
		return nil, err
	}
	return s.loadOrCreate(ctx, id)
}

// GetBySystemID returns the SCTID bound to systemID in namespace.
func (s *Service) GetBySystemID(ctx context.Context, namespace int64, systemID string) (rec *models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.get_by_system_id", attribute.Int64("namespace", namespace))
	defer func() { end(err) }()

	if systemID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "systemId is required")
	}
	rec, err = s.sctids.FindBySystemID(ctx, namespace, systemID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound,
			fmt.Sprintf("No SCTID found for systemId %s in namespace %d", systemID, namespace))
	}
	if err != nil {
		return nil, internal(err, "failed to look up system id")
	}
	return rec, nil
}

// Query lists records matching filter ordered by SCTID.
func (s *Service) Query(ctx context.Context, filter models.SCTIDFilter, limit, offset int) (recs []*models.SCTIDRecord, err error) {
	ctx, end := s.begin(ctx, "sctid.query")
	defer func() { end(err) }()

	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if offset < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "offset must not be negative")
	}
	if filter.PartitionID != "" && !sctid.ValidPartition(filter.PartitionID) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Partition Id "+filter.PartitionID+" is not valid.")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Status "+filter.Status.String()+" is not valid.")
	}
	recs, err = s.sctids.Find(ctx, filter, limit, offset)
	if err != nil {
		return nil, internal(err, "failed to query sctids")
	}
	return recs, nil
}

// CheckSCTID reports on the structure of id. Namespace metadata is added for
// valid ids when a registry is configured; lookup failures never change the
// validity verdict.
func (s *Service) CheckSCTID(ctx context.Context, id string) sctid.Report {
	ctx, end := s.begin(ctx, "sctid.check", attribute.String("sctid", id))
	defer end(nil)

	report := sctid.Check(id)
	if !report.Valid || report.Namespace == nil || s.namespaces == nil {
		return report
	}
	namespace := *report.Namespace
	v, err, _ := s.nsLookups.Do(strconv.FormatInt(namespace, 10), func() (any, error) {
		return s.namespaces.FindNamespace(ctx, namespace)
	})
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		s.logger.WarnContext(ctx, "namespace lookup failed", "namespace", namespace, "error", err)
	default:
		ns := v.(*models.Namespace)
		report.NamespaceOrganization = ns.OrganizationName
		report.NamespaceContactEmail = ns.Email
	}
	return report
}

// validateScope checks a namespace and partition pair an allocation draws from.
func validateScope(namespace int64, partitionID string) error {
	if !sctid.ValidPartition(partitionID) {
		return dErrors.New(dErrors.CodeInvalidInput, "Partition Id "+partitionID+" is not valid.")
	}
	if namespace == 0 {
		if sctid.IsExtensionPartition(partitionID) {
			return dErrors.New(dErrors.CodeInvalidInput,
				"Partition Id "+partitionID+" identifies an extension and requires a namespace.")
		}
		return nil
	}
	if namespace < sctid.MinNamespace || namespace > sctid.MaxNamespace {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("Namespace %d is not valid.", namespace))
	}
	if !sctid.IsExtensionPartition(partitionID) {
		return dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("Partition Id %s is a core partition and cannot carry namespace %d.", partitionID, namespace))
	}
	return nil
}

// bindStructure parses op.SCTID and takes namespace and partition from it.
func bindStructure(op *models.Operation) error {
	if op.SCTID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "sctid is required")
	}
	st, err := sctid.Parse(op.SCTID)
	if err != nil {
		return err
	}
	op.Namespace = st.Namespace
	op.PartitionID = st.PartitionID
	return nil
}

// boundSystemID is the system id the caller asked to bind, if any.
func boundSystemID(op models.Operation) string {
	if op.AutoSysID {
		return ""
	}
	return op.SystemID
}

func scopeAttrs(op models.Operation) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("namespace", op.Namespace),
		attribute.String("partition", op.PartitionID),
	}
}
