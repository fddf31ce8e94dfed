package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"cis/internal/identifier/models"
	"cis/internal/sctid"
	dErrors "cis/pkg/domain-errors"
	"cis/pkg/platform/audit"
	"cis/pkg/platform/sentinel"
)

// RegisterNamespace records ns in the namespace registry and provisions a
// counter for every partition the namespace allocates from. Existing counters
// keep their sequence, so registering again only replaces the metadata.
func (s *Service) RegisterNamespace(ctx context.Context, ns models.Namespace) (registered *models.Namespace, err error) {
	ctx, end := s.begin(ctx, "namespace.register", attribute.Int64("namespace", ns.Namespace))
	defer func() { end(err) }()

	if s.namespaces == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "namespace registry is not configured")
	}
	ns.OrganizationName = strings.TrimSpace(ns.OrganizationName)
	ns.Email = strings.TrimSpace(ns.Email)
	if ns.Namespace != 0 && (ns.Namespace < sctid.MinNamespace || ns.Namespace > sctid.MaxNamespace) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("Namespace %d is not valid.", ns.Namespace))
	}
	if ns.OrganizationName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "organizationName is required")
	}

	if err := s.namespaces.Save(ctx, &ns); err != nil {
		return nil, internal(err, "failed to save namespace")
	}

	provisioned := 0
	for _, partitionID := range sctid.PartitionsFor(ns.Namespace) {
		key := models.PartitionKey{Namespace: ns.Namespace, PartitionID: partitionID}
		err := s.withLock(ctx, audit.FamilySCTID, key.LockKey(), func(ctx context.Context) error {
			_, err := s.counters.Get(ctx, key)
			if err == nil {
				return nil
			}
			if !errors.Is(err, sentinel.ErrNotFound) {
				return internal(err, "failed to read partition counter")
			}
			if err := s.counters.Save(ctx, &models.PartitionCounter{Namespace: key.Namespace, PartitionID: key.PartitionID}); err != nil {
				return internal(err, "failed to provision partition "+key.String())
			}
			provisioned++
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.logAudit(ctx, string(audit.EventNamespaceRegistered),
		"family", string(audit.FamilySCTID),
		"scope", strconv.FormatInt(ns.Namespace, 10),
		"organization", ns.OrganizationName,
		"quantity", provisioned,
	)
	return &ns, nil
}
