package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"cis/internal/identifier/metrics"
	"cis/internal/identifier/models"
	"cis/internal/identifier/store/memory"
	"cis/internal/keylock"
	"cis/internal/lifecycle"
	"cis/internal/sctid"
	dErrors "cis/pkg/domain-errors"
	"cis/pkg/platform/audit"
	"cis/pkg/platform/audit/publisher"
	auditmemory "cis/pkg/platform/audit/store/memory"
	"cis/pkg/requestcontext"
)

const testNamespace int64 = 1000003

// =============================================================================
// SCTID Engine Test Suite
// =============================================================================
// Runs the engine against the in-memory stores so allocation, pooling and
// lifecycle enforcement are exercised end to end without a database.

type SCTIDServiceSuite struct {
	suite.Suite
	sctids   *memory.SCTIDStore
	counters *memory.PartitionCounterStore
	locker   *keylock.Local
	audit    *auditmemory.InMemoryStore
	metrics  *metrics.Metrics
	service  *Service
}

func TestSCTIDServiceSuite(t *testing.T) {
	suite.Run(t, new(SCTIDServiceSuite))
}

func (s *SCTIDServiceSuite) SetupTest() {
	s.sctids = memory.NewSCTIDStore()
	s.counters = memory.NewPartitionCounterStore(
		models.PartitionCounter{Namespace: 0, PartitionID: "00"},
		models.PartitionCounter{Namespace: 0, PartitionID: "01"},
		models.PartitionCounter{Namespace: testNamespace, PartitionID: "10"},
	)
	s.locker = keylock.NewLocal()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())

	svc, err := New(Stores{
		SCTIDs:    s.sctids,
		SchemeIDs: memory.NewSchemeIDStore(),
		Counters:  s.counters,
		Cursors:   memory.NewSchemeCursorStore(),
	}, s.locker,
		WithMetrics(s.metrics),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithNamespaceRegistry(memory.NewNamespaceRegistry(models.Namespace{
			Namespace:        testNamespace,
			OrganizationName: "Example Health",
			Email:            "terminology@example.org",
		})),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *SCTIDServiceSuite) compose(namespace int64, partition string, seq int64) string {
	id, err := sctid.Compose(namespace, partition, seq)
	s.Require().NoError(err)
	return id
}

func coreOp(systemID string) models.Operation {
	return models.Operation{PartitionID: "00", SystemID: systemID, Author: "tester", Software: "suite"}
}

func (s *SCTIDServiceSuite) TestNew() {
	s.Run("missing store returns error", func() {
		_, err := New(Stores{}, nil)
		s.Error(err)
		s.Contains(err.Error(), "sctid store is required")
	})

	s.Run("nil locker falls back to an in-process lock", func() {
		svc, err := New(Stores{
			SCTIDs:    memory.NewSCTIDStore(),
			SchemeIDs: memory.NewSchemeIDStore(),
			Counters:  memory.NewPartitionCounterStore(),
			Cursors:   memory.NewSchemeCursorStore(),
		}, nil, WithMaxAttempts(7), WithMaxAttempts(0))
		s.Require().NoError(err)
		s.IsType(&keylock.Local{}, svc.locker)
		s.Equal(7, svc.maxAttempts)
	})
}

func (s *SCTIDServiceSuite) TestGenerateFromCounter() {
	ctx := context.Background()

	rec, err := s.service.Generate(ctx, coreOp(""))
	s.Require().NoError(err)

	s.Equal(s.compose(0, "00", 100), rec.SCTID)
	s.Equal(int64(100), rec.Sequence)
	s.Equal(lifecycle.StatusAssigned, rec.Status)
	s.Equal("tester", rec.Author)
	s.NotEmpty(rec.SystemID, "a random system id is bound when none is given")
	s.True(sctid.IsValid(rec.SCTID))

	counter, err := s.counters.Get(ctx, models.PartitionKey{PartitionID: "00"})
	s.Require().NoError(err)
	s.Equal(int64(100), counter.Sequence)

	next, err := s.service.Generate(ctx, coreOp(""))
	s.Require().NoError(err)
	s.Equal(int64(101), next.Sequence)

	s.Equal(2.0, testutil.ToFloat64(s.metrics.Allocations.WithLabelValues("sctid", metrics.SourceCounter)))
}

func (s *SCTIDServiceSuite) TestGenerateInExtensionNamespace() {
	rec, err := s.service.Generate(context.Background(), models.Operation{
		Namespace:   testNamespace,
		PartitionID: "10",
	})
	s.Require().NoError(err)

	s.Equal(s.compose(testNamespace, "10", 1), rec.SCTID)
	s.Equal(testNamespace, rec.Namespace)
	s.Equal("10", rec.PartitionID)
}

func (s *SCTIDServiceSuite) TestConcurrentGeneratesAreDistinct() {
	const n = 50
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seqs []int64
		ids  = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for range n {
		wg.Go(func() {
			rec, err := s.service.Generate(ctx, coreOp(""))
			s.NoError(err)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			seqs = append(seqs, rec.Sequence)
			ids[rec.SCTID] = struct{}{}
		})
	}
	wg.Wait()

	s.Len(ids, n, "every caller must receive its own SCTID")
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, seq := range seqs {
		s.Equal(int64(100+i), seq)
	}
	s.Equal(0, s.locker.Len(), "idle keys are dropped")
}

func (s *SCTIDServiceSuite) TestGenerateIsIdempotentBySystemID() {
	ctx := context.Background()

	first, err := s.service.Generate(ctx, coreOp("concept-42"))
	s.Require().NoError(err)
	s.Equal("concept-42", first.SystemID)

	again, err := s.service.Generate(ctx, coreOp("concept-42"))
	s.Require().NoError(err)
	s.Equal(first.SCTID, again.SCTID)
	s.Equal(1, s.sctids.Len())

	s.Run("auto system id ignores the given one", func() {
		op := coreOp("concept-42")
		op.AutoSysID = true
		other, err := s.service.Generate(ctx, op)
		s.Require().NoError(err)
		s.NotEqual(first.SCTID, other.SCTID)
		s.NotEqual("concept-42", other.SystemID)
	})
}

func (s *SCTIDServiceSuite) TestReservedSystemIDIsAssignedOnGenerate() {
	ctx := context.Background()

	reserved, err := s.service.Reserve(ctx, coreOp("pending-1"))
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusReserved, reserved.Status)

	assigned, err := s.service.Generate(ctx, coreOp("pending-1"))
	s.Require().NoError(err)
	s.Equal(reserved.SCTID, assigned.SCTID)
	s.Equal(lifecycle.StatusAssigned, assigned.Status)
}

func (s *SCTIDServiceSuite) TestPoolIsUsedBeforeCounter() {
	ctx := context.Background()

	created, err := s.service.Pregenerate(ctx, 0, "01", 3)
	s.Require().NoError(err)
	s.Require().Len(created, 3)
	for _, rec := range created {
		s.Equal(lifecycle.StatusAvailable, rec.Status)
		s.Empty(rec.SystemID)
	}

	rec, err := s.service.Generate(ctx, models.Operation{PartitionID: "01"})
	s.Require().NoError(err)
	s.Equal(created[0].SCTID, rec.SCTID, "lowest pooled sequence is handed out first")

	counter, err := s.counters.Get(ctx, models.PartitionKey{PartitionID: "01"})
	s.Require().NoError(err)
	s.Equal(int64(102), counter.Sequence, "pool claims leave the counter alone")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Allocations.WithLabelValues("sctid", metrics.SourcePool)))
}

func (s *SCTIDServiceSuite) TestCounterSkipsClaimedCandidates() {
	ctx := context.Background()

	taken := s.compose(0, "00", 100)
	_, err := s.service.Register(ctx, models.Operation{SCTID: taken, SystemID: "external"})
	s.Require().NoError(err)

	rec, err := s.service.Generate(ctx, coreOp(""))
	s.Require().NoError(err)
	s.Equal(int64(101), rec.Sequence)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.AllocationRetries.WithLabelValues("sctid")))
}

func (s *SCTIDServiceSuite) TestAllocationRetriesAreBounded() {
	ctx := context.Background()
	svc, err := New(Stores{
		SCTIDs:    s.sctids,
		SchemeIDs: memory.NewSchemeIDStore(),
		Counters:  s.counters,
		Cursors:   memory.NewSchemeCursorStore(),
	}, s.locker, WithMaxAttempts(2))
	s.Require().NoError(err)

	for seq := int64(100); seq < 102; seq++ {
		_, err := svc.Register(ctx, models.Operation{SCTID: s.compose(0, "00", seq)})
		s.Require().NoError(err)
	}

	_, err = svc.Generate(ctx, coreOp(""))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeResourceExhausted))
}

func (s *SCTIDServiceSuite) TestGenerateValidation() {
	ctx := context.Background()
	cases := []struct {
		name string
		op   models.Operation
		code dErrors.Code
	}{
		{"unknown partition", models.Operation{PartitionID: "06"}, dErrors.CodeInvalidInput},
		{"extension partition without namespace", models.Operation{PartitionID: "10"}, dErrors.CodeInvalidInput},
		{"core partition with namespace", models.Operation{Namespace: testNamespace, PartitionID: "00"}, dErrors.CodeInvalidInput},
		{"namespace out of range", models.Operation{Namespace: 42, PartitionID: "10"}, dErrors.CodeInvalidInput},
		{"partition never provisioned", models.Operation{PartitionID: "02"}, dErrors.CodeNotFound},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Generate(ctx, tc.op)
			s.Require().Error(err)
			s.Equal(tc.code, dErrors.CodeOf(err), err.Error())
		})
	}
	s.Equal(0, s.sctids.Len())
}

func (s *SCTIDServiceSuite) TestRegisterIdempotence() {
	ctx := context.Background()
	id := s.compose(0, "00", 555)

	first, err := s.service.Register(ctx, models.Operation{SCTID: id, SystemID: "sys-555"})
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusAssigned, first.Status)
	s.Equal("sys-555", first.SystemID)

	again, err := s.service.Register(ctx, models.Operation{SCTID: id, SystemID: "sys-555"})
	s.Require().NoError(err)
	s.Equal(first.SCTID, again.SCTID)
	s.Equal(lifecycle.StatusAssigned, again.Status)

	s.Run("system id bound elsewhere is a conflict", func() {
		_, err := s.service.Register(ctx, models.Operation{SCTID: s.compose(0, "00", 556), SystemID: "sys-555"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "already exists with SctId:"+id)
	})

	s.Run("without a system id a second register is rejected", func() {
		_, err := s.service.Register(ctx, models.Operation{SCTID: id})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *SCTIDServiceSuite) TestAvailableRejectsDeprecate() {
	ctx := context.Background()
	id := s.compose(0, "00", 777)

	_, err := s.service.Deprecate(ctx, models.Operation{SCTID: id})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("Cannot deprecate "+id+", current status: Available", err.Error())

	rec, err := s.service.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusAvailable, rec.Status, "a rejection never mutates the record")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("sctid", "Deprecate")))
}

func (s *SCTIDServiceSuite) TestFullLifecycle() {
	ctx := requestcontext.WithAuthor(context.Background(), "jwt-user")

	reserved, err := s.service.Reserve(ctx, coreOp(""))
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusReserved, reserved.Status)
	s.Equal("tester", reserved.Author)

	op := models.Operation{SCTID: reserved.SCTID, Comment: "authored"}
	registered, err := s.service.Register(ctx, op)
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusAssigned, registered.Status)
	s.Equal("jwt-user", registered.Author, "author falls back to the authenticated caller")
	s.Equal(reserved.SystemID, registered.SystemID)

	published, err := s.service.Publish(ctx, op)
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusPublished, published.Status)

	_, err = s.service.Release(ctx, op)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "published ids cannot be released")

	deprecated, err := s.service.Deprecate(ctx, op)
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusDeprecated, deprecated.Status)

	events, err := s.audit.ListByIdentifier(ctx, reserved.SCTID)
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
		s.Equal(audit.FamilySCTID, e.Family)
	}
	s.Equal([]string{
		string(audit.EventIdentifierReserved),
		string(audit.EventIdentifierRegistered),
		string(audit.EventIdentifierPublished),
		string(audit.EventIdentifierDeprecated),
	}, actions)
	s.Equal(string(lifecycle.StatusPublished), events[3].FromStatus)
}

func (s *SCTIDServiceSuite) TestActionsRejectMalformedIDs() {
	ctx := context.Background()
	for _, id := range []string{"", "12345", "1234a56", s.compose(0, "00", 100)[:5] + "9"} {
		_, err := s.service.Publish(ctx, models.Operation{SCTID: id})
		s.Require().Error(err, id)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), id)
	}
}

func (s *SCTIDServiceSuite) TestGetByIDCreatesLazily() {
	ctx := context.Background()
	id := s.compose(testNamespace, "11", 9)

	rec, err := s.service.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(lifecycle.StatusAvailable, rec.Status)
	s.Equal(testNamespace, rec.Namespace)
	s.Equal("11", rec.PartitionID)
	s.Equal(int64(9), rec.Sequence)
	s.NotEmpty(rec.SystemID)

	again, err := s.service.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(rec.SystemID, again.SystemID)
	s.Equal(1, s.sctids.Len())

	_, err = s.service.GetByID(ctx, "609354008")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *SCTIDServiceSuite) TestQueryAndSystemIDLookup() {
	ctx := context.Background()
	for i := range 3 {
		_, err := s.service.Generate(ctx, coreOp("q-"+string(rune('a'+i))))
		s.Require().NoError(err)
	}
	_, err := s.service.Reserve(ctx, coreOp("q-reserved"))
	s.Require().NoError(err)

	all, err := s.service.Query(ctx, models.SCTIDFilter{}, 0, 0)
	s.Require().NoError(err)
	s.Len(all, 4)

	assigned, err := s.service.Query(ctx, models.SCTIDFilter{Status: lifecycle.StatusAssigned}, 2, 0)
	s.Require().NoError(err)
	s.Len(assigned, 2)

	_, err = s.service.Query(ctx, models.SCTIDFilter{Status: "Lost"}, 0, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	rec, err := s.service.GetBySystemID(ctx, 0, "q-b")
	s.Require().NoError(err)
	s.Equal(int64(101), rec.Sequence)

	_, err = s.service.GetBySystemID(ctx, 0, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *SCTIDServiceSuite) TestCheckSCTID() {
	ctx := context.Background()

	s.Run("known namespace is enriched", func() {
		report := s.service.CheckSCTID(ctx, s.compose(testNamespace, "10", 12))
		s.True(report.Valid)
		s.Equal("Example Health", report.NamespaceOrganization)
		s.Equal("terminology@example.org", report.NamespaceContactEmail)
		s.Equal("Extension concept Id", report.ComponentType)
	})

	s.Run("unknown namespace stays valid", func() {
		report := s.service.CheckSCTID(ctx, s.compose(1000004, "11", 12))
		s.True(report.Valid)
		s.Empty(report.NamespaceOrganization)
	})

	s.Run("invalid id is not enriched", func() {
		report := s.service.CheckSCTID(ctx, "609354008")
		s.False(report.Valid)
		s.Contains(report.ErrorMessage, "Check digit should be 7.")
	})
}

func (s *SCTIDServiceSuite) TestPregenerateValidation() {
	ctx := context.Background()

	_, err := s.service.Pregenerate(ctx, 0, "00", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.Pregenerate(ctx, 0, "05", 10)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Run("existing records are skipped", func() {
		_, err := s.service.GetByID(ctx, s.compose(0, "00", 101))
		s.Require().NoError(err)

		created, err := s.service.Pregenerate(ctx, 0, "00", 3)
		s.Require().NoError(err)
		s.Len(created, 2)
		s.Equal(int64(100), created[0].Sequence)
		s.Equal(int64(102), created[1].Sequence)
	})
}

func (s *SCTIDServiceSuite) TestRegisterNamespace() {
	ctx := context.Background()
	const namespace int64 = 1000017
	op := models.Operation{Namespace: namespace, PartitionID: "10", SystemID: "ext-1"}

	_, err := s.service.Generate(ctx, op)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "unregistered namespaces have no counters")

	ns, err := s.service.RegisterNamespace(ctx, models.Namespace{
		Namespace:        namespace,
		OrganizationName: "  Example Clinic ",
		Email:            "ids@example.org",
	})
	s.Require().NoError(err)
	s.Equal("Example Clinic", ns.OrganizationName)
	for _, p := range sctid.ExtensionPartitions {
		counter, err := s.counters.Get(ctx, models.PartitionKey{Namespace: namespace, PartitionID: p})
		s.Require().NoError(err, p)
		s.Equal(int64(0), counter.Sequence)
	}

	rec, err := s.service.Generate(ctx, op)
	s.Require().NoError(err)
	s.Equal(s.compose(namespace, "10", 1), rec.SCTID)
	s.Equal("Example Clinic", s.service.CheckSCTID(ctx, rec.SCTID).NamespaceOrganization)

	s.Run("registering again keeps issued sequences", func() {
		_, err := s.service.RegisterNamespace(ctx, models.Namespace{Namespace: namespace, OrganizationName: "Renamed Clinic"})
		s.Require().NoError(err)
		counter, err := s.counters.Get(ctx, models.PartitionKey{Namespace: namespace, PartitionID: "10"})
		s.Require().NoError(err)
		s.Equal(int64(1), counter.Sequence)
		s.Equal("Renamed Clinic", s.service.CheckSCTID(ctx, rec.SCTID).NamespaceOrganization)
	})

	s.Run("audit events count provisioned partitions", func() {
		events, err := s.audit.ListAll(ctx)
		s.Require().NoError(err)
		var quantities []int
		for _, e := range events {
			if e.Action == string(audit.EventNamespaceRegistered) {
				s.Equal(audit.CategoryOperations, e.Category)
				quantities = append(quantities, e.Quantity)
			}
		}
		s.Equal([]int{6, 0}, quantities)
	})

	s.Run("invalid input", func() {
		_, err := s.service.RegisterNamespace(ctx, models.Namespace{Namespace: 12345, OrganizationName: "Acme"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = s.service.RegisterNamespace(ctx, models.Namespace{Namespace: 1000018})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
