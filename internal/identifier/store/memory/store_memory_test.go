package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/pkg/platform/sentinel"
)

type SCTIDStoreSuite struct {
	suite.Suite
	store *SCTIDStore
	ctx   context.Context
}

func TestSCTIDStoreSuite(t *testing.T) {
	suite.Run(t, new(SCTIDStoreSuite))
}

func (s *SCTIDStoreSuite) SetupTest() {
	s.store = NewSCTIDStore()
	s.ctx = context.Background()
}

func newRecord(sctid string, seq int64, status lifecycle.Status, systemID string) *models.SCTIDRecord {
	return &models.SCTIDRecord{
		SCTID:       sctid,
		Sequence:    seq,
		PartitionID: "00",
		SystemID:    systemID,
		Status:      status,
		CreatedAt:   time.Now(),
		ModifiedAt:  time.Now(),
	}
}

func (s *SCTIDStoreSuite) TestCreateAndFind() {
	s.Run("finds by id and system id", func() {
		s.Require().NoError(s.store.Create(s.ctx, newRecord("138875005", 138875, lifecycle.StatusAssigned, "sys-1")))

		got, err := s.store.FindByID(s.ctx, "138875005")
		s.Require().NoError(err)
		s.Equal("sys-1", got.SystemID)

		got, err = s.store.FindBySystemID(s.ctx, 0, "sys-1")
		s.Require().NoError(err)
		s.Equal("138875005", got.SCTID)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.FindByID(s.ctx, "404684003")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindBySystemID(s.ctx, 0, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate id or system id conflicts", func() {
		s.ErrorIs(s.store.Create(s.ctx, newRecord("138875005", 138875, lifecycle.StatusAvailable, "")), sentinel.ErrConflict)
		s.ErrorIs(s.store.Create(s.ctx, newRecord("404684003", 404684, lifecycle.StatusAvailable, "sys-1")), sentinel.ErrConflict)
	})

	s.Run("empty system ids never collide", func() {
		s.Require().NoError(s.store.Create(s.ctx, newRecord("73211009", 73211, lifecycle.StatusAvailable, "")))
		s.Require().NoError(s.store.Create(s.ctx, newRecord("370136006", 370136, lifecycle.StatusAvailable, "")))
	})

	s.Run("returned records are copies", func() {
		got, err := s.store.FindByID(s.ctx, "138875005")
		s.Require().NoError(err)
		got.Status = lifecycle.StatusReleased
		again, err := s.store.FindByID(s.ctx, "138875005")
		s.Require().NoError(err)
		s.Equal(lifecycle.StatusAssigned, again.Status)
	})
}

func (s *SCTIDStoreSuite) TestFindOrCreate() {
	rec := newRecord("138875005", 138875, lifecycle.StatusAvailable, "auto-1")
	first, err := s.store.FindOrCreate(s.ctx, rec)
	s.Require().NoError(err)
	s.Equal("auto-1", first.SystemID)

	second, err := s.store.FindOrCreate(s.ctx, newRecord("138875005", 138875, lifecycle.StatusAvailable, "auto-2"))
	s.Require().NoError(err)
	s.Equal("auto-1", second.SystemID, "existing record wins")
	s.Equal(1, s.store.Len())
}

func (s *SCTIDStoreSuite) TestConditionalUpdate() {
	s.Require().NoError(s.store.Create(s.ctx, newRecord("138875005", 138875, lifecycle.StatusAvailable, "")))

	s.Run("applies when status matches", func() {
		rec, _ := s.store.FindByID(s.ctx, "138875005")
		rec.Status = lifecycle.StatusAssigned
		rec.SystemID = "sys-9"
		rec.Author = "alice"
		s.Require().NoError(s.store.Update(s.ctx, rec, lifecycle.StatusAvailable))

		got, _ := s.store.FindBySystemID(s.ctx, 0, "sys-9")
		s.Equal(lifecycle.StatusAssigned, got.Status)
		s.Equal("alice", got.Author)
	})

	s.Run("lost race reports invalid state", func() {
		rec, _ := s.store.FindByID(s.ctx, "138875005")
		rec.Status = lifecycle.StatusReserved
		s.ErrorIs(s.store.Update(s.ctx, rec, lifecycle.StatusAvailable), sentinel.ErrInvalidState)
	})

	s.Run("missing record", func() {
		s.ErrorIs(s.store.Update(s.ctx, newRecord("404684003", 404684, lifecycle.StatusAssigned, ""), lifecycle.StatusAvailable), sentinel.ErrNotFound)
	})

	s.Run("only one concurrent claim wins", func() {
		s.Require().NoError(s.store.Create(s.ctx, newRecord("73211009", 73211, lifecycle.StatusAvailable, "")))
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Go(func() {
				rec, err := s.store.FindByID(s.ctx, "73211009")
				if err != nil {
					return
				}
				rec.Status = lifecycle.StatusAssigned
				if s.store.Update(s.ctx, rec, lifecycle.StatusAvailable) == nil {
					wins.Add(1)
				}
			})
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}

func (s *SCTIDStoreSuite) TestFindAvailableAndQuery() {
	for _, r := range []*models.SCTIDRecord{
		newRecord("404684003", 404684, lifecycle.StatusAvailable, ""),
		newRecord("138875005", 138875, lifecycle.StatusAvailable, ""),
		newRecord("370136006", 370136, lifecycle.StatusAssigned, "x"),
	} {
		s.Require().NoError(s.store.Create(s.ctx, r))
	}

	got, err := s.store.FindAvailable(s.ctx, models.PartitionKey{PartitionID: "00"})
	s.Require().NoError(err)
	s.Equal("138875005", got.SCTID, "lowest sequence first")

	_, err = s.store.FindAvailable(s.ctx, models.PartitionKey{PartitionID: "01"})
	s.ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.store.Find(s.ctx, models.SCTIDFilter{}, 0, 0)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("138875005", all[0].SCTID)

	avail, err := s.store.Find(s.ctx, models.SCTIDFilter{Status: lifecycle.StatusAvailable}, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(avail, 1)
	s.Equal("404684003", avail[0].SCTID)

	none, err := s.store.Find(s.ctx, models.SCTIDFilter{}, 10, 10)
	s.Require().NoError(err)
	s.Empty(none)
}

func TestSchemeIDStore(t *testing.T) {
	ctx := context.Background()
	st := NewSchemeIDStore()
	r := require.New(t)

	mk := func(id string, status lifecycle.Status, sys string) *models.SchemeIDRecord {
		return &models.SchemeIDRecord{Scheme: "CTV3ID", SchemeID: id, Status: status, SystemID: sys}
	}
	r.NoError(st.Create(ctx, mk("00001", lifecycle.StatusAssigned, "a")))
	r.NoError(st.Create(ctx, mk("00002", lifecycle.StatusAvailable, "")))
	r.NoError(st.Create(ctx, mk("00003", lifecycle.StatusAvailable, "")))
	r.ErrorIs(st.Create(ctx, mk("00004", lifecycle.StatusAvailable, "a")), sentinel.ErrConflict)

	avail, err := st.FindAvailable(ctx, "CTV3ID")
	r.NoError(err)
	r.Equal("00002", avail.SchemeID)

	_, err = st.FindAvailable(ctx, "SNOMEDID")
	r.ErrorIs(err, sentinel.ErrNotFound)

	found, err := st.FindByIDs(ctx, "CTV3ID", []string{"00001", "zzzzz", "00003"})
	r.NoError(err)
	r.Len(found, 2)

	bySys, err := st.FindBySystemIDs(ctx, "CTV3ID", []string{"a", "b"})
	r.NoError(err)
	r.Len(bySys, 1)
	r.Equal("00001", bySys[0].SchemeID)

	avail.Status = lifecycle.StatusAssigned
	avail.SystemID = "b"
	r.NoError(st.Update(ctx, avail, lifecycle.StatusAvailable))
	r.ErrorIs(st.Update(ctx, avail, lifecycle.StatusAvailable), sentinel.ErrInvalidState)

	got, err := st.FindBySystemID(ctx, "CTV3ID", "b")
	r.NoError(err)
	r.Equal("00002", got.SchemeID)

	existing, err := st.FindOrCreate(ctx, mk("00001", lifecycle.StatusAvailable, ""))
	r.NoError(err)
	r.Equal(lifecycle.StatusAssigned, existing.Status)
}

func TestCountersAndCursors(t *testing.T) {
	ctx := context.Background()
	r := require.New(t)

	counters := NewPartitionCounterStore(models.PartitionCounter{Namespace: 0, PartitionID: "00", Sequence: 99})
	c, err := counters.Get(ctx, models.PartitionKey{PartitionID: "00"})
	r.NoError(err)
	r.Equal(int64(99), c.Sequence)
	c.Sequence++
	r.NoError(counters.Save(ctx, c))
	c, _ = counters.Get(ctx, models.PartitionKey{PartitionID: "00"})
	r.Equal(int64(100), c.Sequence)
	_, err = counters.Get(ctx, models.PartitionKey{PartitionID: "01"})
	r.ErrorIs(err, sentinel.ErrNotFound)

	cursors := NewSchemeCursorStore(models.SchemeCursor{Scheme: "CTV3ID"})
	cur, err := cursors.Get(ctx, "CTV3ID")
	r.NoError(err)
	r.Empty(cur.IDBase)
	r.NoError(cursors.Save(ctx, &models.SchemeCursor{Scheme: "CTV3ID", IDBase: "00005"}))
	cur, _ = cursors.Get(ctx, "CTV3ID")
	r.Equal("00005", cur.IDBase)
	_, err = cursors.Get(ctx, "SNOMEDID")
	r.ErrorIs(err, sentinel.ErrNotFound)

	reg := NewNamespaceRegistry(models.Namespace{Namespace: 1000003, OrganizationName: "Acme"})
	ns, err := reg.FindNamespace(ctx, 1000003)
	r.NoError(err)
	r.Equal("Acme", ns.OrganizationName)
	_, err = reg.FindNamespace(ctx, 1000004)
	r.ErrorIs(err, sentinel.ErrNotFound)
}

func TestDefaultCounters(t *testing.T) {
	ctx := context.Background()
	counters := NewPartitionCounterStore(DefaultCounters()...)

	for _, p := range []string{"00", "01", "02", "03", "04", "05"} {
		c, err := counters.Get(ctx, models.PartitionKey{PartitionID: p})
		require.NoError(t, err, p)
		require.Zero(t, c.Sequence)
	}
	_, err := counters.Get(ctx, models.PartitionKey{Namespace: 1000003, PartitionID: "10"})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
