// Package memory holds in-process implementations of the identifier stores.
// They back tests and single-replica deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/pkg/platform/sentinel"
)

type systemKey struct {
	namespace int64
	systemID  string
}

// SCTIDStore is an in-memory ports.SCTIDStore. Records are cloned on the
// way in and out.
type SCTIDStore struct {
	mu       sync.RWMutex
	records  map[string]*models.SCTIDRecord
	bySystem map[systemKey]string
}

func NewSCTIDStore() *SCTIDStore {
	return &SCTIDStore{
		records:  make(map[string]*models.SCTIDRecord),
		bySystem: make(map[systemKey]string),
	}
}

func (s *SCTIDStore) FindByID(_ context.Context, sctid string) (*models.SCTIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sctid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *SCTIDStore) FindBySystemID(_ context.Context, namespace int64, systemID string) (*models.SCTIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySystem[systemKey{namespace, systemID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.records[id].Clone(), nil
}

func (s *SCTIDStore) FindAvailable(_ context.Context, key models.PartitionKey) (*models.SCTIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.SCTIDRecord
	for _, rec := range s.records {
		if rec.Status != lifecycle.StatusAvailable || rec.Namespace != key.Namespace || rec.PartitionID != key.PartitionID {
			continue
		}
		if best == nil || rec.Sequence < best.Sequence {
			best = rec
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return best.Clone(), nil
}

func (s *SCTIDStore) Find(_ context.Context, filter models.SCTIDFilter, limit, offset int) ([]*models.SCTIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*models.SCTIDRecord
	for _, rec := range s.records {
		if filter.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SCTID < matched[j].SCTID })
	return page(matched, limit, offset, (*models.SCTIDRecord).Clone), nil
}

func (s *SCTIDStore) Create(_ context.Context, rec *models.SCTIDRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(rec)
}

func (s *SCTIDStore) createLocked(rec *models.SCTIDRecord) error {
	if _, exists := s.records[rec.SCTID]; exists {
		return sentinel.ErrConflict
	}
	if rec.SystemID != "" {
		if _, taken := s.bySystem[systemKey{rec.Namespace, rec.SystemID}]; taken {
			return sentinel.ErrConflict
		}
		s.bySystem[systemKey{rec.Namespace, rec.SystemID}] = rec.SCTID
	}
	s.records[rec.SCTID] = rec.Clone()
	return nil
}

func (s *SCTIDStore) FindOrCreate(_ context.Context, rec *models.SCTIDRecord) (*models.SCTIDRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[rec.SCTID]; ok {
		return existing.Clone(), nil
	}
	if err := s.createLocked(rec); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *SCTIDStore) Update(_ context.Context, rec *models.SCTIDRecord, expected lifecycle.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[rec.SCTID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrInvalidState
	}
	if rec.SystemID != current.SystemID && rec.SystemID != "" {
		if _, taken := s.bySystem[systemKey{current.Namespace, rec.SystemID}]; taken {
			return sentinel.ErrConflict
		}
	}
	if current.SystemID != "" && current.SystemID != rec.SystemID {
		delete(s.bySystem, systemKey{current.Namespace, current.SystemID})
	}
	if rec.SystemID != "" {
		s.bySystem[systemKey{current.Namespace, rec.SystemID}] = rec.SCTID
	}

	updated := current.Clone()
	updated.SystemID = rec.SystemID
	updated.Status = rec.Status
	updated.Author = rec.Author
	updated.Software = rec.Software
	updated.Comment = rec.Comment
	updated.ExpirationDate = rec.ExpirationDate
	updated.JobID = rec.JobID
	updated.ModifiedAt = rec.ModifiedAt
	s.records[rec.SCTID] = updated.Clone()
	return nil
}

// Len reports the number of stored records.
func (s *SCTIDStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func page[T any](items []T, limit, offset int, clone func(T) T) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = clone(it)
	}
	return out
}
