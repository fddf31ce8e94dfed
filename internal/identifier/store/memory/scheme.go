package memory

import (
	"context"
	"sync"

	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/pkg/platform/sentinel"
)

type schemeKey struct {
	scheme string
	value  string
}

// SchemeIDStore is an in-memory ports.SchemeIDStore.
type SchemeIDStore struct {
	mu       sync.RWMutex
	records  map[schemeKey]*models.SchemeIDRecord
	bySystem map[schemeKey]string
	// insertion order per scheme, used to hand out pooled ids oldest first
	order map[string][]string
}

func NewSchemeIDStore() *SchemeIDStore {
	return &SchemeIDStore{
		records:  make(map[schemeKey]*models.SchemeIDRecord),
		bySystem: make(map[schemeKey]string),
		order:    make(map[string][]string),
	}
}

func (s *SchemeIDStore) FindByID(_ context.Context, scheme, schemeID string) (*models.SchemeIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[schemeKey{scheme, schemeID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *SchemeIDStore) FindByIDs(_ context.Context, scheme string, schemeIDs []string) ([]*models.SchemeIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SchemeIDRecord, 0, len(schemeIDs))
	for _, id := range schemeIDs {
		if rec, ok := s.records[schemeKey{scheme, id}]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (s *SchemeIDStore) FindBySystemID(_ context.Context, scheme, systemID string) (*models.SchemeIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySystem[schemeKey{scheme, systemID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.records[schemeKey{scheme, id}].Clone(), nil
}

func (s *SchemeIDStore) FindBySystemIDs(_ context.Context, scheme string, systemIDs []string) ([]*models.SchemeIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SchemeIDRecord, 0, len(systemIDs))
	for _, sys := range systemIDs {
		if id, ok := s.bySystem[schemeKey{scheme, sys}]; ok {
			out = append(out, s.records[schemeKey{scheme, id}].Clone())
		}
	}
	return out, nil
}

func (s *SchemeIDStore) FindAvailable(_ context.Context, scheme string) (*models.SchemeIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order[scheme] {
		if rec := s.records[schemeKey{scheme, id}]; rec.Status == lifecycle.StatusAvailable {
			return rec.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *SchemeIDStore) Create(_ context.Context, rec *models.SchemeIDRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(rec)
}

func (s *SchemeIDStore) createLocked(rec *models.SchemeIDRecord) error {
	key := schemeKey{rec.Scheme, rec.SchemeID}
	if _, exists := s.records[key]; exists {
		return sentinel.ErrConflict
	}
	if rec.SystemID != "" {
		if _, taken := s.bySystem[schemeKey{rec.Scheme, rec.SystemID}]; taken {
			return sentinel.ErrConflict
		}
		s.bySystem[schemeKey{rec.Scheme, rec.SystemID}] = rec.SchemeID
	}
	s.records[key] = rec.Clone()
	s.order[rec.Scheme] = append(s.order[rec.Scheme], rec.SchemeID)
	return nil
}

func (s *SchemeIDStore) FindOrCreate(_ context.Context, rec *models.SchemeIDRecord) (*models.SchemeIDRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[schemeKey{rec.Scheme, rec.SchemeID}]; ok {
		return existing.Clone(), nil
	}
	if err := s.createLocked(rec); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *SchemeIDStore) Update(_ context.Context, rec *models.SchemeIDRecord, expected lifecycle.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := schemeKey{rec.Scheme, rec.SchemeID}
	current, ok := s.records[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrInvalidState
	}
	if rec.SystemID != current.SystemID && rec.SystemID != "" {
		if _, taken := s.bySystem[schemeKey{rec.Scheme, rec.SystemID}]; taken {
			return sentinel.ErrConflict
		}
	}
	if current.SystemID != "" && current.SystemID != rec.SystemID {
		delete(s.bySystem, schemeKey{rec.Scheme, current.SystemID})
	}
	if rec.SystemID != "" {
		s.bySystem[schemeKey{rec.Scheme, rec.SystemID}] = rec.SchemeID
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
	s.records[key] = updated
	return nil
}
