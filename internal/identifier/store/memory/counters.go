package memory

import (
	"context"
	"sync"

	"cis/internal/identifier/models"
	"cis/internal/sctid"
	"cis/pkg/platform/sentinel"
)

// PartitionCounterStore is an in-memory ports.PartitionCounterStore.
type PartitionCounterStore struct {
	mu       sync.RWMutex
	counters map[models.PartitionKey]int64
}

// NewPartitionCounterStore provisions the given counters.
func NewPartitionCounterStore(seed ...models.PartitionCounter) *PartitionCounterStore {
	s := &PartitionCounterStore{counters: make(map[models.PartitionKey]int64)}
	for _, c := range seed {
		s.counters[c.Key()] = c.Sequence
	}
	return s
}

// DefaultCounters provisions the core partitions of namespace 0.
func DefaultCounters() []models.PartitionCounter {
	var out []models.PartitionCounter
	for _, p := range sctid.CorePartitions {
		out = append(out, models.PartitionCounter{PartitionID: p})
	}
	return out
}

func (s *PartitionCounterStore) Get(_ context.Context, key models.PartitionKey) (*models.PartitionCounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.counters[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.PartitionCounter{Namespace: key.Namespace, PartitionID: key.PartitionID, Sequence: seq}, nil
}

func (s *PartitionCounterStore) Save(_ context.Context, counter *models.PartitionCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counter.Key()] = counter.Sequence
	return nil
}

// SchemeCursorStore is an in-memory ports.SchemeCursorStore.
type SchemeCursorStore struct {
	mu      sync.RWMutex
	cursors map[string]string
}

// NewSchemeCursorStore provisions the given cursors.
func NewSchemeCursorStore(seed ...models.SchemeCursor) *SchemeCursorStore {
	s := &SchemeCursorStore{cursors: make(map[string]string)}
	for _, c := range seed {
		s.cursors[c.Scheme] = c.IDBase
	}
	return s
}

func (s *SchemeCursorStore) Get(_ context.Context, scheme string) (*models.SchemeCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	base, ok := s.cursors[scheme]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.SchemeCursor{Scheme: scheme, IDBase: base}, nil
}

func (s *SchemeCursorStore) Save(_ context.Context, cursor *models.SchemeCursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursor.Scheme] = cursor.IDBase
	return nil
}
