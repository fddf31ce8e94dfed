package memory

import (
	"context"
	"sync"

	"cis/internal/identifier/models"
	"cis/pkg/platform/sentinel"
)

// NamespaceRegistry is an in-memory ports.NamespaceRegistry.
type NamespaceRegistry struct {
	mu         sync.RWMutex
	namespaces map[int64]models.Namespace
}

func NewNamespaceRegistry(seed ...models.Namespace) *NamespaceRegistry {
	r := &NamespaceRegistry{namespaces: make(map[int64]models.Namespace)}
	for _, ns := range seed {
		r.namespaces[ns.Namespace] = ns
	}
	return r
}

func (r *NamespaceRegistry) FindNamespace(_ context.Context, namespace int64) (*models.Namespace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.namespaces[namespace]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &ns, nil
}

// Save adds or replaces a namespace entry.
func (r *NamespaceRegistry) Save(_ context.Context, ns *models.Namespace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[ns.Namespace] = *ns
	return nil
}
