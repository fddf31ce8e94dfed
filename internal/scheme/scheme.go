// Package scheme provides the identifier generators for alternate schemes.
//
// A scheme identifier has no numeric structure the allocation engine can
// rely on, so each scheme supplies its own Generator. The engine stores the
// last generated value (the cursor) and asks the generator for the next one.
package scheme

import (
	"sort"
	"strings"
	"sync"

	dErrors "cis/pkg/domain-errors"
)

// Generator describes one identifier scheme.
type Generator interface {
	// Name is the canonical, upper-case scheme name.
	Name() string
	// Valid reports whether id is well formed for this scheme.
	Valid(id string) bool
	// Sequence returns the numeric position of id, when the scheme has one.
	Sequence(id string) (int64, bool)
	// CheckDigit returns the check digit of id, when the scheme has one.
	CheckDigit(id string) (int, bool)
	// Next returns the identifier following prev. An empty prev yields the
	// first identifier of the scheme.
	Next(prev string) (string, error)
}

// Registry maps scheme names to generators. Lookups ignore letter case.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry builds a registry holding gens.
func NewRegistry(gens ...Generator) *Registry {
	r := &Registry{generators: make(map[string]Generator)}
	for _, g := range gens {
		r.Register(g)
	}
	return r
}

// DefaultRegistry holds the built-in CTV3ID and SNOMEDID generators.
func DefaultRegistry() *Registry {
	return NewRegistry(CTV3ID{}, SNOMEDID{})
}

// Register adds or replaces the generator for g.Name().
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[strings.ToUpper(g.Name())] = g
}

// Lookup returns the generator for name or a CodeNotFound error.
func (r *Registry) Lookup(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[strings.ToUpper(name)]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "Scheme not found: "+name)
	}
	return g, nil
}

// Names lists the registered schemes in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for n := range r.generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
