// Package registry implements a case-insensitive, concurrency-safe
// dictionary of definitions.Definition by name (§6.3), grounded on
// dynamic.MessageRegistry's name-to-descriptor map in the teacher
// repository: register/deregister under a write lock, resolve names
// under a read lock, reject collisions that differ only in case.
package registry

import (
	"strings"
	"sync"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
)

// Registry holds every definition known to a running process, keyed
// case-insensitively, across any number of loaded definition
// documents.
type Registry struct {
	mu      sync.RWMutex
	byFold  map[string]definitions.Definition
	byName  map[string]definitions.Definition
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		byFold: map[string]definitions.Definition{},
		byName: map[string]definitions.Definition{},
	}
}

// Register adds def under its own name. It fails with FormatError if
// a definition already occupies that name, case-insensitively.
func (r *Registry) Register(def definitions.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(def.Name())
	if existing, exists := r.byFold[key]; exists {
		return errors.NewFormatError(def.Name(), "a definition named "+existing.Name()+" is already registered")
	}
	r.byFold[key] = def
	r.byName[def.Name()] = def
	return nil
}

// RegisterAll registers every definition in tree, stopping at the
// first collision.
func (r *Registry) RegisterAll(tree *definitions.Tree) error {
	for _, def := range tree.All() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Deregister removes the definition named name, if present.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if existing, exists := r.byFold[key]; exists {
		delete(r.byFold, key)
		delete(r.byName, existing.Name())
	}
}

// GetByName resolves name case-insensitively.
func (r *Registry) GetByName(name string) (definitions.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.byFold[strings.ToLower(name)]
	return def, ok
}

// AllDefinitions returns every registered definition. The returned
// slice is a snapshot; mutating the registry afterwards does not
// affect it.
func (r *Registry) AllDefinitions() []definitions.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]definitions.Definition, 0, len(r.byName))
	for _, def := range r.byName {
		out = append(out, def)
	}
	return out
}
