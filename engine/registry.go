package engine

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultRegistry is the registry, engines register themselves with, unless [Options].Registry is changed.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// A Registry is a directory of running engines, identified by engine ID.
//
// When a test does not bind an engine explicitly, the assertions package resolves the single registered engine.
type Registry struct {
	mutex   sync.RWMutex
	engines map[string]Engine
}

// Engines returns all registered engines, sorted by engine ID.
func (r *Registry) Engines() []Engine {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	engines := make([]Engine, len(ids))
	for i, id := range ids {
		engines[i] = r.engines[id]
	}
	return engines
}

// Len returns the number of registered engines.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.engines)
}

// Register adds an engine under the given ID.
// If another engine is registered under the same ID, an error of type [ErrorConflict] is returned.
func (r *Registry) Register(id string, e Engine) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if registered, ok := r.engines[id]; ok && registered != e {
		return Error{
			Type:   ErrorConflict,
			Title:  "failed to register engine",
			Detail: fmt.Sprintf("engine %s is already registered", id),
		}
	}

	r.engines[id] = e
	return nil
}

// Unregister removes the engine, registered under the given ID, if it is the given engine.
func (r *Registry) Unregister(id string, e Engine) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if registered, ok := r.engines[id]; ok && registered == e {
		delete(r.engines, id)
	}
}
