package worker

import (
	"fmt"
	"sort"
)

// Registry holds the named worker handles. It is populated once at startup
// and never mutated afterwards, so lookups need no locking.
type Registry struct {
	workers map[string]Worker
}

// NewRegistry builds a registry from the given workers. An empty worker
// set or a duplicate name is a startup misconfiguration and aborts
// initialization.
func NewRegistry(workers ...Worker) (*Registry, error) {
	if len(workers) == 0 {
		return nil, fmt.Errorf("worker registry must not be empty")
	}

	m := make(map[string]Worker, len(workers))
	for _, w := range workers {
		name := w.Name()
		if name == "" {
			return nil, fmt.Errorf("worker with empty name")
		}
		if _, exists := m[name]; exists {
			return nil, fmt.Errorf("duplicate worker name: %s", name)
		}
		m[name] = w
	}
	return &Registry{workers: m}, nil
}

// Get returns the worker with the given name.
func (r *Registry) Get(name string) (Worker, bool) {
	w, ok := r.workers[name]
	return w, ok
}

// Has reports whether a worker with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.workers[name]
	return ok
}

// Names returns the registered worker names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered workers.
func (r *Registry) Count() int {
	return len(r.workers)
}
