package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Factory builds a Backend on demand.
type Factory func() (Backend, error)

// Registry maps selection keys to backends. Backends are built on first
// lookup and reused for the rest of the process.
type Registry struct {
	mu        sync.Mutex
	keys      []string
	factories map[string]Factory
	built     map[string]Backend
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		built:     make(map[string]Backend),
	}
}

// Normalize trims and lower-cases a user-entered key.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Register adds a factory under key. Registering a key twice replaces the
// factory and keeps its first position.
func (r *Registry) Register(key string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key = Normalize(key)
	if _, ok := r.factories[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.factories[key] = f
	delete(r.built, key)
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// Lookup resolves key, building the backend if it has not been built yet.
func (r *Registry) Lookup(key string) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(Normalize(key))
}

// Select resolves several keys at once. Every key is checked before any
// backend is built, so an unknown key never triggers construction.
func (r *Registry) Select(keys ...string) ([]Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := lo.Map(keys, func(k string, _ int) string { return Normalize(k) })
	for _, k := range normalized {
		if _, ok := r.factories[k]; !ok {
			return nil, r.unknown(k)
		}
	}

	out := make([]Backend, 0, len(normalized))
	for _, k := range normalized {
		b, err := r.lookupLocked(k)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *Registry) lookupLocked(key string) (Backend, error) {
	if b, ok := r.built[key]; ok {
		return b, nil
	}
	f, ok := r.factories[key]
	if !ok {
		return nil, r.unknown(key)
	}
	b, err := f()
	if err != nil {
		return nil, fmt.Errorf("construct backend %q: %w", key, err)
	}
	r.built[key] = b
	return b, nil
}

func (r *Registry) unknown(key string) error {
	return &UnknownBackendError{Key: key, Available: append([]string(nil), r.keys...)}
}
