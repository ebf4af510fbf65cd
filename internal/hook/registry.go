package hook

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned when a pool names a hook type with no
// registered implementation.
var ErrNotRegistered = errors.New("hook type not registered")

// Registry maps hook-type tags to implementations. Registration happens at
// wiring time; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hook)}
}

// Register binds a hook type tag to an implementation, replacing any
// previous binding.
func (r *Registry) Register(hookType string, h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[hookType] = h
}

// Resolve returns the hook bound to hookType. An empty hookType resolves to
// the no-op hook; an unknown one is an error.
func (r *Registry) Resolve(hookType string) (Hook, error) {
	if hookType == "" {
		return NoOp{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[hookType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, hookType)
	}
	return h, nil
}

// Types returns the registered hook type tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.hooks))
	for k := range r.hooks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
