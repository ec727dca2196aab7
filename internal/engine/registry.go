package engine

import (
	"sync"

	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/plugin"
)

// Registry maps element identity to the plugin state of the element's
// current pipeline generation. It is pure bookkeeping: superseded states are
// returned to the caller, never canceled here.
type Registry struct {
	mu       sync.Mutex
	bindings map[element.Element]*plugin.State
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[element.Element]*plugin.State)}
}

// Bind makes st the current state for target and returns the superseded
// state, if any. Whether the previous generation keeps running is the
// caller's decision.
func (r *Registry) Bind(target element.Element, st *plugin.State) (prev *plugin.State) {
	if target == nil || st == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev = r.bindings[target]
	r.bindings[target] = st
	return prev
}

// Release removes the binding for target only while st is still current. A
// release racing a newer Bind is a no-op.
func (r *Registry) Release(target element.Element, st *plugin.State) {
	if target == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bindings[target] == st {
		delete(r.bindings, target)
	}
}

// Current returns the state bound to target, or nil.
func (r *Registry) Current(target element.Element) *plugin.State {
	if target == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindings[target]
}
