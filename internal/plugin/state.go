package plugin

import "sync"

// State owns the cancellation cleanups of one pipeline generation over one
// element. Every plugin registers the work needed to abandon its run; firing
// the list is the coordinator's job, never the registry's.
//
// A plugin must register its cleanup before subscribing to any event it does
// not own, so an abort can always detach the subscription and settle the run
// with the cancellation sentinel.
type State struct {
	mu  sync.Mutex
	fns []func()
}

// NewState returns a State with an empty cleanup list.
func NewState() *State {
	return &State{}
}

// OnCancel appends fn to the cleanup list. Order is preserved and duplicates
// are kept. Registering after a cancellation re-arms the state: the callback
// fires only if the state is canceled again.
func (s *State) OnCancel(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
}

// CancelRunning synchronously invokes every registered cleanup in insertion
// order and clears the list. A second call with no interleaving registrations
// is a no-op, and canceling an empty or nil state is safe.
//
// Callbacks run outside the state lock, so a cleanup may register new
// callbacks on the same state.
func CancelRunning(st *State) {
	if st == nil {
		return
	}

	st.mu.Lock()
	fns := st.fns
	st.fns = nil
	st.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
