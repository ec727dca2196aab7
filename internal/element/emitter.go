package element

import "sync"

type loadSubscription struct {
	id int
	fn func(Load)
}

// Emitter is an embeddable load-event dispatcher. Listeners fire in
// subscription order; cancellation is idempotent.
type Emitter struct {
	mu     sync.Mutex
	nextID int
	subs   []loadSubscription
}

// OnLoad registers fn and returns a cancel function that detaches it.
func (e *Emitter) OnLoad(fn func(Load)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs = append(e.subs, loadSubscription{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, sub := range e.subs {
			if sub.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// FireLoad dispatches a load event to every current listener. The listener
// set is snapshotted first, so handlers may subscribe or cancel freely.
func (e *Emitter) FireLoad(load Load) {
	e.mu.Lock()
	snapshot := make([]loadSubscription, len(e.subs))
	copy(snapshot, e.subs)
	e.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(load)
	}
}
