package plugin

import "sync"

// SignalPlaceholderLoaded is announced by the placeholder plugin once its
// staged sequence has finished loading. The responsive plugin waits on it
// when both run in the same pipeline.
const SignalPlaceholderLoaded = "placeholder:loaded"

// Signals is a per-pipeline announcement board. Plugins coordinate ordering
// among themselves through it; the engine never inspects it.
type Signals struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

// NewSignals returns an empty board.
func NewSignals() *Signals {
	return &Signals{gates: make(map[string]chan struct{})}
}

// Wait returns a channel that is closed once key has been announced. Waiting
// on an already announced key returns a closed channel.
func (s *Signals) Wait(key string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate(key)
}

// Announce marks key as reached. Announcing twice is a no-op.
func (s *Signals) Announce(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.gate(key)
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func (s *Signals) gate(key string) chan struct{} {
	ch, ok := s.gates[key]
	if !ok {
		ch = make(chan struct{})
		s.gates[key] = ch
	}
	return ch
}
