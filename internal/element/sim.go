package element

import (
	"sync"

	"github.com/glimmerlabs/glimmer/internal/media"
)

// AttrCall records one SetAttr invocation.
type AttrCall struct {
	Name  string
	Value string
}

// Sim is an in-memory element with no document behind it. Load events are
// fired manually through FireLoad, and every mutation is recorded, which
// makes it the element of choice for tests and demos.
type Sim struct {
	Emitter

	mu          sync.Mutex
	tag         string
	attrs       map[string]string
	poster      string
	sources     []media.VideoSource
	sourceCalls []string
	attrCalls   []AttrCall
}

var _ VideoElement = (*Sim)(nil)

// NewSim returns a Sim with the given tag name.
func NewSim(tag string) *Sim {
	return &Sim{tag: tag, attrs: make(map[string]string)}
}

// Tag returns the tag name.
func (s *Sim) Tag() string {
	return s.tag
}

// Source returns the current src value.
func (s *Sim) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs["src"]
}

// SetSource assigns src and records the call.
func (s *Sim) SetSource(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs["src"] = url
	s.sourceCalls = append(s.sourceCalls, url)
}

// Attr reads an attribute.
func (s *Sim) Attr(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.attrs[name]
	return v, ok
}

// SetAttr writes an attribute and records the call.
func (s *Sim) SetAttr(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[name] = value
	s.attrCalls = append(s.attrCalls, AttrCall{Name: name, Value: value})
}

// SetPoster assigns the poster.
func (s *Sim) SetPoster(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poster = url
}

// Poster returns the last poster assignment.
func (s *Sim) Poster() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poster
}

// ReplaceSources swaps the candidate source list.
func (s *Sim) ReplaceSources(sources []media.VideoSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append([]media.VideoSource(nil), sources...)
}

// Sources returns the current candidate source list.
func (s *Sim) Sources() []media.VideoSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.VideoSource(nil), s.sources...)
}

// SourceCalls returns every SetSource value in call order.
func (s *Sim) SourceCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sourceCalls...)
}

// AttrCalls returns every SetAttr invocation in call order.
func (s *Sim) AttrCalls() []AttrCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AttrCall(nil), s.attrCalls...)
}
