package plugin

import (
	"fmt"
	"sync"
)

// Kind discriminates the closed set of settlement values a plugin run can
// produce. There is no open extension point: the engine folds every kind
// into the enhancement decision explicitly.
type Kind int

const (
	// KindCanceled is the cancellation sentinel. It is a settlement value,
	// not an error.
	KindCanceled Kind = iota
	// KindFault carries the error of a failed run.
	KindFault
	// KindLazyload requests deferred loading.
	KindLazyload
	// KindResponsive carries a resolved target width.
	KindResponsive
	// KindPlaceholder reports a completed placeholder sequence.
	KindPlaceholder
	// KindAccessibility carries derived alternative text.
	KindAccessibility
)

func (k Kind) String() string {
	switch k {
	case KindCanceled:
		return "canceled"
	case KindFault:
		return "fault"
	case KindLazyload:
		return "lazyload"
	case KindResponsive:
		return "responsive"
	case KindPlaceholder:
		return "placeholder"
	case KindAccessibility:
		return "accessibility"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the single settlement value of one plugin run.
type Result struct {
	kind  Kind
	err   error
	width int
	alt   string
}

// Canceled returns the cancellation sentinel.
func Canceled() Result {
	return Result{kind: KindCanceled}
}

// Fault returns a failure settlement wrapping err.
func Fault(err error) Result {
	return Result{kind: KindFault, err: err}
}

// Lazyload returns the deferred-loading settlement.
func Lazyload() Result {
	return Result{kind: KindLazyload}
}

// Responsive returns a settlement carrying the resolved width.
func Responsive(width int) Result {
	return Result{kind: KindResponsive, width: width}
}

// Placeholder returns the placeholder-complete settlement.
func Placeholder() Result {
	return Result{kind: KindPlaceholder}
}

// Accessibility returns a settlement carrying alternative text.
func Accessibility(alt string) Result {
	return Result{kind: KindAccessibility, alt: alt}
}

// Kind returns the variant tag.
func (r Result) Kind() Kind {
	return r.kind
}

// IsCanceled reports whether this is the cancellation sentinel.
func (r Result) IsCanceled() bool {
	return r.kind == KindCanceled
}

// Err returns the wrapped error for KindFault results, nil otherwise.
func (r Result) Err() error {
	if r.kind != KindFault {
		return nil
	}
	return r.err
}

// Width returns the resolved width for KindResponsive results.
func (r Result) Width() int {
	return r.width
}

// Alt returns the alternative text for KindAccessibility results.
func (r Result) Alt() string {
	return r.alt
}

// Resolver settles a plugin run exactly once. The first Resolve wins; every
// later call is dropped, so a cancellation cleanup firing after a natural
// settle is harmless.
type Resolver struct {
	once sync.Once
	ch   chan Result
}

// NewResolver returns an unsettled resolver.
func NewResolver() *Resolver {
	return &Resolver{ch: make(chan Result, 1)}
}

// Resolve records the settlement value if none has been recorded yet.
func (r *Resolver) Resolve(res Result) {
	r.once.Do(func() {
		r.ch <- res
	})
}

// Out returns the channel that delivers the single settlement value.
func (r *Resolver) Out() <-chan Result {
	return r.ch
}
