package element

import (
	"context"

	"github.com/glimmerlabs/glimmer/internal/media"
)

// Load carries the payload delivered to load listeners once the element's
// current resource has been retrieved. Dimensions are zero when unknown.
type Load struct {
	Width  int
	Height int
}

// Element is the mutation surface the enhancement engine drives. The two
// write primitives are deliberately distinct: SetSource is the baseline
// source assignment, SetAttr carries every later plugin-driven commit.
type Element interface {
	// Tag returns the element's tag name ("img", "video").
	Tag() string

	// Source returns the current primary source value.
	Source() string

	// SetSource assigns the primary source.
	SetSource(url string)

	// Attr reads a DOM attribute.
	Attr(name string) (string, bool)

	// SetAttr writes a DOM attribute.
	SetAttr(name, value string)

	// OnLoad subscribes to resource load events. The returned function
	// detaches the subscription; it is safe to call more than once.
	OnLoad(fn func(Load)) (cancel func())
}

// VideoElement extends Element with playback-specific mutations.
type VideoElement interface {
	Element

	// SetPoster assigns the poster image.
	SetPoster(url string)

	// ReplaceSources swaps the candidate source list.
	ReplaceSources(sources []media.VideoSource)
}

// Loader retrieves the resource behind a URL so the element can dispatch its
// load event. Implementations must honor the context.
type Loader interface {
	Probe(ctx context.Context, url string) (Load, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, url string) (Load, error)

// Probe implements Loader.
func (f LoaderFunc) Probe(ctx context.Context, url string) (Load, error) {
	return f(ctx, url)
}
