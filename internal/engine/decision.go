package engine

import (
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/plugin"
)

// Decision is the merged enhancement state of one pipeline generation. Every
// settled non-canceled plugin result folds into it; the fold also yields the
// single attribute commit that carries the plugin's contribution.
type Decision struct {
	// Width is the last settled responsive width. Last settle wins.
	Width int

	// PlaceholderDone records a completed placeholder sequence.
	PlaceholderDone bool

	// Alt is the derived alternative text.
	Alt string

	// Lazy records a deferred-loading request.
	Lazy bool
}

// Commit is one attribute-primitive write implied by a fold.
type Commit struct {
	Attribute string
	Value     string
}

// Fold merges a settled result into the decision and returns the commit that
// carries it. Cancellation and fault results never reach Fold.
//
// URL-bearing results rebuild the source from the descriptor so the last
// settled plugin wins the src attribute while earlier hints are kept.
func (d *Decision) Fold(res plugin.Result, desc *media.Descriptor, tag string) (Commit, bool) {
	switch res.Kind() {
	case plugin.KindResponsive:
		d.Width = res.Width()
		return Commit{Attribute: "src", Value: desc.URL(media.Hints{Width: d.Width})}, true

	case plugin.KindPlaceholder:
		d.PlaceholderDone = true
		if tag == "video" {
			return Commit{Attribute: "poster", Value: desc.URL(media.Hints{Width: d.Width})}, true
		}
		return Commit{Attribute: "src", Value: desc.URL(media.Hints{Width: d.Width})}, true

	case plugin.KindAccessibility:
		d.Alt = res.Alt()
		return Commit{Attribute: "alt", Value: d.Alt}, true

	case plugin.KindLazyload:
		d.Lazy = true
		if tag == "video" {
			return Commit{Attribute: "preload", Value: "none"}, true
		}
		return Commit{Attribute: "loading", Value: "lazy"}, true
	}

	return Commit{}, false
}
