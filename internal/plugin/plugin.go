package plugin

import (
	"context"

	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/logger"
	"github.com/glimmerlabs/glimmer/internal/media"
)

// Plugin is the contract every enhancement plugin satisfies.
//
// Run performs its synchronous initial work on the caller's goroutine (a
// staged plugin commits its first stage before Run returns) and hands back
// a channel that delivers exactly one Result. Long waits happen on
// goroutines the plugin spawns itself.
//
// Implementations must:
//   - register their cancellation cleanup on rc.State before subscribing to
//     any event they do not own
//   - settle through a Resolver so cancellation and natural completion
//     cannot both land
//   - treat cancellation as a first-class outcome, never as an error
type Plugin interface {
	// Name returns the plugin's registered name.
	Name() string

	// Run starts one enhancement attempt against rc.Target.
	Run(rc *RunContext) <-chan Result
}

// RunContext carries everything a plugin may touch during one run. One
// context is shared by all plugins of a pipeline generation.
type RunContext struct {
	// Context bounds the run; plugins abandon waits when it is done.
	Context context.Context

	// Target is the element under enhancement.
	Target element.Element

	// Descriptor locates the media asset behind the target.
	Descriptor *media.Descriptor

	// State is the generation's cancellation registry.
	State *State

	// Signals is the generation's coordination board.
	Signals *Signals

	// Active holds the names of every plugin in this pipeline.
	Active map[string]bool

	// Log is scoped to the pipeline; safe to use when nil.
	Log *logger.Logger
}

// HasActive reports whether a plugin with the given name runs in this
// pipeline.
func (rc *RunContext) HasActive(name string) bool {
	if rc == nil {
		return false
	}
	return rc.Active[name]
}
