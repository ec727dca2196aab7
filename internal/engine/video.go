package engine

import (
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/plugin"
)

// VideoLayer drives the enhancement pipeline of a single video element. On
// top of the image commit step it manages the candidate <source> list, and
// placeholder results land on the poster attribute instead of src.
type VideoLayer struct {
	core *layer
}

// NewVideoLayer validates the target, installs the candidate sources,
// commits the baseline and starts every plugin of the first generation.
func NewVideoLayer(target element.VideoElement, desc *media.Descriptor, sources []media.VideoSource, plugins []plugin.Plugin, opts Options) (*VideoLayer, error) {
	core, err := newLayer(target, target, opts)
	if err != nil {
		return nil, err
	}
	if err := core.start(desc, sources, plugins, nil); err != nil {
		return nil, err
	}
	return &VideoLayer{core: core}, nil
}

// Update begins a new generation: fresh plugin state, replaced candidate
// sources, new baseline commit. The previous generation keeps running.
func (l *VideoLayer) Update(desc *media.Descriptor, sources []media.VideoSource, plugins []plugin.Plugin, attrs map[string]string) error {
	return l.core.start(desc, sources, plugins, attrs)
}

// Unmount cancels the layer's own plugin state and performs no further
// commits. Terminal.
func (l *VideoLayer) Unmount() {
	l.core.unmount()
}

// PluginState returns the current generation's cancellation state.
func (l *VideoLayer) PluginState() *plugin.State {
	return l.core.pluginState()
}

// Done is closed once every plugin of the current generation has settled or
// been canceled.
func (l *VideoLayer) Done() <-chan struct{} {
	return l.core.doneChan()
}

// Report describes the current generation.
func (l *VideoLayer) Report() model.PipelineReport {
	return l.core.report()
}
