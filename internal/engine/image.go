package engine

import (
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/plugin"
)

// ImageLayer drives the enhancement pipeline of a single image element.
type ImageLayer struct {
	core *layer
}

// NewImageLayer validates the target, commits the baseline source and starts
// every plugin of the first generation before returning.
func NewImageLayer(target element.Element, desc *media.Descriptor, plugins []plugin.Plugin, opts Options) (*ImageLayer, error) {
	core, err := newLayer(target, nil, opts)
	if err != nil {
		return nil, err
	}
	if err := core.start(desc, nil, plugins, nil); err != nil {
		return nil, err
	}
	return &ImageLayer{core: core}, nil
}

// Update begins a new generation with a fresh plugin state and a new
// baseline commit. The previous generation keeps running; cancel its state
// first when the old run should not land.
func (l *ImageLayer) Update(desc *media.Descriptor, plugins []plugin.Plugin, attrs map[string]string) error {
	return l.core.start(desc, nil, plugins, attrs)
}

// Unmount cancels the layer's own plugin state and performs no further
// commits. Terminal.
func (l *ImageLayer) Unmount() {
	l.core.unmount()
}

// PluginState returns the current generation's cancellation state.
func (l *ImageLayer) PluginState() *plugin.State {
	return l.core.pluginState()
}

// Done is closed once every plugin of the current generation has settled or
// been canceled.
func (l *ImageLayer) Done() <-chan struct{} {
	return l.core.doneChan()
}

// Report describes the current generation.
func (l *ImageLayer) Report() model.PipelineReport {
	return l.core.report()
}
