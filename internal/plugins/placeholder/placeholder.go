package placeholderplugin

import (
	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

const (
	defaultBlurIntensity     = 1000
	defaultPixelateIntensity = 20

	// refineDivisor scales the first stage's strength down for the
	// intermediate rendition.
	refineDivisor = 5
)

// Options configures the staged placeholder sequence.
type Options struct {
	Mode      media.PlaceholderMode
	Intensity int
}

type placeholderPlugin struct {
	opts Options
}

// New creates a placeholder plugin with the provided options. An unset mode
// falls back to blur; an unset intensity falls back to the mode's default.
func New(opts Options) plugin.Plugin {
	if !opts.Mode.Valid() || opts.Mode == media.PlaceholderNone {
		opts.Mode = media.PlaceholderBlur
	}
	if opts.Intensity <= 0 {
		opts.Intensity = defaultIntensity(opts.Mode)
	}
	return &placeholderPlugin{opts: opts}
}

func init() {
	if err := plugin.RegisterFactory("placeholder", factory); err != nil {
		panic(err)
	}
}

func factory(spec config.PluginSpec) (plugin.Plugin, error) {
	cfg := spec.Placeholder
	if cfg == nil {
		return nil, glimmererrors.NewValidationError("placeholder", "placeholder configuration missing", nil)
	}
	return New(Options{Mode: media.PlaceholderMode(cfg.Mode), Intensity: cfg.Intensity}), nil
}

func (p *placeholderPlugin) Name() string {
	return "placeholder"
}

// Run commits the low-fidelity rendition before returning. The remaining
// stages run on their own goroutine: once the element reports that rendition
// loaded, an intermediate rendition at reduced strength is committed; once
// that one loads too, the loaded signal is announced and the run settles.
func (p *placeholderPlugin) Run(rc *plugin.RunContext) <-chan plugin.Result {
	res := plugin.NewResolver()

	quit := make(chan struct{})
	rc.State.OnCancel(func() {
		res.Resolve(plugin.Canceled())
		close(quit)
	})

	loads := make(chan element.Load, 1)
	cancelLoad := rc.Target.OnLoad(func(l element.Load) {
		select {
		case loads <- l:
		default:
		}
	})

	rc.Target.SetSource(rc.Descriptor.URL(p.stageOne()))

	go func() {
		defer cancelLoad()

		if !await(rc, loads, quit, res) {
			return
		}
		rc.Target.SetSource(rc.Descriptor.URL(p.stageTwo()))
		if !await(rc, loads, quit, res) {
			return
		}

		rc.Signals.Announce(plugin.SignalPlaceholderLoaded)
		res.Resolve(plugin.Placeholder())
	}()

	return res.Out()
}

func await(rc *plugin.RunContext, loads <-chan element.Load, quit <-chan struct{}, res *plugin.Resolver) bool {
	select {
	case <-loads:
	case <-quit:
		return false
	case <-rc.Context.Done():
		res.Resolve(plugin.Canceled())
		return false
	}

	// A load racing the cancellation must not advance the sequence.
	select {
	case <-quit:
		return false
	default:
		return true
	}
}

func (p *placeholderPlugin) stageOne() media.Hints {
	return media.Hints{Placeholder: p.opts.Mode, Intensity: p.opts.Intensity}
}

// stageTwo keeps the flavor at reduced strength.
func (p *placeholderPlugin) stageTwo() media.Hints {
	intensity := p.opts.Intensity / refineDivisor
	if intensity < 1 {
		intensity = 1
	}
	return media.Hints{Placeholder: p.opts.Mode, Intensity: intensity}
}

func defaultIntensity(mode media.PlaceholderMode) int {
	if mode == media.PlaceholderPixelate {
		return defaultPixelateIntensity
	}
	return defaultBlurIntensity
}
