package responsiveplugin

import (
	"strconv"

	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

const (
	defaultStep     = 100
	defaultMaxWidth = 1920
)

// Options configures width resolution.
type Options struct {
	// Step is the rounding granularity in pixels.
	Step int
	// MaxWidth caps the resolved width and stands in when the element
	// declares none.
	MaxWidth int
}

type responsivePlugin struct {
	opts Options
}

// New creates a responsive plugin with the provided options.
func New(opts Options) plugin.Plugin {
	if opts.Step <= 0 {
		opts.Step = defaultStep
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = defaultMaxWidth
	}
	return &responsivePlugin{opts: opts}
}

func init() {
	if err := plugin.RegisterFactory("responsive", factory); err != nil {
		panic(err)
	}
}

func factory(spec config.PluginSpec) (plugin.Plugin, error) {
	cfg := spec.Responsive
	if cfg == nil {
		return nil, glimmererrors.NewValidationError("responsive", "responsive configuration missing", nil)
	}
	return New(Options{Step: cfg.Step, MaxWidth: cfg.MaxWidth}), nil
}

func (p *responsivePlugin) Name() string {
	return "responsive"
}

// Run resolves the target width from the element's declared width attribute,
// rounded up to the step, capped at MaxWidth. When a placeholder plugin runs
// in the same pipeline the settle is held back until its loaded signal, so a
// full-size fetch never races the placeholder sequence.
func (p *responsivePlugin) Run(rc *plugin.RunContext) <-chan plugin.Result {
	res := plugin.NewResolver()
	width := p.resolveWidth(rc.Target)

	if !rc.HasActive("placeholder") {
		res.Resolve(plugin.Responsive(width))
		return res.Out()
	}

	quit := make(chan struct{})
	rc.State.OnCancel(func() {
		res.Resolve(plugin.Canceled())
		close(quit)
	})

	go func() {
		select {
		case <-rc.Signals.Wait(plugin.SignalPlaceholderLoaded):
			res.Resolve(plugin.Responsive(width))
		case <-quit:
		case <-rc.Context.Done():
			res.Resolve(plugin.Canceled())
		}
	}()

	return res.Out()
}

func (p *responsivePlugin) resolveWidth(target element.Element) int {
	width := p.opts.MaxWidth
	if raw, ok := target.Attr("width"); ok {
		if declared, err := strconv.Atoi(raw); err == nil && declared > 0 {
			width = roundUp(declared, p.opts.Step)
		}
	}
	if width > p.opts.MaxWidth {
		width = p.opts.MaxWidth
	}
	return width
}

func roundUp(width, step int) int {
	if rem := width % step; rem != 0 {
		return width + step - rem
	}
	return width
}
