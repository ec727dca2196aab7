package accessibilityplugin

import (
	"path"
	"strings"

	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// Options configures alternative text derivation.
type Options struct {
	// DefaultAlt is used when neither the element nor the asset path yields
	// a description.
	DefaultAlt string
}

type accessibilityPlugin struct {
	opts Options
}

// New creates an accessibility plugin with the provided options.
func New(opts Options) plugin.Plugin {
	return &accessibilityPlugin{opts: opts}
}

func init() {
	if err := plugin.RegisterFactory("accessibility", factory); err != nil {
		panic(err)
	}
}

func factory(spec config.PluginSpec) (plugin.Plugin, error) {
	cfg := spec.Accessibility
	if cfg == nil {
		return nil, glimmererrors.NewValidationError("accessibility", "accessibility configuration missing", nil)
	}
	return New(Options{DefaultAlt: cfg.DefaultAlt}), nil
}

func (p *accessibilityPlugin) Name() string {
	return "accessibility"
}

// Run settles immediately with the derived alternative text.
func (p *accessibilityPlugin) Run(rc *plugin.RunContext) <-chan plugin.Result {
	res := plugin.NewResolver()
	res.Resolve(plugin.Accessibility(p.deriveAlt(rc)))
	return res.Out()
}

// deriveAlt prefers text already on the element, then an authored data-alt
// value, then the configured default, then a description spelled out of the
// asset path.
func (p *accessibilityPlugin) deriveAlt(rc *plugin.RunContext) string {
	if alt, ok := rc.Target.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
		return alt
	}
	if alt, ok := rc.Target.Attr("data-alt"); ok && strings.TrimSpace(alt) != "" {
		return alt
	}
	if p.opts.DefaultAlt != "" {
		return p.opts.DefaultAlt
	}
	return humanizePath(rc.Descriptor.Path())
}

// humanizePath turns "gallery/summer-trip_01.jpg" into "summer trip 01".
func humanizePath(assetPath string) string {
	base := path.Base(assetPath)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
