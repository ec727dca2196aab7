package lazyloadplugin

import (
	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

type lazyloadPlugin struct{}

// New creates a lazyload plugin.
func New() plugin.Plugin {
	return &lazyloadPlugin{}
}

func init() {
	if err := plugin.RegisterFactory("lazyload", factory); err != nil {
		panic(err)
	}
}

func factory(spec config.PluginSpec) (plugin.Plugin, error) {
	if spec.Lazyload == nil {
		return nil, glimmererrors.NewValidationError("lazyload", "lazyload configuration missing", nil)
	}
	return New(), nil
}

func (p *lazyloadPlugin) Name() string {
	return "lazyload"
}

// Run settles immediately with the deferred-loading hint.
func (p *lazyloadPlugin) Run(rc *plugin.RunContext) <-chan plugin.Result {
	res := plugin.NewResolver()
	res.Resolve(plugin.Lazyload())
	return res.Out()
}
