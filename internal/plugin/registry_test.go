package plugin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glimmerlabs/glimmer/internal/config"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

type namedPlugin struct {
	name string
}

func (p *namedPlugin) Name() string { return p.name }

func (p *namedPlugin) Run(_ *RunContext) <-chan Result {
	r := NewResolver()
	r.Resolve(Lazyload())
	return r.Out()
}

func factoryFor(name string) Factory {
	return func(_ config.PluginSpec) (Plugin, error) {
		return &namedPlugin{name: name}, nil
	}
}

func TestRegisterFactory(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	require.NoError(t, RegisterFactory("shine", factoryFor("shine")))

	t.Run("duplicate registration fails", func(t *testing.T) {
		err := RegisterFactory("shine", factoryFor("shine"))
		require.Error(t, err)

		var pluginErr *glimmererrors.PluginError
		require.ErrorAs(t, err, &pluginErr)
		require.Equal(t, "shine", pluginErr.Plugin)
	})

	t.Run("nil factory fails", func(t *testing.T) {
		err := RegisterFactory("empty", nil)
		require.Error(t, err)
	})
}

func TestGetFactory(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	require.NoError(t, RegisterFactory("glow", factoryFor("glow")))

	f, err := GetFactory("glow")
	require.NoError(t, err)

	p, err := f(config.PluginSpec{Type: "glow"})
	require.NoError(t, err)
	require.Equal(t, "glow", p.Name())

	_, err = GetFactory("absent")
	require.Error(t, err)

	var pluginErr *glimmererrors.PluginError
	require.ErrorAs(t, err, &pluginErr)
}

func TestBuildInstantiatesInDeclarationOrder(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	require.NoError(t, RegisterFactory("first", factoryFor("first")))
	require.NoError(t, RegisterFactory("second", factoryFor("second")))

	plugins, err := Build([]config.PluginSpec{{Type: "second"}, {Type: "first"}})
	require.NoError(t, err)
	require.Len(t, plugins, 2)
	require.Equal(t, "second", plugins[0].Name())
	require.Equal(t, "first", plugins[1].Name())
}

func TestBuildFailsOnUnregisteredType(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	_, err := Build([]config.PluginSpec{{Type: "sparkle"}})
	require.Error(t, err)
}

func TestBuildWrapsFactoryErrors(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	boom := fmt.Errorf("bad options")
	require.NoError(t, RegisterFactory("fragile", func(_ config.PluginSpec) (Plugin, error) {
		return nil, boom
	}))

	_, err := Build([]config.PluginSpec{{Type: "fragile"}})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

func TestRegisteredNamesAreSorted(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	require.NoError(t, RegisterFactory("zeta", factoryFor("zeta")))
	require.NoError(t, RegisterFactory("alpha", factoryFor("alpha")))

	require.Equal(t, []string{"alpha", "zeta"}, RegisteredNames())
}
