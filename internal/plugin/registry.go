package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/glimmerlabs/glimmer/internal/config"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// Factory builds one plugin instance from its profile entry.
type Factory func(spec config.PluginSpec) (Plugin, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// RegisterFactory adds a plugin factory for the provided name.
func RegisterFactory(name string, f Factory) error {
	if f == nil {
		return glimmererrors.NewPluginError(name, fmt.Errorf("factory is nil"))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		return glimmererrors.NewPluginError(name, fmt.Errorf("factory already registered"))
	}

	registry[name] = f
	return nil
}

// GetFactory retrieves a plugin factory by name.
func GetFactory(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[name]
	if !ok {
		return nil, glimmererrors.NewPluginError(name, fmt.Errorf("no factory registered"))
	}

	return f, nil
}

// Build instantiates every plugin of a profile in declaration order.
func Build(specs []config.PluginSpec) ([]Plugin, error) {
	plugins := make([]Plugin, 0, len(specs))
	for _, spec := range specs {
		f, err := GetFactory(spec.Type)
		if err != nil {
			return nil, err
		}
		p, err := f(spec)
		if err != nil {
			return nil, glimmererrors.NewPluginError(spec.Type, fmt.Errorf("building plugin: %w", err))
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// RegisteredNames returns the sorted names of all registered factories.
func RegisteredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetRegistry clears plugin registrations (for tests).
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Factory)
}
