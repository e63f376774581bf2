package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/faturai/faturai/internal/common"
)

// Registry maps provider names to instances. It is built once at startup
// and never mutated afterwards, so lookups are safe under concurrent use
// without locking.
type Registry struct {
	providers   map[string]Provider
	defaultName string
}

// NewRegistry builds an immutable registry. The default name must refer to
// one of the given providers.
func NewRegistry(defaultName string, providers ...Provider) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: no providers registered", common.ErrInvalidConfig)
	}

	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		name := strings.ToLower(p.Name())
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("%w: provider %q registered twice", common.ErrInvalidConfig, name)
		}
		byName[name] = p
	}

	defaultName = strings.ToLower(defaultName)
	if _, ok := byName[defaultName]; !ok {
		return nil, fmt.Errorf("%w: default provider %q is not registered", common.ErrInvalidConfig, defaultName)
	}

	return &Registry{providers: byName, defaultName: defaultName}, nil
}

// Resolve returns the provider for the requested name, or the configured
// default when the name is empty. An explicit unknown name is an error so
// client typos surface instead of silently falling back.
func (r *Registry) Resolve(requestedName string) (Provider, error) {
	if requestedName == "" {
		return r.providers[r.defaultName], nil
	}

	p, ok := r.providers[strings.ToLower(requestedName)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			common.ErrUnknownProvider, requestedName, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Default returns the configured default provider name.
func (r *Registry) Default() string {
	return r.defaultName
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
