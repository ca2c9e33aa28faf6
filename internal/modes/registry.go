// Package modes resolves mode names to their provider, latency, and
// blend policies, and gates persona-restricted modes.
package modes

import (
	"sort"

	"github.com/fathom-search/fathom/internal/config"
	fatherrors "github.com/fathom-search/fathom/internal/errors"
)

// DefaultMode is used when a request does not name a mode.
const DefaultMode = "normal"

// Registry holds the configured modes.
type Registry struct {
	modes map[string]config.Mode
}

// NewRegistry builds a registry from configuration.
func NewRegistry(cfg *config.Config) *Registry {
	modes := make(map[string]config.Mode, len(cfg.Modes))
	for name, m := range cfg.Modes {
		modes[name] = m
	}
	return &Registry{modes: modes}
}

// Resolve looks up a mode by name and checks the persona gate. The
// persona check runs before any provider work so an unauthorized request
// fails without touching the network. An empty name resolves to
// DefaultMode.
func (r *Registry) Resolve(name, personaID string) (config.Mode, error) {
	if name == "" {
		name = DefaultMode
	}
	m, ok := r.modes[name]
	if !ok {
		return config.Mode{}, fatherrors.UnknownMode(name)
	}
	if m.RequiresPersona != "" && m.RequiresPersona != personaID {
		return config.Mode{}, fatherrors.PersonaNotAuthorized(name, personaID)
	}
	return m, nil
}

// Names returns all registered mode names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modes))
	for name := range r.modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a mode without the persona gate, for inspection.
func (r *Registry) Get(name string) (config.Mode, bool) {
	m, ok := r.modes[name]
	return m, ok
}
