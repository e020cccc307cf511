// Package registry keeps the ordered set of translation engines and tracks
// which of them take part in simultaneous translation.
package registry

import (
	"fmt"
	"strings"

	"github.com/valpere/simtran/internal/translator"
)

// SimultaneousSettings is the part of the settings store the registry reads.
type SimultaneousSettings interface {
	EngineSimultaneous(name string) bool
}

// Registry is an ordered engine catalog. Order matters: the persisted
// primary-engine setting is an index into it.
type Registry struct {
	engines []translator.TranslationService
	byName  map[string]translator.TranslationService
}

func New(engines ...translator.TranslationService) (*Registry, error) {
	r := &Registry{byName: make(map[string]translator.TranslationService, len(engines))}
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(engine translator.TranslationService) error {
	if engine == nil {
		return fmt.Errorf("engine is nil")
	}
	name := normalizeName(engine.Name())
	if name == "" {
		return fmt.Errorf("engine name is required")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("engine %q is already registered", name)
	}
	r.engines = append(r.engines, engine)
	r.byName[name] = engine
	return nil
}

func (r *Registry) Len() int {
	return len(r.engines)
}

// Engines returns the engines in registration order.
func (r *Registry) Engines() []translator.TranslationService {
	out := make([]translator.TranslationService, len(r.engines))
	copy(out, r.engines)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for _, e := range r.engines {
		names = append(names, e.Name())
	}
	return names
}

func (r *Registry) Engine(name string) (translator.TranslationService, error) {
	e, ok := r.byName[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("translation engine %q is not registered (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return e, nil
}

// Primary returns the engine at index; an out-of-range index selects the
// first engine. It returns nil only for an empty registry.
func (r *Registry) Primary(index int) translator.TranslationService {
	if len(r.engines) == 0 {
		return nil
	}
	if index < 0 || index >= len(r.engines) {
		index = 0
	}
	return r.engines[index]
}

// Apply copies the per-engine simultaneous flags from settings into the
// engines.
func (r *Registry) Apply(settings SimultaneousSettings) {
	for _, e := range r.engines {
		e.SetSimultaneous(settings.EngineSimultaneous(e.Name()))
	}
}

// EnabledShadows returns, in registration order, every engine flagged for
// simultaneous translation.
func (r *Registry) EnabledShadows() []translator.TranslationService {
	var out []translator.TranslationService
	for _, e := range r.engines {
		if e.IsSimultaneousEnabled() {
			out = append(out, e)
		}
	}
	return out
}

func normalizeName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
