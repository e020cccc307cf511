// Package catalog caches the language list of the primary engine.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"

	"github.com/valpere/simtran/internal"
)

// Source is anything able to report the languages it supports.
type Source interface {
	Name() string
	SupportedLanguages(ctx context.Context) ([]internal.Language, error)
}

// FetchError is returned when an engine's language list could not be
// loaded. The previously cached list stays in place.
type FetchError struct {
	Engine string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch languages from %s: %v", e.Engine, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Catalog struct {
	mu        sync.RWMutex
	languages []internal.Language
	engine    string
	logger    zerolog.Logger
}

func New(logger zerolog.Logger) *Catalog {
	return &Catalog{logger: logger}
}

// Fetch loads the language list from source and replaces the cache on
// success. An empty list or a panic in source counts as a failure.
func (c *Catalog) Fetch(ctx context.Context, source Source) ([]internal.Language, error) {
	var (
		langs []internal.Language
		err   error
	)
	var pc panics.Catcher
	pc.Try(func() {
		langs, err = source.SupportedLanguages(ctx)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("panic: %v", r.Value)
	}
	if err == nil && len(langs) == 0 {
		err = fmt.Errorf("empty language list")
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("engine", source.Name()).Msg("Language list unavailable")
		return nil, &FetchError{Engine: source.Name(), Err: err}
	}

	cached := make([]internal.Language, len(langs))
	copy(cached, langs)

	c.mu.Lock()
	c.languages = cached
	c.engine = source.Name()
	c.mu.Unlock()

	c.logger.Debug().Str("engine", source.Name()).Int("count", len(langs)).Msg("Language list loaded")

	out := make([]internal.Language, len(langs))
	copy(out, langs)
	return out, nil
}

// Languages returns a copy of the cached list.
func (c *Catalog) Languages() []internal.Language {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]internal.Language, len(c.languages))
	copy(out, c.languages)
	return out
}

// Engine names the engine the cached list came from.
func (c *Catalog) Engine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// ResolveDisplayName returns the entry of list with lang's code, or lang
// itself when there is none.
func ResolveDisplayName(lang internal.Language, list []internal.Language) internal.Language {
	for _, l := range list {
		if l.Equal(lang) {
			return l
		}
	}
	return lang
}
