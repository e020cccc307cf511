package coordinator

import (
	"maps"
	"slices"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/translator"
)

// State is the observable session state. Values handed out by the
// coordinator are copies and safe to keep.
type State struct {
	InsertedText string
	Source       internal.Language
	Target       internal.Language

	// Translation is the last committed primary-engine result.
	Translation translator.Translation
	// EngineResults holds one entry per registered engine.
	EngineResults map[string]translator.Translation
	Translating   bool

	PrimaryEngine  string
	SimEnabled     bool
	EnabledShadows []string

	AvailableLanguages  []internal.Language
	BookmarkedLanguages []internal.Language
}

func (s State) clone() State {
	out := s
	out.Translation = cloneTranslation(s.Translation)
	out.EngineResults = make(map[string]translator.Translation, len(s.EngineResults))
	for name, t := range s.EngineResults {
		out.EngineResults[name] = cloneTranslation(t)
	}
	out.EnabledShadows = slices.Clone(s.EnabledShadows)
	out.AvailableLanguages = slices.Clone(s.AvailableLanguages)
	out.BookmarkedLanguages = slices.Clone(s.BookmarkedLanguages)
	return out
}

func cloneTranslation(t translator.Translation) translator.Translation {
	t.Metadata = maps.Clone(t.Metadata)
	return t
}
