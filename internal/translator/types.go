package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/simtran/internal"
)

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Translation is one engine's answer. The zero value is the empty
// translation used for "not yet translated" and "cleared".
type Translation struct {
	EngineName     string            `json:"engine_name,omitempty"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Latency        time.Duration     `json:"latency,omitempty"`
}

func (t Translation) IsEmpty() bool {
	return t.TranslatedText == ""
}

// TranslationService is the contract every translation engine satisfies.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) (*Translation, error)
	SupportedLanguages(ctx context.Context) ([]internal.Language, error)
	IsAvailable(ctx context.Context) error
	IsSimultaneousEnabled() bool
	SetSimultaneous(enabled bool)
}

// EngineError reports a network, protocol or parse failure of one engine.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func engineError(engine, format string, args ...any) error {
	return &EngineError{Engine: engine, Err: fmt.Errorf(format, args...)}
}

// IsEngineError reports whether err carries an EngineError.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}

// simultaneous holds the per-engine "use for simultaneous translation" flag.
// Engines embed it; the registry updates it from settings.
type simultaneous struct {
	enabled atomic.Bool
}

func (s *simultaneous) IsSimultaneousEnabled() bool {
	return s.enabled.Load()
}

func (s *simultaneous) SetSimultaneous(enabled bool) {
	s.enabled.Store(enabled)
}

// languagesFromCodes expands bare ISO codes into languages with English
// display names. Codes x/text cannot name keep the upper-cased code.
func languagesFromCodes(codes []string) []internal.Language {
	namer := display.English.Languages()
	langs := make([]internal.Language, 0, len(codes))
	for _, code := range codes {
		name := ""
		if tag, err := language.Parse(code); err == nil {
			name = namer.Name(tag)
		}
		if name == "" {
			name = strings.ToUpper(code)
		}
		langs = append(langs, internal.Language{Code: code, Name: name})
	}
	return langs
}
