package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/history"
	"github.com/valpere/simtran/internal/registry"
	"github.com/valpere/simtran/internal/translator"
)

var errUnreachable = errors.New("connection refused")

type fakeEngine struct {
	name       string
	translate  func(req translator.TranslateRequest) (*translator.Translation, error)
	gate       chan struct{}
	langs      []internal.Language
	langsErr   error
	langsPanic bool
	sim        atomic.Bool

	mu       sync.Mutex
	requests []translator.TranslateRequest
}

func newEngine(name, translated string) *fakeEngine {
	return &fakeEngine{
		name: name,
		translate: func(translator.TranslateRequest) (*translator.Translation, error) {
			return &translator.Translation{TranslatedText: translated, Latency: time.Millisecond}, nil
		},
	}
}

func failingEngine(name string) *fakeEngine {
	return &fakeEngine{
		name: name,
		translate: func(translator.TranslateRequest) (*translator.Translation, error) {
			return nil, &translator.EngineError{Engine: name, Err: errUnreachable}
		},
	}
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Translate(ctx context.Context, req translator.TranslateRequest) (*translator.Translation, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.translate(req)
}

func (f *fakeEngine) SupportedLanguages(context.Context) ([]internal.Language, error) {
	if f.langsPanic {
		panic("unexpected end of JSON input")
	}
	return f.langs, f.langsErr
}

func (f *fakeEngine) IsAvailable(context.Context) error { return nil }
func (f *fakeEngine) IsSimultaneousEnabled() bool        { return f.sim.Load() }
func (f *fakeEngine) SetSimultaneous(enabled bool)       { f.sim.Store(enabled) }

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeEngine) lastRequest() translator.TranslateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeSettings struct {
	mu        sync.Mutex
	auto      bool
	delay     time.Duration
	index     int
	sim       bool
	engineSim map[string]bool
	history   bool
	skip      bool
	source    internal.Language
	target    internal.Language
}

func defaultSettings() *fakeSettings {
	return &fakeSettings{
		auto:      false,
		delay:     20 * time.Millisecond,
		engineSim: map[string]bool{},
		history:   true,
		skip:      true,
		source:    internal.AutoLanguage,
		target:    internal.DefaultTargetLanguage,
	}
}

func (s *fakeSettings) AutoTranslate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto
}

func (s *fakeSettings) FetchDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

func (s *fakeSettings) EngineIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *fakeSettings) SimultaneousTranslation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim
}

func (s *fakeSettings) EngineSimultaneous(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineSim[name]
}

func (s *fakeSettings) HistoryEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

func (s *fakeSettings) SkipSimilarHistory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skip
}

func (s *fakeSettings) SourceLanguage() internal.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *fakeSettings) TargetLanguage() internal.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *fakeSettings) SetSourceLanguage(lang internal.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = lang
	return nil
}

func (s *fakeSettings) SetTargetLanguage(lang internal.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = lang
	return nil
}

// reloadingSettings re-reads its values through onReload, like a store
// backed by a file another process writes.
type reloadingSettings struct {
	*fakeSettings
	reloads  atomic.Int32
	err      error
	onReload func(*fakeSettings)
}

func (s *reloadingSettings) Reload() error {
	s.reloads.Add(1)
	if s.err != nil {
		return s.err
	}
	if s.onReload != nil {
		s.fakeSettings.mu.Lock()
		s.onReload(s.fakeSettings)
		s.fakeSettings.mu.Unlock()
	}
	return nil
}

type memoryRepo struct {
	mu    sync.Mutex
	items []internal.HistoryItem
}

func (r *memoryRepo) ExistsSimilar(_ context.Context, text, src, dst string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.InsertedText == text && it.SourceLanguageCode == src && it.TargetLanguageCode == dst {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) InsertHistory(_ context.Context, item internal.HistoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

func (r *memoryRepo) all() []internal.HistoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]internal.HistoryItem(nil), r.items...)
}

type panickingRecorder struct{}

func (panickingRecorder) RecordIfAllowed(context.Context, internal.HistoryItem, bool, bool) (bool, error) {
	panic("database is locked")
}

type notifications struct {
	mu   sync.Mutex
	list []Notification
}

func (n *notifications) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, note)
}

func (n *notifications) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.list...)
}

type fakeBookmarks struct {
	langs []internal.Language
	err   error
}

func (b fakeBookmarks) ListBookmarks(context.Context) ([]internal.Language, error) {
	return b.langs, b.err
}

type fakeOCR struct {
	ready bool
	text  string
	err   error
	panic bool
}

func (o fakeOCR) IsReady(context.Context) bool { return o.ready }

func (o fakeOCR) ExtractText(context.Context, string) (string, bool, error) {
	if o.panic {
		panic("tesseract: invalid image header")
	}
	if o.err != nil {
		return "", false, o.err
	}
	return o.text, o.text != "", nil
}

type harness struct {
	c        *Coordinator
	settings *fakeSettings
	repo     *memoryRepo
	notes    *notifications
}

func newHarness(t *testing.T, settings *fakeSettings, engines []*fakeEngine, opts ...func(*Config)) *harness {
	t.Helper()

	services := make([]translator.TranslationService, 0, len(engines))
	for _, e := range engines {
		services = append(services, e)
	}
	reg, err := registry.New(services...)
	require.NoError(t, err)

	h := &harness{settings: settings, repo: &memoryRepo{}, notes: &notifications{}}
	cfg := Config{
		Registry: reg,
		Settings: settings,
		History:  history.NewRecorder(h.repo),
		Notifier: h.notes,
		Logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h.c, err = New(cfg)
	require.NoError(t, err)
	t.Cleanup(h.c.Close)
	return h
}

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond
