// Package coordinator owns a translation session: it debounces input,
// dispatches requests to the primary engine and to the simultaneous
// (shadow) engines, keeps per-engine results and records accepted
// translations in history.
//
// All state lives behind one mutex. Engine calls, catalog fetches, OCR and
// history writes run on a worker group and re-enter the lock only to apply
// their result. In-flight work is never cancelled by newer input; a primary
// result is dropped when the input was cleared meanwhile.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/catalog"
	"github.com/valpere/simtran/internal/ocr"
	"github.com/valpere/simtran/internal/registry"
	"github.com/valpere/simtran/internal/translator"
)

var ErrClosed = errors.New("coordinator is closed")

// Settings is the preference store the coordinator reads on start-up, on
// refresh and before each history write.
type Settings interface {
	AutoTranslate() bool
	FetchDelay() time.Duration
	EngineIndex() int
	SimultaneousTranslation() bool
	EngineSimultaneous(name string) bool
	HistoryEnabled() bool
	SkipSimilarHistory() bool
	SourceLanguage() internal.Language
	TargetLanguage() internal.Language
	SetSourceLanguage(lang internal.Language) error
	SetTargetLanguage(lang internal.Language) error
}

// Reloader is implemented by settings stores that can re-read their backing
// file. Refresh reloads them first so changes saved elsewhere are seen.
type Reloader interface {
	Reload() error
}

type HistoryRecorder interface {
	RecordIfAllowed(ctx context.Context, item internal.HistoryItem, dedupEnabled, historyEnabled bool) (bool, error)
}

type BookmarkSource interface {
	ListBookmarks(ctx context.Context) ([]internal.Language, error)
}

type Config struct {
	Registry *registry.Registry
	Catalog  *catalog.Catalog
	Settings Settings

	// Optional collaborators.
	History   HistoryRecorder
	Bookmarks BookmarkSource
	OCR       ocr.Extractor
	Notifier  Notifier
	// OnUpdate receives a copy of the state after every change.
	OnUpdate func(State)

	Logger zerolog.Logger
}

type Coordinator struct {
	registry  *registry.Registry
	catalog   *catalog.Catalog
	settings  Settings
	history   HistoryRecorder
	bookmarks BookmarkSource
	ocr       ocr.Extractor
	notifier  Notifier
	onUpdate  func(State)
	logger    zerolog.Logger

	// ctx outlives every request and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu           sync.Mutex
	state        State
	primaryIndex int
	timer        *time.Timer
	generation   uint64
	closed       bool
	// languagesDone is closed when the latest catalog fetch has finished.
	languagesDone chan struct{}
}

// New builds a session from the persisted settings. The language catalog
// and bookmarks are loaded by Refresh.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Registry == nil || cfg.Registry.Len() == 0 {
		return nil, fmt.Errorf("at least one translation engine is required")
	}
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.New(cfg.Logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		registry:  cfg.Registry,
		catalog:   cfg.Catalog,
		settings:  cfg.Settings,
		history:   cfg.History,
		bookmarks: cfg.Bookmarks,
		ocr:       cfg.OCR,
		notifier:  cfg.Notifier,
		onUpdate:  cfg.OnUpdate,
		logger:    cfg.Logger.With().Str("component", "coordinator").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}

	c.state = State{
		Source:        cfg.Settings.SourceLanguage(),
		Target:        cfg.Settings.TargetLanguage(),
		EngineResults: c.emptyResults(),
	}
	c.registry.Apply(c.settings)
	c.applySettingsLocked()

	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetInput replaces the input text and, with auto-translate on, restarts
// the debounce timer. When the timer fires the request is sent only if the
// text is still the one it was armed with.
func (c *Coordinator) SetInput(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.InsertedText = text
	if c.settings.AutoTranslate() {
		c.armDebounceLocked(text)
	}
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Coordinator) armDebounceLocked(text string) {
	c.generation++
	gen := c.generation
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.settings.FetchDelay(), func() {
		c.debounceFired(gen, text)
	})
}

func (c *Coordinator) debounceFired(gen uint64, text string) {
	c.mu.Lock()
	if c.closed || gen != c.generation || c.state.InsertedText != text {
		c.mu.Unlock()
		return
	}
	c.dispatchLocked()
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

// TranslateNow dispatches the current input immediately. Empty input, or
// identical source and target languages, yields the empty translation
// without calling any engine.
func (c *Coordinator) TranslateNow() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.dispatchLocked()
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

// Submit replaces the input and dispatches it at once. A pending debounce
// timer is superseded.
func (c *Coordinator) Submit(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.InsertedText = text
	c.generation++
	c.dispatchLocked()
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

// Clear resets input, translation and the translating flag. Requests
// already in flight keep running.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.state.InsertedText = ""
	c.state.Translation = translator.Translation{}
	c.state.Translating = false
	c.generation++
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

// Refresh reloads the settings store when it supports it, re-reads engine
// selection and the simultaneous flags, starts a language catalog fetch for
// the primary engine and reloads bookmarked languages. A catalog failure is
// reported through the notifier; settings and bookmark failures are
// returned. WaitLanguages joins the catalog fetch.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	if r, ok := c.settings.(Reloader); ok {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("failed to reload settings: %w", err)
		}
	}
	c.registry.Apply(c.settings)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.applySettingsLocked()
	primary := c.registry.Primary(c.primaryIndex)
	done := make(chan struct{})
	c.languagesDone = done
	c.goLocked(func() {
		defer close(done)
		c.loadLanguages(primary)
	})
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)

	if c.bookmarks == nil {
		return nil
	}
	langs, err := c.bookmarks.ListBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookmarked languages: %w", err)
	}

	c.mu.Lock()
	c.state.BookmarkedLanguages = langs
	snap = c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

// WaitLanguages blocks until the catalog fetch started by the latest Refresh
// has finished, without waiting for translations in flight.
func (c *Coordinator) WaitLanguages(ctx context.Context) error {
	c.mu.Lock()
	done := c.languagesDone
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) applySettingsLocked() {
	c.primaryIndex = c.settings.EngineIndex()
	primary := c.registry.Primary(c.primaryIndex)

	c.state.PrimaryEngine = primary.Name()
	c.state.SimEnabled = c.settings.SimultaneousTranslation()
	c.state.EnabledShadows = c.state.EnabledShadows[:0]
	for _, e := range c.registry.EnabledShadows() {
		if e.Name() != primary.Name() {
			c.state.EnabledShadows = append(c.state.EnabledShadows, e.Name())
		}
	}
}

func (c *Coordinator) loadLanguages(engine translator.TranslationService) {
	langs, err := c.catalog.Fetch(c.ctx, engine)
	if err != nil {
		if c.isClosed() {
			return
		}
		c.notify(Notification{Kind: LanguagesUnavailable, Engine: engine.Name(), Err: err})
		return
	}

	c.mu.Lock()
	c.state.AvailableLanguages = langs
	c.state.Source = catalog.ResolveDisplayName(c.state.Source, langs)
	c.state.Target = catalog.ResolveDisplayName(c.state.Target, langs)
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Coordinator) SetSourceLanguage(lang internal.Language) error {
	c.mu.Lock()
	c.state.Source = lang
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
	return c.settings.SetSourceLanguage(lang)
}

func (c *Coordinator) SetTargetLanguage(lang internal.Language) error {
	c.mu.Lock()
	c.state.Target = lang
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
	return c.settings.SetTargetLanguage(lang)
}

// SwapLanguages exchanges source and target. An auto-detect source cannot
// become the target, so the swap is refused in that case.
func (c *Coordinator) SwapLanguages() error {
	c.mu.Lock()
	if c.state.Source.IsAuto() {
		c.mu.Unlock()
		return fmt.Errorf("cannot swap while the source language is auto-detected")
	}
	c.state.Source, c.state.Target = c.state.Target, c.state.Source
	src, dst := c.state.Source, c.state.Target
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
	if err := c.settings.SetSourceLanguage(src); err != nil {
		return err
	}
	return c.settings.SetTargetLanguage(dst)
}

// ProcessImage extracts text from the image at ref and translates it right
// away. It returns ocr.ErrNotReady when no OCR engine is usable.
func (c *Coordinator) ProcessImage(ref string) error {
	if c.ocr == nil || !c.ocr.IsReady(c.ctx) {
		c.notify(Notification{Kind: OcrNotReady, Err: ocr.ErrNotReady})
		return ocr.ErrNotReady
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.goLocked(func() { c.extract(ref) })
	return nil
}

func (c *Coordinator) extract(ref string) {
	var (
		text string
		ok   bool
		err  error
	)
	var pc panics.Catcher
	pc.Try(func() {
		text, ok, err = c.ocr.ExtractText(c.ctx, ref)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("panic: %v", r.Value)
	}
	if err != nil {
		if c.isClosed() {
			return
		}
		c.logger.Warn().Err(err).Str("image", ref).Msg("Text extraction failed")
		c.notify(Notification{Kind: OcrFailed, Err: err})
		return
	}
	if !ok {
		c.logger.Debug().Str("image", ref).Msg("No text found in image")
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.InsertedText = text
	c.dispatchLocked()
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

// Wait blocks until the asynchronous work started so far has finished,
// translations included. It must not run concurrently with SetInput, whose
// debounce timer may start new work.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close stops the debounce timer, refuses new work, cancels requests in
// flight and waits for the workers to return.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// goLocked starts f on the worker group. Callers hold c.mu, which orders the
// start against Close. A panic in f is logged and never reaches Wait.
func (c *Coordinator) goLocked(f func()) {
	if c.closed {
		return
	}
	c.wg.Go(func() {
		var pc panics.Catcher
		pc.Try(f)
		if r := pc.Recovered(); r != nil {
			c.logger.Error().Str("panic", fmt.Sprint(r.Value)).Msg("Worker panicked")
		}
	})
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Coordinator) emptyResults() map[string]translator.Translation {
	names := c.registry.Names()
	results := make(map[string]translator.Translation, len(names))
	for _, name := range names {
		results[name] = translator.Translation{}
	}
	return results
}

func (c *Coordinator) publish(s State) {
	if c.onUpdate != nil {
		c.onUpdate(s)
	}
}

func (c *Coordinator) notify(n Notification) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}
