package coordinator

import (
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/history"
	"github.com/valpere/simtran/internal/translator"
)

// job is one dispatched request together with the languages it was built
// from.
type job struct {
	req    translator.TranslateRequest
	source internal.Language
	target internal.Language
}

// dispatchLocked starts a request for the current input. Callers hold c.mu.
func (c *Coordinator) dispatchLocked() {
	text := c.state.InsertedText
	if text == "" || c.state.Source.Equal(c.state.Target) {
		c.state.Translation = translator.Translation{}
		return
	}

	c.state.Translating = true
	// the reset happens under the lock before any worker starts, so no
	// completion of this request can land in the previous map
	c.state.EngineResults = c.emptyResults()

	j := job{
		req: translator.TranslateRequest{
			Text:       text,
			SourceLang: c.state.Source.Code,
			TargetLang: c.state.Target.Code,
		},
		source: c.state.Source,
		target: c.state.Target,
	}

	primary := c.registry.Primary(c.primaryIndex)
	c.logger.Debug().
		Str("engine", primary.Name()).
		Str("source", j.req.SourceLang).
		Str("target", j.req.TargetLang).
		Int("chars", len(text)).
		Msg("Dispatching translation")
	c.goLocked(func() { c.runPrimary(primary, j) })

	if !c.state.SimEnabled {
		return
	}
	for _, shadow := range c.registry.EnabledShadows() {
		if shadow.Name() == primary.Name() {
			continue
		}
		c.goLocked(func() { c.runShadow(shadow, j) })
	}
}

// call runs one engine request. A panic or a nil result is turned into an
// EngineError so every worker ends with either a translation or an error.
func (c *Coordinator) call(engine translator.TranslationService, req translator.TranslateRequest) (translator.Translation, error) {
	var (
		res *translator.Translation
		err error
	)
	start := time.Now()

	var pc panics.Catcher
	pc.Try(func() {
		res, err = engine.Translate(c.ctx, req)
	})
	if r := pc.Recovered(); r != nil {
		return translator.Translation{}, &translator.EngineError{Engine: engine.Name(), Err: fmt.Errorf("panic: %v", r.Value)}
	}
	if err != nil {
		return translator.Translation{}, err
	}
	if res == nil {
		return translator.Translation{}, &translator.EngineError{Engine: engine.Name(), Err: fmt.Errorf("no translation returned")}
	}

	out := *res
	if out.EngineName == "" {
		out.EngineName = engine.Name()
	}
	if out.Latency == 0 {
		out.Latency = time.Since(start)
	}
	return out, nil
}

func (c *Coordinator) runPrimary(engine translator.TranslationService, j job) {
	res, err := c.call(engine, j.req)

	c.mu.Lock()
	c.state.Translating = false

	if err != nil {
		closed := c.closed
		snap := c.state.clone()
		c.mu.Unlock()

		c.publish(snap)
		if closed {
			return
		}
		c.logger.Warn().Err(err).Str("engine", engine.Name()).Msg("Primary translation failed")
		c.notify(Notification{Kind: EngineUnreachable, Engine: engine.Name(), Err: err})
		return
	}

	if c.state.InsertedText == "" {
		snap := c.state.clone()
		c.mu.Unlock()

		c.logger.Debug().Str("engine", engine.Name()).Msg("Input cleared, dropping translation")
		c.publish(snap)
		return
	}

	c.state.Translation = res
	c.state.EngineResults[engine.Name()] = res
	item := internal.HistoryItem{
		SourceLanguageCode: j.source.Code,
		SourceLanguageName: j.source.Name,
		TargetLanguageCode: j.target.Code,
		TargetLanguageName: j.target.Name,
		InsertedText:       j.req.Text,
		TranslatedText:     res.TranslatedText,
	}
	c.goLocked(func() { c.record(item) })
	snap := c.state.clone()
	c.mu.Unlock()

	c.logger.Debug().
		Str("engine", engine.Name()).
		Dur("latency", res.Latency).
		Msg("Translation committed")
	c.publish(snap)
}

// runShadow applies a shadow engine's result to its own entry only. Errors
// are dropped.
func (c *Coordinator) runShadow(engine translator.TranslationService, j job) {
	res, err := c.call(engine, j.req)
	if err != nil {
		c.logger.Debug().Err(err).Str("engine", engine.Name()).Msg("Simultaneous translation failed")
		return
	}

	c.mu.Lock()
	if _, known := c.state.EngineResults[engine.Name()]; !known {
		c.mu.Unlock()
		return
	}
	c.state.EngineResults[engine.Name()] = res
	snap := c.state.clone()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Coordinator) record(item internal.HistoryItem) {
	if c.history == nil {
		return
	}
	var (
		inserted bool
		err      error
	)
	var pc panics.Catcher
	pc.Try(func() {
		inserted, err = c.history.RecordIfAllowed(c.ctx, item, c.settings.SkipSimilarHistory(), c.settings.HistoryEnabled())
	})
	if r := pc.Recovered(); r != nil {
		err = &history.PersistenceError{Op: "record", Err: fmt.Errorf("panic: %v", r.Value)}
	}
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to save history")
		return
	}
	if inserted {
		c.logger.Debug().Str("target", item.TargetLanguageCode).Msg("History entry saved")
	}
}
