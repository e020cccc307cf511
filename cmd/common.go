/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/catalog"
	"github.com/valpere/simtran/internal/config"
	"github.com/valpere/simtran/internal/coordinator"
	"github.com/valpere/simtran/internal/detector"
	"github.com/valpere/simtran/internal/history"
	"github.com/valpere/simtran/internal/ocr"
	"github.com/valpere/simtran/internal/registry"
	"github.com/valpere/simtran/internal/settings"
	"github.com/valpere/simtran/internal/store"
	"github.com/valpere/simtran/internal/translator"
)

// buildEngines constructs the engines named in the configuration, in order.
func buildEngines(c *config.Config) ([]translator.TranslationService, error) {
	var detect translator.DetectFunc
	var list []translator.TranslationService

	for _, name := range c.EngineNames() {
		switch name {
		case "google":
			list = append(list, translator.NewGoogleService(c.GoogleCredentials))
		case "mymemory":
			if detect == nil {
				detect = detector.New().DetectISO
			}
			list = append(list, translator.NewMyMemoryService(c.MyMemoryEmail, detect))
		case "systran":
			list = append(list, translator.NewSystranService(c.SystranAPIKey))
		case "ollama":
			list = append(list, translator.NewOllamaTranslator(c.OllamaURL, c.OllamaModels))
		case "openrouter":
			list = append(list, translator.NewOpenRouterService(c.OpenRouterAPIKey, "", c.OpenRouterModels))
		default:
			logger.Warn().Str("engine", name).Msg("Unknown engine, skipping")
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid engines configured")
	}
	return list, nil
}

// app bundles the long-lived collaborators of one command run.
type app struct {
	store    *store.Store
	settings *settings.Store
	registry *registry.Registry
	catalog  *catalog.Catalog
}

func openApp() (*app, error) {
	db, err := store.NewWithDir(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	prefs, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	engines, err := buildEngines(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	reg, err := registry.New(engines...)
	if err != nil {
		db.Close()
		return nil, err
	}
	reg.Apply(prefs)

	return &app{
		store:    db,
		settings: prefs,
		registry: reg,
		catalog:  catalog.New(logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) newCoordinator(notifier coordinator.Notifier, onUpdate func(coordinator.State)) (*coordinator.Coordinator, error) {
	return coordinator.New(coordinator.Config{
		Registry:  a.registry,
		Catalog:   a.catalog,
		Settings:  a.settings,
		History:   history.NewRecorder(a.store),
		Bookmarks: a.store,
		OCR:       ocr.NewTesseract(cfg.TesseractPath, cfg.TesseractDataDir, cfg.OCRLanguages),
		Notifier:  notifier,
		OnUpdate:  onUpdate,
		Logger:    logger,
	})
}

// primary returns the engine selected in settings.
func (a *app) primary() translator.TranslationService {
	return a.registry.Primary(a.settings.EngineIndex())
}

// languageFor resolves a user-supplied code against known, falling back to
// an English display name from x/text. "auto" and "" select auto-detection.
func languageFor(code string, known []internal.Language) (internal.Language, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return internal.AutoLanguage, nil
	}
	for _, l := range known {
		if strings.EqualFold(l.Code, code) {
			return l, nil
		}
	}

	tag, err := language.Parse(code)
	if err != nil {
		return internal.Language{}, fmt.Errorf("unknown language code %q", code)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		name = code
	}
	return internal.Language{Code: code, Name: name}, nil
}

func formatLanguage(l internal.Language) string {
	if l.IsAuto() {
		return l.Name
	}
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}

// refreshAndWait refreshes the coordinator and waits for the language
// catalog to load. Translations in flight are not waited for.
func refreshAndWait(ctx context.Context, c *coordinator.Coordinator) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	return c.WaitLanguages(ctx)
}
