// Package settings persists user preferences in a YAML file through viper.
//
// Keys mirror the preferences the coordinator reads on start-up and on
// refresh. Languages are stored as JSON-encoded {code,name} objects so a
// hand-edited or corrupt value falls back to the default language.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/simtran/internal"
)

const (
	KeyTranslateAutomatically  = "translate_automatically"
	KeyFetchDelay              = "fetch_delay"
	KeyEngineIndex             = "api_type"
	KeySimultaneousTranslation = "simultaneous_translation"
	KeyHistoryEnabled          = "history_enabled"
	KeySkipSimilarHistory      = "skip_similar_history"
	KeySourceLanguage          = "source_language"
	KeyTargetLanguage          = "target_language"

	engineKeyPrefix = "engines"

	DefaultFetchDelay = 500 * time.Millisecond
)

// Store is a goroutine-safe view over a viper instance bound to one file.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

// Open loads path if it exists. A missing file is not an error; it is
// created on the first Save.
func Open(path string) (*Store, error) {
	v, err := load(path)
	if err != nil {
		return nil, err
	}
	return &Store{v: v, path: path}, nil
}

// Reload re-reads the file so values saved by another process are seen.
// Values Set but not saved are discarded. A missing file resets every key
// to its default.
func (s *Store) Reload() error {
	v, err := load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
	return nil
}

func load(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault(KeyTranslateAutomatically, true)
	v.SetDefault(KeyFetchDelay, DefaultFetchDelay.Milliseconds())
	v.SetDefault(KeyEngineIndex, 0)
	v.SetDefault(KeySimultaneousTranslation, false)
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeySkipSimilarHistory, true)
	v.SetDefault(KeySourceLanguage, "")
	v.SetDefault(KeyTargetLanguage, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
	}
	return v, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) AutoTranslate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(KeyTranslateAutomatically)
}

// FetchDelay is the debounce delay; non-positive values use the default.
func (s *Store) FetchDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms := s.v.GetFloat64(KeyFetchDelay)
	if ms <= 0 {
		return DefaultFetchDelay
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func (s *Store) EngineIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetInt(KeyEngineIndex)
}

func (s *Store) SimultaneousTranslation() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(KeySimultaneousTranslation)
}

func (s *Store) HistoryEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(KeyHistoryEnabled)
}

func (s *Store) SkipSimilarHistory() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(KeySkipSimilarHistory)
}

func engineSimKey(name string) string {
	return engineKeyPrefix + "." + name + ".simultaneous"
}

// EngineSimultaneous reports whether engine name takes part in simultaneous
// translation.
func (s *Store) EngineSimultaneous(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(engineSimKey(name))
}

func (s *Store) SourceLanguage() internal.Language {
	return s.language(KeySourceLanguage, internal.AutoLanguage)
}

func (s *Store) TargetLanguage() internal.Language {
	return s.language(KeyTargetLanguage, internal.DefaultTargetLanguage)
}

func (s *Store) language(key string, fallback internal.Language) internal.Language {
	s.mu.RLock()
	raw := s.v.GetString(key)
	s.mu.RUnlock()

	if raw == "" {
		return fallback
	}
	var lang internal.Language
	if err := json.Unmarshal([]byte(raw), &lang); err != nil {
		return fallback
	}
	return lang
}

func (s *Store) SetSourceLanguage(lang internal.Language) error {
	return s.setLanguage(KeySourceLanguage, lang)
}

func (s *Store) SetTargetLanguage(lang internal.Language) error {
	return s.setLanguage(KeyTargetLanguage, lang)
}

func (s *Store) setLanguage(key string, lang internal.Language) error {
	data, err := json.Marshal(lang)
	if err != nil {
		return fmt.Errorf("failed to encode language: %w", err)
	}
	s.Set(key, string(data))
	return s.Save()
}

func (s *Store) SetEngineSimultaneous(name string, enabled bool) {
	s.Set(engineSimKey(name), enabled)
}

// Set stores a raw value; call Save to persist it.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

func (s *Store) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Get(key)
}

// Keys returns every known key, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.v.AllKeys()
	sort.Strings(keys)
	return keys
}

func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", s.path, err)
	}
	return nil
}
