package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/translator"
)

type fakeEngine struct {
	name string
	sim  bool
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Translate(_ context.Context, req translator.TranslateRequest) (*translator.Translation, error) {
	return &translator.Translation{EngineName: f.name, TranslatedText: req.Text}, nil
}

func (f *fakeEngine) SupportedLanguages(context.Context) ([]internal.Language, error) {
	return nil, nil
}

func (f *fakeEngine) IsAvailable(context.Context) error { return nil }
func (f *fakeEngine) IsSimultaneousEnabled() bool        { return f.sim }
func (f *fakeEngine) SetSimultaneous(enabled bool)       { f.sim = enabled }

type flags map[string]bool

func (f flags) EngineSimultaneous(name string) bool { return f[name] }

func newRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	var engines []translator.TranslationService
	for _, n := range names {
		engines = append(engines, &fakeEngine{name: n})
	}
	r, err := New(engines...)
	require.NoError(t, err)
	return r
}

func TestRegistry_New_Rejects(t *testing.T) {
	_, err := New(&fakeEngine{name: "google"}, &fakeEngine{name: "Google"})
	assert.Error(t, err, "duplicate names differing in case")

	_, err = New(&fakeEngine{name: "  "})
	assert.Error(t, err, "blank name")

	_, err = New(nil)
	assert.Error(t, err, "nil engine")
}

func TestRegistry_NamesKeepOrder(t *testing.T) {
	r := newRegistry(t, "google", "mymemory", "systran")
	assert.Equal(t, []string{"google", "mymemory", "systran"}, r.Names())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Engine(t *testing.T) {
	r := newRegistry(t, "google", "mymemory")

	e, err := r.Engine(" MyMemory ")
	require.NoError(t, err)
	assert.Equal(t, "mymemory", e.Name())

	_, err = r.Engine("deepl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google, mymemory")
}

func TestRegistry_Primary(t *testing.T) {
	r := newRegistry(t, "google", "mymemory", "systran")

	tests := []struct {
		index int
		want  string
	}{
		{0, "google"},
		{2, "systran"},
		{3, "google"},
		{-1, "google"},
		{100, "google"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Primary(tt.index).Name(), "index %d", tt.index)
	}

	empty, err := New()
	require.NoError(t, err)
	assert.Nil(t, empty.Primary(0))
}

func TestRegistry_ApplyAndEnabledShadows(t *testing.T) {
	r := newRegistry(t, "google", "mymemory", "systran")
	assert.Empty(t, r.EnabledShadows())

	r.Apply(flags{"systran": true, "google": true})
	var names []string
	for _, e := range r.EnabledShadows() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"google", "systran"}, names)

	r.Apply(flags{})
	assert.Empty(t, r.EnabledShadows())
}

func TestRegistry_EnginesIsCopy(t *testing.T) {
	r := newRegistry(t, "google", "mymemory")
	engines := r.Engines()
	engines[0] = &fakeEngine{name: "other"}
	assert.Equal(t, "google", r.Primary(0).Name())
}
