package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/store"
)

func newRecorder(t *testing.T) (*Recorder, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewRecorder(s), s
}

func item(text string) internal.HistoryItem {
	return internal.HistoryItem{
		SourceLanguageCode: "",
		SourceLanguageName: "Auto",
		TargetLanguageCode: "en",
		TargetLanguageName: "English",
		InsertedText:       text,
		TranslatedText:     text + "!",
	}
}

func count(t *testing.T, s *store.Store) int {
	t.Helper()
	items, err := s.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	return len(items)
}

func TestRecordIfAllowed_HistoryDisabled(t *testing.T) {
	r, s := newRecorder(t)

	inserted, err := r.RecordIfAllowed(context.Background(), item("hello"), true, false)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 0, count(t, s))
}

func TestRecordIfAllowed_DedupSkipsSimilar(t *testing.T) {
	r, s := newRecorder(t)
	ctx := context.Background()

	inserted, err := r.RecordIfAllowed(ctx, item("hello"), true, true)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = r.RecordIfAllowed(ctx, item("hello"), true, true)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 1, count(t, s))
}

func TestRecordIfAllowed_NoDedupInsertsDuplicates(t *testing.T) {
	r, s := newRecorder(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		inserted, err := r.RecordIfAllowed(ctx, item("hello"), false, true)
		require.NoError(t, err)
		assert.True(t, inserted)
	}
	assert.Equal(t, 2, count(t, s))
}

type failingRepo struct {
	existsErr error
	insertErr error
}

func (f failingRepo) ExistsSimilar(context.Context, string, string, string) (bool, error) {
	return false, f.existsErr
}

func (f failingRepo) InsertHistory(context.Context, internal.HistoryItem) error {
	return f.insertErr
}

func TestRecordIfAllowed_PersistenceErrors(t *testing.T) {
	boom := errors.New("disk full")

	_, err := NewRecorder(failingRepo{existsErr: boom}).RecordIfAllowed(context.Background(), item("x"), true, true)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "lookup", pe.Op)
	assert.ErrorIs(t, err, boom)

	_, err = NewRecorder(failingRepo{insertErr: boom}).RecordIfAllowed(context.Background(), item("x"), false, true)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "insert", pe.Op)
}
