package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/simtran/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func historyItem(text, src, dst, translated string) internal.HistoryItem {
	return internal.HistoryItem{
		SourceLanguageCode: src,
		SourceLanguageName: src,
		TargetLanguageCode: dst,
		TargetLanguageName: dst,
		InsertedText:       text,
		TranslatedText:     translated,
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_NewWithDir(t *testing.T) {
	s, err := NewWithDir(filepath.Join(t.TempDir(), "a", "b", "test.db"))
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}
	s.Close()
}

func TestStore_ExistsSimilar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.ExistsSimilar(ctx, "hello", "", "en")
	if err != nil {
		t.Fatalf("ExistsSimilar failed: %v", err)
	}
	if exists {
		t.Error("expected no similar entry in empty store")
	}

	if err := s.InsertHistory(ctx, historyItem("hello", "", "en", "hello")); err != nil {
		t.Fatalf("InsertHistory failed: %v", err)
	}

	tests := []struct {
		name      string
		text      string
		src, dst  string
		wantExist bool
	}{
		{"identical", "hello", "", "en", true},
		{"different text", "hello!", "", "en", false},
		{"different source", "hello", "de", "en", false},
		{"different target", "hello", "", "es", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ExistsSimilar(ctx, tt.text, tt.src, tt.dst)
			if err != nil {
				t.Fatalf("ExistsSimilar failed: %v", err)
			}
			if got != tt.wantExist {
				t.Errorf("ExistsSimilar(%q,%q,%q) = %v, want %v", tt.text, tt.src, tt.dst, got, tt.wantExist)
			}
		})
	}
}

func TestStore_InsertAndListHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	first := historyItem("one", "en", "uk", "один")
	first.CreatedAt = base
	second := historyItem("two", "en", "uk", "два")
	second.CreatedAt = base.Add(time.Minute)

	for _, it := range []internal.HistoryItem{first, second} {
		if err := s.InsertHistory(ctx, it); err != nil {
			t.Fatalf("InsertHistory failed: %v", err)
		}
	}

	items, err := s.ListHistory(ctx, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].InsertedText != "two" {
		t.Errorf("expected newest first, got %q", items[0].InsertedText)
	}
	if items[0].ID == "" {
		t.Error("expected generated ID")
	}
	if items[1].TranslatedText != "один" {
		t.Errorf("expected 'один', got %q", items[1].TranslatedText)
	}

	limited, err := s.ListHistory(ctx, 1)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 item with limit, got %d", len(limited))
	}
}

func TestStore_DeleteAndClearHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := historyItem("hello", "", "en", "hello")
	item.ID = "fixed-id"
	if err := s.InsertHistory(ctx, item); err != nil {
		t.Fatalf("InsertHistory failed: %v", err)
	}
	if err := s.InsertHistory(ctx, historyItem("bye", "", "en", "bye")); err != nil {
		t.Fatalf("InsertHistory failed: %v", err)
	}

	if err := s.DeleteHistory(ctx, "fixed-id"); err != nil {
		t.Fatalf("DeleteHistory failed: %v", err)
	}
	if err := s.DeleteHistory(ctx, "fixed-id"); err == nil {
		t.Error("expected error deleting a missing entry")
	}

	n, err := s.ClearHistory(ctx)
	if err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 cleared row, got %d", n)
	}
}

func TestStore_HistoryStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, it := range []internal.HistoryItem{
		historyItem("hello", "", "en", "hello"),
		historyItem("hello", "", "en", "hello"),
		historyItem("hello", "en", "de", "hallo"),
		historyItem("bye", "en", "de", "tschüss"),
	} {
		if err := s.InsertHistory(ctx, it); err != nil {
			t.Fatalf("InsertHistory failed: %v", err)
		}
	}

	stats, err := s.HistoryStats(ctx)
	if err != nil {
		t.Fatalf("HistoryStats failed: %v", err)
	}
	if stats.TotalEntries != 4 {
		t.Errorf("expected 4 entries, got %d", stats.TotalEntries)
	}
	if stats.LanguagePairs != 2 {
		t.Errorf("expected 2 language pairs, got %d", stats.LanguagePairs)
	}
	if stats.DistinctTexts != 2 {
		t.Errorf("expected 2 distinct texts, got %d", stats.DistinctTexts)
	}
}

func TestStore_Bookmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddBookmark(ctx, internal.Language{Code: "uk", Name: "Ukrainian"}); err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if err := s.AddBookmark(ctx, internal.Language{Code: "de", Name: "German"}); err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if err := s.AddBookmark(ctx, internal.Language{Code: "uk", Name: "Українська"}); err != nil {
		t.Fatalf("AddBookmark (update) failed: %v", err)
	}

	langs, err := s.ListBookmarks(ctx)
	if err != nil {
		t.Fatalf("ListBookmarks failed: %v", err)
	}
	if len(langs) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(langs))
	}
	if langs[0].Code != "uk" || langs[0].Name != "Українська" {
		t.Errorf("expected updated uk bookmark first, got %+v", langs[0])
	}

	if err := s.RemoveBookmark(ctx, "uk"); err != nil {
		t.Fatalf("RemoveBookmark failed: %v", err)
	}
	langs, _ = s.ListBookmarks(ctx)
	if len(langs) != 1 || langs[0].Code != "de" {
		t.Errorf("expected only de left, got %+v", langs)
	}
}
