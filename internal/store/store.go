package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/valpere/simtran/internal"
)

type Store struct {
	db *sql.DB
}

// New opens (and creates, if needed) the sqlite database at dbPath.
// The parent directory must already exist unless mkdir is requested through
// NewWithDir.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY between
	// the coordinator's history writes and CLI reads.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func NewWithDir(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return New(dbPath)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		source_language_code TEXT NOT NULL,
		source_language_name TEXT NOT NULL,
		target_language_code TEXT NOT NULL,
		target_language_name TEXT NOT NULL,
		inserted_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- language_bookmarks holds languages pinned by the user for quick selection
	CREATE TABLE IF NOT EXISTS language_bookmarks (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_similar ON history(inserted_text, source_language_code, target_language_code);
	CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ExistsSimilar reports whether a history row with the same inserted text
// and language pair exists.
func (s *Store) ExistsSimilar(ctx context.Context, text, sourceCode, targetCode string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM history WHERE inserted_text = ? AND source_language_code = ? AND target_language_code = ?)`,
		text, sourceCode, targetCode).Scan(&exists)
	return exists, err
}

// InsertHistory stores item. Empty ID and CreatedAt are filled in.
func (s *Store) InsertHistory(ctx context.Context, item internal.HistoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, source_language_code, source_language_name, target_language_code, target_language_name, inserted_text, translated_text, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SourceLanguageCode, item.SourceLanguageName, item.TargetLanguageCode, item.TargetLanguageName,
		item.InsertedText, item.TranslatedText, item.CreatedAt)
	return err
}

// ListHistory returns history rows, newest first. limit <= 0 returns all.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]internal.HistoryItem, error) {
	query := `SELECT id, source_language_code, source_language_name, target_language_code, target_language_name, inserted_text, translated_text, created_at FROM history ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []internal.HistoryItem
	for rows.Next() {
		var it internal.HistoryItem
		if err := rows.Scan(&it.ID, &it.SourceLanguageCode, &it.SourceLanguageName, &it.TargetLanguageCode,
			&it.TargetLanguageName, &it.InsertedText, &it.TranslatedText, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteHistory permanently removes a history row by ID.
func (s *Store) DeleteHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("history entry not found: %s", id)
	}
	return nil
}

// ClearHistory removes all history rows.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HistoryStats summarises the history table.
type HistoryStats struct {
	TotalEntries  int
	LanguagePairs int
	DistinctTexts int
}

func (s *Store) HistoryStats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT source_language_code || '>' || target_language_code),
			COUNT(DISTINCT inserted_text)
		FROM history`).Scan(
		&stats.TotalEntries,
		&stats.LanguagePairs,
		&stats.DistinctTexts,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AddBookmark pins a language; bookmarking an already pinned code updates
// its name.
func (s *Store) AddBookmark(ctx context.Context, lang internal.Language) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO language_bookmarks (id, code, name) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET name = excluded.name`,
		uuid.New().String(), lang.Code, lang.Name)
	return err
}

// ListBookmarks returns bookmarked languages in insertion order.
func (s *Store) ListBookmarks(ctx context.Context) ([]internal.Language, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM language_bookmarks ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []internal.Language
	for rows.Next() {
		var l internal.Language
		if err := rows.Scan(&l.Code, &l.Name); err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

func (s *Store) RemoveBookmark(ctx context.Context, code string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM language_bookmarks WHERE code = ?`, code)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
