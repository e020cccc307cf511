// Package history records accepted translations, skipping near-duplicates
// when asked to.
package history

import (
	"context"
	"fmt"

	"github.com/valpere/simtran/internal"
)

// Repository is the persistence the recorder writes through.
type Repository interface {
	ExistsSimilar(ctx context.Context, text, sourceCode, targetCode string) (bool, error)
	InsertHistory(ctx context.Context, item internal.HistoryItem) error
}

// PersistenceError wraps a failed history lookup or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// RecordIfAllowed inserts item unless history is disabled, or dedup is
// enabled and a row with the same text and language pair already exists.
// The check and the insert are not atomic: two concurrent identical
// recordings may both insert.
func (r *Recorder) RecordIfAllowed(ctx context.Context, item internal.HistoryItem, dedupEnabled, historyEnabled bool) (bool, error) {
	if !historyEnabled {
		return false, nil
	}

	if dedupEnabled {
		exists, err := r.repo.ExistsSimilar(ctx, item.InsertedText, item.SourceLanguageCode, item.TargetLanguageCode)
		if err != nil {
			return false, &PersistenceError{Op: "lookup", Err: err}
		}
		if exists {
			return false, nil
		}
	}

	if err := r.repo.InsertHistory(ctx, item); err != nil {
		return false, &PersistenceError{Op: "insert", Err: err}
	}
	return true, nil
}
