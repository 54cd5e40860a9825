// Package ledger persists past predictions as an append-only JSON document.
// Entries are never mutated or deleted; appends deduplicate on
// (predicted_class, estimated_date).
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"flarecast/internal/models"
	"flarecast/internal/store"
)

// NoHistoryMessage is returned by RenderHistory when the ledger is empty or
// its backing file does not exist yet.
const NoHistoryMessage = "No past predictions available."

// entryTimeLayout is the provenance timestamp layout ("YYYY-MM-DDThh:mm:ssZ").
const entryTimeLayout = "2006-01-02T15:04:05Z"

type Ledger struct {
	path string
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// ReadAll returns every entry in storage order, which is chronological since
// writes are append-only. A missing file is an empty ledger, not an error.
func (l *Ledger) ReadAll() ([]models.PredictionEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &store.StorageError{Op: "read", Path: l.path, Err: err}
	}

	var entries []models.PredictionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &store.StorageError{Op: "decode", Path: l.path, Err: err}
	}
	return entries, nil
}

// Append persists the entry unless one with the same predicted class and
// estimated date already exists. The returned bool reports whether a write
// occurred, so callers can observe deduplication.
func (l *Ledger) Append(entry models.PredictionEntry) (bool, error) {
	entries, err := l.ReadAll()
	if err != nil {
		return false, err
	}

	for _, existing := range entries {
		if existing.PredictedClass == entry.PredictedClass &&
			existing.EstimatedDate == entry.EstimatedDate {
			return false, nil
		}
	}

	entries = append(entries, entry)
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return false, fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := store.WriteFile(l.path, data); err != nil {
		return false, &store.StorageError{Op: "write", Path: l.path, Err: err}
	}
	return true, nil
}

// RenderHistory formats one line per entry in storage order. Timestamps that
// fail to parse render as-is rather than dropping the entry.
func (l *Ledger) RenderHistory() (string, error) {
	entries, err := l.ReadAll()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return NoHistoryMessage, nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		when := e.Timestamp
		if ts, err := time.Parse(entryTimeLayout, e.Timestamp); err == nil {
			when = ts.Format("Jan 02, 2006 03:04:05 PM")
		}
		lines = append(lines, fmt.Sprintf("%s: %s (in %d days)", when, e.PredictedClass, e.EstimatedDays))
	}
	return strings.Join(lines, "\n"), nil
}
