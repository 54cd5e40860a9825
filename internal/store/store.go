package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flarecast/internal/models"
)

// ErrDataUnavailable means the canonical event document has not been written
// yet. Callers report it and skip training/prediction; it is not retryable
// until the acquisition layer runs.
var ErrDataUnavailable = errors.New("event data unavailable")

// StorageError wraps I/O or decode failures on persisted files (unreadable
// or corrupt documents, model artifacts, ledger). It is never swallowed into
// a default value: a corrupt model pair must surface, not mask itself.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// EventStore reads the persisted multi-series event dataset written by the
// acquisition layer.
type EventStore struct {
	path string
}

func NewEventStore(path string) *EventStore {
	return &EventStore{path: path}
}

// Load reads and decodes the event document. A missing file is reported as
// ErrDataUnavailable; unreadable or corrupt files surface as *StorageError.
func (s *EventStore) Load() (*models.EventDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrDataUnavailable)
		}
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	doc := &models.EventDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &StorageError{Op: "decode", Path: s.path, Err: err}
	}

	return doc, nil
}

// Save writes the event document, creating the parent directory if needed.
// Used by the acquisition layer; the core only reads.
func (s *EventStore) Save(doc *models.EventDocument) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode event document: %w", err)
	}
	if err := WriteFile(s.path, data); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// WriteFile writes data to path, creating the parent directory if needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
