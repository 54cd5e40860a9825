package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flarecast/internal/models"
)

func TestLoadMissingFile(t *testing.T) {
	s := NewEventStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := s.Load()
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("Load() error = %v, want ErrDataUnavailable", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	_, err := NewEventStore(path).Load()
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Load() error = %v, want *StorageError", err)
	}
	if storageErr.Op != "decode" {
		t.Errorf("StorageError.Op = %q, want %q", storageErr.Op, "decode")
	}
	if errors.Is(err, ErrDataUnavailable) {
		t.Error("corrupt file must not be reported as ErrDataUnavailable")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	// The parent directory does not exist yet; Save must create it.
	path := filepath.Join(t.TempDir(), "data", "events.json")
	s := NewEventStore(path)

	doc := &models.EventDocument{
		Timestamp: "2024-03-05T12:00:00Z",
		SolarFlares: []models.FlareEvent{
			{ClassType: "M1.2", BeginTime: "2024-03-05T14:30Z", Duration: 600},
		},
		GeomagneticStorms: []models.StormEvent{
			{StartTime: "2024-03-05T10:00Z", KpIndex: 6},
		},
	}

	if err := s.Save(doc); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(got.SolarFlares) != 1 || got.SolarFlares[0].ClassType != "M1.2" {
		t.Errorf("unexpected flares after round trip: %+v", got.SolarFlares)
	}
	if float64(got.GeomagneticStorms[0].KpIndex) != 6 {
		t.Errorf("kpIndex = %v, want 6", got.GeomagneticStorms[0].KpIndex)
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	inner := errors.New("disk on fire")
	err := &StorageError{Op: "read", Path: "/tmp/x", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("StorageError must unwrap to its cause")
	}
	if msg := err.Error(); msg == "" {
		t.Error("StorageError.Error() returned empty string")
	}
}
