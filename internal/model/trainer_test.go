package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flarecast/internal/config"
	"flarecast/internal/features"
	"flarecast/internal/models"
	"flarecast/internal/store"
)

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	dir := t.TempDir()
	return config.Paths{
		EventsFile:     filepath.Join(dir, "events.json"),
		ClassifierFile: filepath.Join(dir, "classifier.json"),
		RegressorFile:  filepath.Join(dir, "regressor.json"),
		LedgerFile:     filepath.Join(dir, "predictions.json"),
	}
}

func testDocument(flareCount int) *models.EventDocument {
	classes := []string{"M1.5", "X2.0", "C3.1", "B4.0"}
	gaps := []int{1, 3, 2, 5}
	current := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	doc := &models.EventDocument{Timestamp: "2024-06-01T00:00:00Z"}
	for i := 0; i < flareCount; i++ {
		doc.SolarFlares = append(doc.SolarFlares, models.FlareEvent{
			ClassType: classes[i%len(classes)],
			BeginTime: current.Format(models.EventTimeLayout),
			Duration:  models.Number(300 + 30*(i%7)),
		})
		current = current.Add(time.Duration(gaps[i%len(gaps)]) * 24 * time.Hour)
	}
	doc.GeomagneticStorms = []models.StormEvent{
		{StartTime: "2024-01-08T02:00Z", KpIndex: 6},
		{StartTime: "2024-01-20T02:00Z", KpIndex: 8},
	}
	doc.CoronalMassEjections = []models.CMEEvent{
		{StartTime: "2024-01-12T02:00Z", Speed: 600},
	}
	return doc
}

func testDataset(t *testing.T, flareCount int) *features.Dataset {
	t.Helper()
	ds, err := features.Build(testDocument(flareCount))
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}
	return ds
}

func TestTrainPersistsArtifacts(t *testing.T) {
	paths := testPaths(t)
	ds := testDataset(t, 30)

	m, clf, reg, err := Train(ds, paths)
	if err != nil {
		t.Fatalf("Train() returned error: %v", err)
	}
	if clf == nil || reg == nil {
		t.Fatal("Train() returned nil models")
	}
	if m.TrainSize+m.TestSize != ds.Len() {
		t.Errorf("split sizes %d+%d do not cover %d rows", m.TrainSize, m.TestSize, ds.Len())
	}
	if m.Accuracy < 0 || m.Accuracy > 1 {
		t.Errorf("accuracy = %v, out of range", m.Accuracy)
	}
	if m.MAE < 0 {
		t.Errorf("MAE = %v, want >= 0", m.MAE)
	}

	for _, path := range []string{paths.ClassifierFile, paths.RegressorFile} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact %s not written: %v", path, err)
		}
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	ds := testDataset(t, 30)

	a, _, _, err := Train(ds, testPaths(t))
	if err != nil {
		t.Fatalf("first Train() returned error: %v", err)
	}
	b, _, _, err := Train(ds, testPaths(t))
	if err != nil {
		t.Fatalf("second Train() returned error: %v", err)
	}

	if a.Accuracy != b.Accuracy || a.MAE != b.MAE {
		t.Errorf("two runs scored differently: %.4f/%.4f vs %.4f/%.4f",
			a.Accuracy, a.MAE, b.Accuracy, b.MAE)
	}
	if a.TrainSize != b.TrainSize || a.TestSize != b.TestSize {
		t.Errorf("two runs split differently: %d/%d vs %d/%d",
			a.TrainSize, a.TestSize, b.TrainSize, b.TestSize)
	}
}

func TestTrainTooFewRows(t *testing.T) {
	paths := testPaths(t)
	ds := &features.Dataset{
		Classification: [][]float64{make([]float64, features.ClassifierFeatures)},
		Intensity:      []int{3},
		Regression:     [][]float64{make([]float64, features.RegressorFeatures)},
		Interval:       []int{2},
	}

	_, _, _, err := Train(ds, paths)
	if !errors.Is(err, features.ErrInsufficientData) {
		t.Fatalf("Train() error = %v, want ErrInsufficientData", err)
	}

	// Nothing may be written on a failed run.
	for _, path := range []string{paths.ClassifierFile, paths.RegressorFile} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("artifact %s exists after failed training", path)
		}
	}
}

func TestStoreTrainsWhenArtifactsMissing(t *testing.T) {
	paths := testPaths(t)
	events := store.NewEventStore(paths.EventsFile)
	if err := events.Save(testDocument(30)); err != nil {
		t.Fatalf("Failed to seed event store: %v", err)
	}

	s := NewStore(events, paths)
	clf, reg, err := s.Models(false)
	if err != nil {
		t.Fatalf("Models() returned error: %v", err)
	}
	if clf == nil || reg == nil {
		t.Fatal("Models() returned nil models")
	}

	if _, err := os.Stat(paths.ClassifierFile); err != nil {
		t.Errorf("classifier artifact not written after lazy training: %v", err)
	}
}

func TestStoreReturnsCachedModels(t *testing.T) {
	paths := testPaths(t)
	events := store.NewEventStore(paths.EventsFile)
	if err := events.Save(testDocument(30)); err != nil {
		t.Fatalf("Failed to seed event store: %v", err)
	}

	s := NewStore(events, paths)
	clf1, reg1, err := s.Models(false)
	if err != nil {
		t.Fatalf("first Models() returned error: %v", err)
	}

	// Remove the backing data: a cached pair must still be served.
	if err := os.Remove(paths.EventsFile); err != nil {
		t.Fatalf("Failed to remove events file: %v", err)
	}

	clf2, reg2, err := s.Models(false)
	if err != nil {
		t.Fatalf("second Models() returned error: %v", err)
	}
	if clf1 != clf2 || reg1 != reg2 {
		t.Error("Models() did not serve the cached pair")
	}
}

func TestStoreForceRetrain(t *testing.T) {
	paths := testPaths(t)
	events := store.NewEventStore(paths.EventsFile)
	if err := events.Save(testDocument(30)); err != nil {
		t.Fatalf("Failed to seed event store: %v", err)
	}

	s := NewStore(events, paths)
	clf1, _, err := s.Models(false)
	if err != nil {
		t.Fatalf("Models() returned error: %v", err)
	}

	clf2, _, err := s.Models(true)
	if err != nil {
		t.Fatalf("Models(force) returned error: %v", err)
	}
	if clf1 == clf2 {
		t.Error("forced retrain served the cached classifier")
	}
}

func TestStoreNoData(t *testing.T) {
	paths := testPaths(t)
	s := NewStore(store.NewEventStore(paths.EventsFile), paths)

	_, _, err := s.Models(false)
	if !errors.Is(err, store.ErrDataUnavailable) {
		t.Errorf("Models() error = %v, want ErrDataUnavailable", err)
	}
}

func TestStoreInsufficientData(t *testing.T) {
	paths := testPaths(t)
	events := store.NewEventStore(paths.EventsFile)
	if err := events.Save(testDocument(4)); err != nil {
		t.Fatalf("Failed to seed event store: %v", err)
	}

	s := NewStore(events, paths)
	_, _, err := s.Models(false)
	if !errors.Is(err, features.ErrInsufficientData) {
		t.Errorf("Models() error = %v, want ErrInsufficientData", err)
	}
}
