package model

import (
	"errors"
	"fmt"
	"log"
	"os"

	"flarecast/internal/config"
	"flarecast/internal/features"
	"flarecast/internal/forest"
	"flarecast/internal/store"
)

// Store lazily loads the persisted model pair and retrains on a cache miss
// or an explicit request. Loaded models are immutable; a retrain replaces
// the pair wholesale. Serializing concurrent writers is the caller's job.
type Store struct {
	events *store.EventStore
	paths  config.Paths

	classifier *forest.Classifier
	regressor  *forest.Regressor
}

func NewStore(events *store.EventStore, paths config.Paths) *Store {
	return &Store{events: events, paths: paths}
}

// Models returns the classifier/regressor pair. With forceRetrain, or when
// either artifact is missing from disk, it trains first (propagating
// data-unavailable and insufficient-data errors). Either both models are
// returned or neither is.
func (s *Store) Models(forceRetrain bool) (*forest.Classifier, *forest.Regressor, error) {
	if forceRetrain {
		if _, err := s.Retrain(); err != nil {
			return nil, nil, err
		}
		return s.classifier, s.regressor, nil
	}

	if s.classifier != nil && s.regressor != nil {
		return s.classifier, s.regressor, nil
	}

	clf, cerr := forest.LoadClassifier(s.paths.ClassifierFile)
	reg, rerr := forest.LoadRegressor(s.paths.RegressorFile)

	if errors.Is(cerr, os.ErrNotExist) || errors.Is(rerr, os.ErrNotExist) {
		log.Printf("Model artifacts missing, training...")
		if _, err := s.Retrain(); err != nil {
			return nil, nil, err
		}
		return s.classifier, s.regressor, nil
	}
	if cerr != nil {
		return nil, nil, fmt.Errorf("failed to load classifier: %w", cerr)
	}
	if rerr != nil {
		return nil, nil, fmt.Errorf("failed to load regressor: %w", rerr)
	}

	s.classifier, s.regressor = clf, reg
	return s.classifier, s.regressor, nil
}

// Retrain rebuilds the dataset from the event store, fits and persists a
// fresh model pair, and replaces the cached one.
func (s *Store) Retrain() (*Metrics, error) {
	doc, err := s.events.Load()
	if err != nil {
		return nil, err
	}

	ds, err := features.Build(doc)
	if err != nil {
		return nil, err
	}

	m, clf, reg, err := Train(ds, s.paths)
	if err != nil {
		return nil, err
	}

	s.classifier, s.regressor = clf, reg
	return m, nil
}
