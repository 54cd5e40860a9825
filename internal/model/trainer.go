// Package model owns the trained classifier/regressor pair: fitting it on a
// shared held-out split, persisting the artifacts, and lazily loading them
// back for inference.
package model

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"flarecast/internal/config"
	"flarecast/internal/features"
	"flarecast/internal/forest"
	"flarecast/internal/metrics"
)

// splitSeed fixes the 80/20 partition so training runs are reproducible.
const splitSeed = 42

// Metrics reports the held-out scores of one training run. They are logged
// and exported, not consumed by downstream logic.
type Metrics struct {
	Accuracy  float64
	MAE       float64
	TrainSize int
	TestSize  int
}

// Train fits the intensity classifier and the interval regressor on a single
// shared random 80/20 split, so both models are evaluated on corresponding
// held-out events, then persists both artifacts.
func Train(ds *features.Dataset, paths config.Paths) (*Metrics, *forest.Classifier, *forest.Regressor, error) {
	started := time.Now()
	m, clf, reg, err := train(ds, paths)
	metrics.RecordTraining(time.Since(started), err)
	if err == nil {
		metrics.SetModelScores(m.Accuracy, m.MAE)
	}
	return m, clf, reg, err
}

func train(ds *features.Dataset, paths config.Paths) (*Metrics, *forest.Classifier, *forest.Regressor, error) {
	n := ds.Len()
	if n < 2 {
		return nil, nil, nil, fmt.Errorf("have %d training rows, need at least 2: %w",
			n, features.ErrInsufficientData)
	}

	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)
	nTest := n / 5
	if nTest < 1 {
		nTest = 1
	}
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	xcTrain := pick(ds.Classification, trainIdx)
	ycTrain := pickInts(ds.Intensity, trainIdx)
	xrTrain := pick(ds.Regression, trainIdx)
	yrTrain := pickFloats(ds.Interval, trainIdx)

	cfg := forest.DefaultConfig()
	clf := forest.TrainClassifier(xcTrain, ycTrain, cfg)
	reg := forest.TrainRegressor(xrTrain, yrTrain, cfg)

	correct := 0
	var absErr float64
	for _, i := range testIdx {
		if clf.Predict(ds.Classification[i]) == ds.Intensity[i] {
			correct++
		}
		absErr += math.Abs(reg.Predict(ds.Regression[i]) - float64(ds.Interval[i]))
	}

	m := &Metrics{
		Accuracy:  float64(correct) / float64(len(testIdx)),
		MAE:       absErr / float64(len(testIdx)),
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
	}
	log.Printf("Classifier accuracy: %.3f (test n=%d)", m.Accuracy, m.TestSize)
	log.Printf("Interval regressor MAE: %.3f days", m.MAE)

	if err := clf.Save(paths.ClassifierFile); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to persist classifier: %w", err)
	}
	if err := reg.Save(paths.RegressorFile); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to persist regressor: %w", err)
	}

	return m, clf, reg, nil
}

func pick(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for k, i := range idx {
		out[k] = rows[i]
	}
	return out
}

func pickInts(values []int, idx []int) []int {
	out := make([]int, len(idx))
	for k, i := range idx {
		out[k] = values[i]
	}
	return out
}

func pickFloats(values []int, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = float64(values[i])
	}
	return out
}
