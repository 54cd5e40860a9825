// Package forest implements the deterministic random-forest pair behind the
// flare forecasts: an intensity classifier and a day-interval regressor.
// Trees are grown sequentially from a single seeded source so that an
// identical dataset and seed always reproduce identical models.
package forest

import (
	"math"
	"math/rand"
	"sort"
)

// Config carries the ensemble hyperparameters. The defaults are fixed by the
// training contract: 100 trees, depth 10, seed 42.
type Config struct {
	Trees    int
	MaxDepth int
	Seed     int64
}

func DefaultConfig() Config {
	return Config{Trees: 100, MaxDepth: 10, Seed: 42}
}

// Classifier predicts ordinal flare intensity (1-5) by majority vote.
type Classifier struct {
	trees []*Node
}

// Regressor predicts the day interval to the next flare by tree averaging.
type Regressor struct {
	trees []*Node
}

// TrainClassifier fits an ensemble on the 10-feature classification matrix.
// Each split considers sqrt(p) features.
func TrainClassifier(x [][]float64, labels []int, cfg Config) *Classifier {
	y := make([]float64, len(labels))
	for i, label := range labels {
		y[i] = float64(label)
	}
	mtry := int(math.Sqrt(float64(len(x[0]))))
	if mtry < 1 {
		mtry = 1
	}
	return &Classifier{trees: fit(x, y, cfg, mtry, true)}
}

// TrainRegressor fits an ensemble on the 9-feature (lag-free) regression
// matrix. Every split considers all features.
func TrainRegressor(x [][]float64, targets []float64, cfg Config) *Regressor {
	return &Regressor{trees: fit(x, targets, cfg, len(x[0]), false)}
}

func fit(x [][]float64, y []float64, cfg Config, mtry int, classify bool) []*Node {
	rng := rand.New(rand.NewSource(cfg.Seed))
	trees := make([]*Node, cfg.Trees)

	for t := range trees {
		// Bootstrap sample, same size as the training set.
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = rng.Intn(len(x))
		}

		b := &treeBuilder{
			x:        x,
			y:        y,
			maxDepth: cfg.MaxDepth,
			mtry:     mtry,
			classify: classify,
			rng:      rng,
		}
		trees[t] = b.grow(idx, 0)
	}

	return trees
}

// Predict returns the majority class across trees, ties broken toward the
// lower class.
func (c *Classifier) Predict(features []float64) int {
	votes := make(map[int]int)
	for _, t := range c.trees {
		votes[int(t.predict(features))]++
	}

	classes := make([]int, 0, len(votes))
	for class := range votes {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	best, bestVotes := classes[0], votes[classes[0]]
	for _, class := range classes[1:] {
		if votes[class] > bestVotes {
			best, bestVotes = class, votes[class]
		}
	}
	return best
}

// Predict returns the mean prediction across trees.
func (r *Regressor) Predict(features []float64) float64 {
	sum := 0.0
	for _, t := range r.trees {
		sum += t.predict(features)
	}
	return sum / float64(len(r.trees))
}
