package forest

import (
	"math"
	"math/rand"
	"sort"
)

const minSamplesSplit = 2

// Node is one decision node in a fitted tree. Fields are exported so trees
// serialize into the versioned artifact format.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

func (n *Node) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// treeBuilder grows one CART tree over a bootstrap sample. All randomness
// comes from the shared seeded rng, so tree construction is deterministic
// for a given dataset and seed.
type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	mtry     int
	classify bool
	rng      *rand.Rand
}

func (b *treeBuilder) grow(idx []int, depth int) *Node {
	if depth >= b.maxDepth || len(idx) < minSamplesSplit || b.pure(idx) {
		return &Node{Leaf: true, Value: b.leafValue(idx)}
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return &Node{Leaf: true, Value: b.leafValue(idx)}
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &Node{Leaf: true, Value: b.leafValue(idx)}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.grow(left, depth+1),
		Right:     b.grow(right, depth+1),
	}
}

func (b *treeBuilder) pure(idx []int) bool {
	first := b.y[idx[0]]
	for _, i := range idx[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

func (b *treeBuilder) leafValue(idx []int) float64 {
	if !b.classify {
		sum := 0.0
		for _, i := range idx {
			sum += b.y[i]
		}
		return sum / float64(len(idx))
	}

	counts := make(map[float64]int)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	classes := make([]float64, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Float64s(classes)

	// Majority vote, ties broken toward the lower class for determinism.
	best, bestCount := classes[0], counts[classes[0]]
	for _, class := range classes[1:] {
		if counts[class] > bestCount {
			best, bestCount = class, counts[class]
		}
	}
	return best
}

// bestSplit scans a random subset of features for the threshold minimizing
// gini impurity (classification) or within-node variance (regression).
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	p := len(b.x[0])
	order := b.rng.Perm(p)

	bestScore := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, f := range order[:b.mtry] {
		sorted := append([]int(nil), idx...)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		var score, threshold float64
		var ok bool
		if b.classify {
			score, threshold, ok = b.sweepGini(sorted, f)
		} else {
			score, threshold, ok = b.sweepVariance(sorted, f)
		}
		if ok && score < bestScore {
			bestScore, bestFeature, bestThreshold = score, f, threshold
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (b *treeBuilder) sweepGini(sorted []int, f int) (float64, float64, bool) {
	n := len(sorted)
	leftCounts := make(map[float64]int)
	rightCounts := make(map[float64]int)
	for _, i := range sorted {
		rightCounts[b.y[i]]++
	}

	bestScore, bestThreshold := math.Inf(1), 0.0
	found := false
	nLeft, nRight := 0, n

	for k := 0; k < n-1; k++ {
		i := sorted[k]
		leftCounts[b.y[i]]++
		rightCounts[b.y[i]]--
		nLeft++
		nRight--

		v, next := b.x[i][f], b.x[sorted[k+1]][f]
		if v == next {
			continue
		}

		score := (float64(nLeft)*gini(leftCounts, nLeft) +
			float64(nRight)*gini(rightCounts, nRight)) / float64(n)
		if score < bestScore {
			bestScore, bestThreshold = score, (v+next)/2
			found = true
		}
	}

	return bestScore, bestThreshold, found
}

func gini(counts map[float64]int, n int) float64 {
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func (b *treeBuilder) sweepVariance(sorted []int, f int) (float64, float64, bool) {
	n := len(sorted)
	var sumLeft, sumSqLeft float64
	var sumRight, sumSqRight float64
	for _, i := range sorted {
		sumRight += b.y[i]
		sumSqRight += b.y[i] * b.y[i]
	}

	bestScore, bestThreshold := math.Inf(1), 0.0
	found := false

	for k := 0; k < n-1; k++ {
		i := sorted[k]
		sumLeft += b.y[i]
		sumSqLeft += b.y[i] * b.y[i]
		sumRight -= b.y[i]
		sumSqRight -= b.y[i] * b.y[i]

		v, next := b.x[i][f], b.x[sorted[k+1]][f]
		if v == next {
			continue
		}

		nLeft, nRight := float64(k+1), float64(n-k-1)
		sseLeft := sumSqLeft - sumLeft*sumLeft/nLeft
		sseRight := sumSqRight - sumRight*sumRight/nRight
		score := sseLeft + sseRight
		if score < bestScore {
			bestScore, bestThreshold = score, (v+next)/2
			found = true
		}
	}

	return bestScore, bestThreshold, found
}
