package anomaly

import (
	"fmt"
	"math"
	"math/rand"
)

// IsolationForest isolates rows with random axis-aligned splits. Anomalous
// rows separate from the bulk in few splits, so a short average path length
// across trees means a high anomaly score.
type IsolationForest struct {
	trees      int
	sampleSize int
	seed       int64

	roots []*isoNode
	// c(sampleSize), the expected path length of an unsuccessful BST
	// search, used to normalize path lengths.
	norm float64
}

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode

	// leaf fields
	leaf bool
	size int
}

func NewIsolationForest(trees, sampleSize int, seed int64) *IsolationForest {
	return &IsolationForest{trees: trees, sampleSize: sampleSize, seed: seed}
}

func (f *IsolationForest) Name() string { return "isolation_forest" }

func (f *IsolationForest) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("isolation forest: empty training matrix")
	}

	sample := f.sampleSize
	if sample <= 0 || sample > len(X) {
		sample = len(X)
	}
	maxDepth := int(math.Ceil(math.Log2(math.Max(float64(sample), 2))))

	rng := rand.New(rand.NewSource(f.seed))
	f.roots = make([]*isoNode, f.trees)
	for t := 0; t < f.trees; t++ {
		idx := rng.Perm(len(X))[:sample]
		f.roots[t] = buildIsoTree(X, idx, 0, maxDepth, rng)
	}
	f.norm = avgPathLength(sample)
	return nil
}

func buildIsoTree(X [][]float64, idx []int, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if depth >= maxDepth || len(idx) <= 1 {
		return &isoNode{leaf: true, size: len(idx)}
	}

	feature := rng.Intn(len(X[0]))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		v := X[i][feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isoNode{leaf: true, size: len(idx)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if X[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildIsoTree(X, left, depth+1, maxDepth, rng),
		right:   buildIsoTree(X, right, depth+1, maxDepth, rng),
	}
}

// Score returns the standard isolation score 2^(-E[h(x)]/c(n)) in (0, 1],
// higher for rows that isolate quickly.
func (f *IsolationForest) Score(X [][]float64) []float64 {
	scores := make([]float64, len(X))
	for i, row := range X {
		total := 0.0
		for _, root := range f.roots {
			total += pathLength(root, row, 0)
		}
		avg := total / float64(len(f.roots))
		scores[i] = math.Pow(2, -avg/f.norm)
	}
	return scores
}

func pathLength(n *isoNode, row []float64, depth int) float64 {
	if n.leaf {
		return float64(depth) + avgPathLength(n.size)
	}
	if row[n.feature] < n.split {
		return pathLength(n.left, row, depth+1)
	}
	return pathLength(n.right, row, depth+1)
}

// avgPathLength is c(n): the average path length of an unsuccessful search
// in a binary search tree of n nodes.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649015329
	return 2*h - 2*float64(n-1)/float64(n)
}
