// Package anomaly flags feature-space observations that sit far outside
// the fitted historical distribution.
package anomaly

import (
	"math"
	"math/rand"
)

// isolationForest implements the classic isolation forest: anomalous
// points isolate in fewer random splits, yielding shorter path lengths.
type isolationForest struct {
	trees     int
	subsample int
	seed      int64
	roots     []*itNode
	sampleLen int
}

type itNode struct {
	feature     int
	threshold   float64
	left, right *itNode
	size        int
	external    bool
}

func newIsolationForest() *isolationForest {
	return &isolationForest{trees: 128, subsample: 256, seed: 42}
}

func (f *isolationForest) fit(rows [][]float64) {
	rng := rand.New(rand.NewSource(f.seed))
	n := len(rows)
	sub := f.subsample
	if sub > n {
		sub = n
	}
	f.sampleLen = sub
	maxDepth := int(math.Ceil(math.Log2(float64(sub))))

	f.roots = make([]*itNode, 0, f.trees)
	for t := 0; t < f.trees; t++ {
		idx := rng.Perm(n)[:sub]
		sample := make([][]float64, sub)
		for i, j := range idx {
			sample[i] = rows[j]
		}
		f.roots = append(f.roots, buildITree(sample, 0, maxDepth, rng))
	}
}

// score returns the anomaly score in (0, 1]; values near 1 are outliers.
func (f *isolationForest) score(row []float64) float64 {
	if len(f.roots) == 0 {
		return 0
	}
	var sum float64
	for _, root := range f.roots {
		sum += pathLength(root, row, 0)
	}
	avg := sum / float64(len(f.roots))
	return math.Pow(2, -avg/c(f.sampleLen))
}

func buildITree(rows [][]float64, depth, maxDepth int, rng *rand.Rand) *itNode {
	if depth >= maxDepth || len(rows) <= 1 {
		return &itNode{external: true, size: len(rows)}
	}
	d := len(rows[0])
	feature := rng.Intn(d)

	lo, hi := rows[0][feature], rows[0][feature]
	for _, r := range rows {
		if r[feature] < lo {
			lo = r[feature]
		}
		if r[feature] > hi {
			hi = r[feature]
		}
	}
	if lo == hi {
		return &itNode{external: true, size: len(rows)}
	}
	threshold := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, r := range rows {
		if r[feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &itNode{
		feature:   feature,
		threshold: threshold,
		left:      buildITree(left, depth+1, maxDepth, rng),
		right:     buildITree(right, depth+1, maxDepth, rng),
	}
}

func pathLength(n *itNode, row []float64, depth int) float64 {
	if n.external {
		return float64(depth) + c(n.size)
	}
	if row[n.feature] < n.threshold {
		return pathLength(n.left, row, depth+1)
	}
	return pathLength(n.right, row, depth+1)
}

// c is the average unsuccessful-search path length of a BST of size n,
// the standard normalizer from the isolation forest paper.
func c(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}
