// Package patterns trains an ensemble classifier over the feature matrix
// and promotes the calendar features it relies on into findings.
package patterns

import (
	"math"
	"math/rand"

	"SeasonEdge/internal/domain/models"
)

// Forest is a bagged ensemble of CART trees trained on a fixed seed so
// repeated runs over identical input produce identical output.
type Forest struct {
	Trees       int
	MaxDepth    int
	MinLeaf     int
	Seed        int64
	roots       []*node
	importances []float64
}

type node struct {
	feature     int
	threshold   float64
	left, right *node
	prob        float64 // leaf: positive-class probability
	leaf        bool
}

func NewForest() *Forest {
	return &Forest{Trees: 50, MaxDepth: 6, MinLeaf: 5, Seed: 42}
}

// Fit trains the ensemble. Each tree sees a bootstrap sample and a
// random sqrt(d) feature subset at every split.
func (f *Forest) Fit(rows [][]float64, labels []int) error {
	if len(rows) == 0 || len(rows) != len(labels) {
		return models.ErrModelTraining
	}
	d := len(rows[0])
	rng := rand.New(rand.NewSource(f.Seed))
	f.roots = make([]*node, 0, f.Trees)
	f.importances = make([]float64, d)

	mtry := int(math.Ceil(math.Sqrt(float64(d))))
	for t := 0; t < f.Trees; t++ {
		idx := make([]int, len(rows))
		for i := range idx {
			idx[i] = rng.Intn(len(rows))
		}
		f.roots = append(f.roots, f.grow(rows, labels, idx, 0, mtry, rng))
	}

	total := 0.0
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return nil
}

// Predict returns the ensemble's positive-class probability for one row.
func (f *Forest) Predict(row []float64) float64 {
	if len(f.roots) == 0 {
		return 0.5
	}
	var sum float64
	for _, root := range f.roots {
		sum += traverse(root, row)
	}
	return sum / float64(len(f.roots))
}

// FeatureImportances reports gini-impurity-decrease weights, normalized
// to sum to one.
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

func traverse(n *node, row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

func (f *Forest) grow(rows [][]float64, labels []int, idx []int, depth, mtry int, rng *rand.Rand) *node {
	pos := 0
	for _, i := range idx {
		pos += labels[i]
	}
	prob := float64(pos) / float64(len(idx))

	if depth >= f.MaxDepth || len(idx) < 2*f.MinLeaf || pos == 0 || pos == len(idx) {
		return &node{leaf: true, prob: prob}
	}

	feature, threshold, gain := f.bestSplit(rows, labels, idx, mtry, rng)
	if feature < 0 {
		return &node{leaf: true, prob: prob}
	}

	var left, right []int
	for _, i := range idx {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < f.MinLeaf || len(right) < f.MinLeaf {
		return &node{leaf: true, prob: prob}
	}

	f.importances[feature] += gain * float64(len(idx))
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      f.grow(rows, labels, left, depth+1, mtry, rng),
		right:     f.grow(rows, labels, right, depth+1, mtry, rng),
	}
}

func (f *Forest) bestSplit(rows [][]float64, labels []int, idx []int, mtry int, rng *rand.Rand) (feature int, threshold, gain float64) {
	d := len(rows[0])
	parent := gini(labels, idx)
	feature = -1

	perm := rng.Perm(d)
	for _, fi := range perm[:mtry] {
		// candidate thresholds sampled from the observed values
		for trial := 0; trial < 10; trial++ {
			thr := rows[idx[rng.Intn(len(idx))]][fi]
			var lPos, lN, rPos, rN int
			for _, i := range idx {
				if rows[i][fi] <= thr {
					lN++
					lPos += labels[i]
				} else {
					rN++
					rPos += labels[i]
				}
			}
			if lN < f.MinLeaf || rN < f.MinLeaf {
				continue
			}
			w := float64(lN) / float64(lN+rN)
			g := parent - w*giniCounts(lPos, lN) - (1-w)*giniCounts(rPos, rN)
			if g > gain {
				gain, feature, threshold = g, fi, thr
			}
		}
	}
	return feature, threshold, gain
}

func gini(labels []int, idx []int) float64 {
	pos := 0
	for _, i := range idx {
		pos += labels[i]
	}
	return giniCounts(pos, len(idx))
}

func giniCounts(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
