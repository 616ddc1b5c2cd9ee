package ml

import (
	"fmt"
	"math"
)

// GradientBoosting is a multi-class gradient boosted tree ensemble: each
// round fits one shallow regression tree per class to the softmax residuals.
type GradientBoosting struct {
	NumRounds    int       `json:"num_rounds"`
	LearningRate float64   `json:"learning_rate"`
	MaxDepth     int       `json:"max_depth"`
	Base         []float64 `json:"base"` // initial per-class log prior
	// Rounds[r][k] is the regression tree for class k at round r.
	Rounds  [][]*regressionTree `json:"rounds"`
	Classes int                 `json:"classes"`
}

// NewGradientBoosting builds an ensemble with the defaults used by the
// training pipeline.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NumRounds: 50, LearningRate: 0.1, MaxDepth: 3}
}

// Fit boosts regression trees against softmax residuals.
func (g *GradientBoosting) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("gradient boosting: matrix and labels must be non-empty and aligned")
	}
	g.Classes = NumClasses(y)
	if g.Classes < 2 {
		return fmt.Errorf("gradient boosting: need at least 2 classes, got %d", g.Classes)
	}

	n := len(X)
	counts := ClassCounts(y)
	g.Base = make([]float64, g.Classes)
	for k, c := range counts {
		p := float64(c) / float64(n)
		if p == 0 {
			p = 1e-6
		}
		g.Base[k] = math.Log(p)
	}

	// scores[i][k] is the running additive score for sample i, class k.
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = append([]float64(nil), g.Base...)
	}

	probs := make([]float64, g.Classes)
	residual := make([]float64, n)
	g.Rounds = make([][]*regressionTree, 0, g.NumRounds)

	for round := 0; round < g.NumRounds; round++ {
		trees := make([]*regressionTree, g.Classes)
		for k := 0; k < g.Classes; k++ {
			for i := 0; i < n; i++ {
				softmaxInto(scores[i], probs)
				target := 0.0
				if y[i] == k {
					target = 1
				}
				residual[i] = target - probs[k]
			}
			tree := &regressionTree{maxDepth: g.MaxDepth, minSamples: 4}
			tree.fit(X, residual)
			trees[k] = tree
			for i := 0; i < n; i++ {
				scores[i][k] += g.LearningRate * tree.predict(X[i])
			}
		}
		g.Rounds = append(g.Rounds, trees)
	}
	return nil
}

// Predict returns the highest-scoring class per row.
func (g *GradientBoosting) Predict(X [][]float64) []int {
	probs := g.PredictProba(X)
	labels := make([]int, len(probs))
	for i, p := range probs {
		labels[i] = argmax(p)
	}
	return labels
}

// PredictProba returns softmax probabilities over the boosted scores.
func (g *GradientBoosting) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		scores := append([]float64(nil), g.Base...)
		for _, trees := range g.Rounds {
			for k, tree := range trees {
				scores[k] += g.LearningRate * tree.predict(row)
			}
		}
		probs := make([]float64, g.Classes)
		softmaxInto(scores, probs)
		out[i] = probs
	}
	return out
}

// regressionTree is a small variance-reduction CART used only inside the
// boosting ensemble.
type regressionTree struct {
	maxDepth   int
	minSamples int
	Root       *regNode `json:"root"`
}

type regNode struct {
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Left      *regNode `json:"left,omitempty"`
	Right     *regNode `json:"right,omitempty"`
	Value     float64  `json:"value"`
	Leaf      bool     `json:"leaf"`
}

func (t *regressionTree) fit(X [][]float64, target []float64) {
	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	t.Root = t.grow(X, target, indices, 0)
}

func (t *regressionTree) grow(X [][]float64, target []float64, indices []int, depth int) *regNode {
	mean := 0.0
	for _, i := range indices {
		mean += target[i]
	}
	mean /= float64(len(indices))

	if depth >= t.maxDepth || len(indices) < t.minSamples {
		return &regNode{Leaf: true, Value: mean}
	}

	feature, threshold, ok := bestRegressionSplit(X, target, indices)
	if !ok {
		return &regNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &regNode{Leaf: true, Value: mean}
	}

	return &regNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, target, left, depth+1),
		Right:     t.grow(X, target, right, depth+1),
	}
}

func bestRegressionSplit(X [][]float64, target []float64, indices []int) (int, float64, bool) {
	total := float64(len(indices))
	sumAll := 0.0
	for _, i := range indices {
		sumAll += target[i]
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.Inf(-1)

	for feature := 0; feature < len(X[indices[0]]); feature++ {
		ordered := append([]int(nil), indices...)
		sortByFeature(ordered, X, feature)

		sumLeft := 0.0
		for pos := 1; pos < len(ordered); pos++ {
			sumLeft += target[ordered[pos-1]]
			prev := X[ordered[pos-1]][feature]
			curr := X[ordered[pos]][feature]
			if prev == curr {
				continue
			}
			nLeft := float64(pos)
			nRight := total - nLeft
			sumRight := sumAll - sumLeft
			// Maximizing between-group sum of squares == minimizing variance.
			score := sumLeft*sumLeft/nLeft + sumRight*sumRight/nRight
			if score > bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = (prev + curr) / 2
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if row[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}
