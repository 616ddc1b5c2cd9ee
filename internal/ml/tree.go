package ml

import (
	"fmt"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted CART tree. Leaf nodes carry the class
// distribution observed during training.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Counts    []float64 `json:"counts,omitempty"`
	Leaf      bool      `json:"leaf"`
}

// DecisionTree is a CART classifier splitting on Gini impurity.
type DecisionTree struct {
	MaxDepth        int       `json:"max_depth"`
	MinSamplesSplit int       `json:"min_samples_split"`
	MaxFeatures     int       `json:"max_features"` // 0 means all features
	Seed            int64     `json:"seed"`
	Root            *TreeNode `json:"root"`
	Classes         int       `json:"classes"`

	rng        *rand.Rand
	importance []float64
}

// NewDecisionTree builds a tree with sensible defaults for standalone use.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 8, MinSamplesSplit: 2, Seed: 42}
}

// Fit grows the tree on the given samples.
func (t *DecisionTree) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("decision tree: matrix and labels must be non-empty and aligned")
	}
	t.Classes = NumClasses(y)
	t.rng = rand.New(rand.NewSource(t.Seed))
	t.importance = make([]float64, len(X[0]))

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	t.Root = t.grow(X, y, indices, 0)
	return nil
}

func (t *DecisionTree) grow(X [][]float64, y []int, indices []int, depth int) *TreeNode {
	counts := make([]float64, t.Classes)
	for _, i := range indices {
		counts[y[i]]++
	}

	if depth >= t.MaxDepth || len(indices) < t.MinSamplesSplit || isPure(counts) {
		return &TreeNode{Leaf: true, Counts: counts}
	}

	feature, threshold, gain := t.bestSplit(X, y, indices, counts)
	if feature < 0 {
		return &TreeNode{Leaf: true, Counts: counts}
	}
	t.importance[feature] += gain * float64(len(indices))

	var left, right []int
	for _, i := range indices {
		if X[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Leaf: true, Counts: counts}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, y, left, depth+1),
		Right:     t.grow(X, y, right, depth+1),
	}
}

func (t *DecisionTree) bestSplit(X [][]float64, y []int, indices []int, parentCounts []float64) (int, float64, float64) {
	total := float64(len(indices))
	parentGini := gini(parentCounts, total)

	features := t.candidateFeatures(len(X[0]))
	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 1e-9

	leftCounts := make([]float64, t.Classes)
	rightCounts := make([]float64, t.Classes)

	for _, feature := range features {
		ordered := append([]int(nil), indices...)
		sortByFeature(ordered, X, feature)

		for i := range leftCounts {
			leftCounts[i] = 0
		}
		copy(rightCounts, parentCounts)

		for pos := 1; pos < len(ordered); pos++ {
			label := y[ordered[pos-1]]
			leftCounts[label]++
			rightCounts[label]--

			prev := X[ordered[pos-1]][feature]
			curr := X[ordered[pos]][feature]
			if prev == curr {
				continue
			}

			nLeft := float64(pos)
			nRight := total - nLeft
			gain := parentGini - (nLeft/total)*gini(leftCounts, nLeft) - (nRight/total)*gini(rightCounts, nRight)
			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = (prev + curr) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func (t *DecisionTree) candidateFeatures(total int) []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= total {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := t.rng.Perm(total)
	return perm[:t.MaxFeatures]
}

// Predict returns the majority class of the reached leaf per row.
func (t *DecisionTree) Predict(X [][]float64) []int {
	probs := t.PredictProba(X)
	labels := make([]int, len(probs))
	for i, p := range probs {
		labels[i] = argmax(p)
	}
	return labels
}

// PredictProba returns the normalized leaf class distribution per row.
func (t *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = leafDistribution(t.Root, row, t.Classes)
	}
	return out
}

// FeatureImportances reports accumulated impurity decrease per feature,
// normalized to sum to one.
func (t *DecisionTree) FeatureImportances() []float64 {
	if t.importance == nil {
		return nil
	}
	sum := 0.0
	for _, v := range t.importance {
		sum += v
	}
	if sum == 0 {
		return append([]float64(nil), t.importance...)
	}
	out := make([]float64, len(t.importance))
	for i, v := range t.importance {
		out[i] = v / sum
	}
	return out
}

func leafDistribution(node *TreeNode, row []float64, classes int) []float64 {
	for !node.Leaf {
		if row[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	probs := make([]float64, classes)
	total := 0.0
	for _, c := range node.Counts {
		total += c
	}
	if total == 0 {
		return probs
	}
	for i, c := range node.Counts {
		probs[i] = c / total
	}
	return probs
}

func gini(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func sortByFeature(indices []int, X [][]float64, feature int) {
	sort.Slice(indices, func(a, b int) bool { return X[indices[a]][feature] < X[indices[b]][feature] })
}
