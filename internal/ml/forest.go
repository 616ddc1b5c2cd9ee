package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomForest bags CART trees over bootstrap samples with sqrt-m feature
// subsampling at every split.
type RandomForest struct {
	NumTrees int             `json:"num_trees"`
	MaxDepth int             `json:"max_depth"`
	Seed     int64           `json:"seed"`
	Trees    []*DecisionTree `json:"trees"`
	Classes  int             `json:"classes"`
}

// NewRandomForest builds a forest with the 100-tree default used by the
// training pipeline.
func NewRandomForest() *RandomForest {
	return &RandomForest{NumTrees: 100, MaxDepth: 10, Seed: 42}
}

// Fit grows every tree on its own bootstrap sample.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("random forest: matrix and labels must be non-empty and aligned")
	}
	f.Classes = NumClasses(y)
	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*DecisionTree, 0, f.NumTrees)
	n := len(X)
	sampleX := make([][]float64, n)
	sampleY := make([]int, n)

	for t := 0; t < f.NumTrees; t++ {
		for i := 0; i < n; i++ {
			pick := rng.Intn(n)
			sampleX[i] = X[pick]
			sampleY[i] = y[pick]
		}
		// Bootstrap can miss a class entirely; pad counts via the shared
		// class count so leaf distributions stay aligned.
		tree := &DecisionTree{
			MaxDepth:        f.MaxDepth,
			MinSamplesSplit: 2,
			MaxFeatures:     maxFeatures,
			Seed:            rng.Int63(),
		}
		if err := tree.Fit(sampleX, sampleY); err != nil {
			return fmt.Errorf("random forest: tree %d: %w", t, err)
		}
		tree.Classes = f.Classes
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

// Predict returns the probability-averaged majority class per row.
func (f *RandomForest) Predict(X [][]float64) []int {
	probs := f.PredictProba(X)
	labels := make([]int, len(probs))
	for i, p := range probs {
		labels[i] = argmax(p)
	}
	return labels
}

// PredictProba averages leaf distributions across all trees.
func (f *RandomForest) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		acc := make([]float64, f.Classes)
		for _, tree := range f.Trees {
			dist := leafDistribution(tree.Root, row, f.Classes)
			for k, p := range dist {
				acc[k] += p
			}
		}
		for k := range acc {
			acc[k] /= float64(len(f.Trees))
		}
		out[i] = acc
	}
	return out
}

// FeatureImportances averages normalized impurity decrease across trees.
func (f *RandomForest) FeatureImportances() []float64 {
	var acc []float64
	counted := 0
	for _, tree := range f.Trees {
		imp := tree.FeatureImportances()
		if imp == nil {
			continue
		}
		if acc == nil {
			acc = make([]float64, len(imp))
		}
		for j, v := range imp {
			acc[j] += v
		}
		counted++
	}
	if counted == 0 {
		return nil
	}
	for j := range acc {
		acc[j] /= float64(counted)
	}
	return acc
}
