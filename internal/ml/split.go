package ml

import (
	"fmt"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions rows into train/test indices preserving class
// proportions, shuffled deterministically under the seed.
func StratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}
	rng := rand.New(rand.NewSource(seed))
	groups := byClass(y)
	for _, label := range sortedClasses(groups) {
		indices := groups[label]
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		cut := int(float64(len(indices)) * testFraction)
		if cut == 0 && len(indices) > 1 {
			cut = 1
		}
		test = append(test, indices[:cut]...)
		train = append(train, indices[cut:]...)
	}
	if len(train) == 0 || len(test) == 0 {
		return nil, nil, fmt.Errorf("not enough samples to split: %d train / %d test", len(train), len(test))
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// StratifiedKFold yields k folds of validation indices with per-class
// round-robin assignment, deterministic under the seed.
func StratifiedKFold(y []int, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("fold count must be at least 2, got %d", k)
	}
	groups := byClass(y)
	for _, label := range sortedClasses(groups) {
		if len(groups[label]) < k {
			return nil, fmt.Errorf("class %d has %d samples, fewer than %d folds", label, len(groups[label]), k)
		}
	}
	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	for _, label := range sortedClasses(groups) {
		indices := groups[label]
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		for i, idx := range indices {
			folds[i%k] = append(folds[i%k], idx)
		}
	}
	return folds, nil
}

// Select gathers the given rows/labels by index.
func Select(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		outX[i] = X[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}

func byClass(y []int) map[int][]int {
	groups := map[int][]int{}
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}
	return groups
}

// sortedClasses returns the group labels in ascending order. Map iteration
// order is random, so every seeded consumer must walk classes this way.
func sortedClasses(groups map[int][]int) []int {
	labels := make([]int, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}
