package ml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	require.Equal(t, 1.0, Accuracy([]int{0, 1, 2}, []int{0, 1, 2}))
	require.Equal(t, 0.5, Accuracy([]int{0, 1, 0, 1}, []int{0, 0, 1, 1}))
	require.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestWeightedF1Perfect(t *testing.T) {
	actual := []int{0, 0, 1, 1, 2, 2}
	require.InDelta(t, 1.0, WeightedF1(actual, actual), 1e-9)
}

func TestWeightedF1Imbalanced(t *testing.T) {
	// Majority-class-only predictions score the majority F1 weighted by
	// support; minority classes contribute zero.
	actual := []int{0, 0, 0, 0, 1, 2}
	predicted := []int{0, 0, 0, 0, 0, 0}
	// class 0: precision 4/6, recall 1 -> f1 = 0.8, weight 4/6
	require.InDelta(t, 0.8*4.0/6.0, WeightedF1(predicted, actual), 1e-9)
}

func TestOvRWeightedAUCSeparable(t *testing.T) {
	actual := []int{0, 0, 1, 1}
	probabilities := [][]float64{
		{0.9, 0.1},
		{0.8, 0.2},
		{0.2, 0.8},
		{0.1, 0.9},
	}
	require.InDelta(t, 1.0, OvRWeightedAUC(probabilities, actual), 1e-9)
}

func TestOvRWeightedAUCRandom(t *testing.T) {
	actual := []int{0, 1, 0, 1}
	probabilities := [][]float64{
		{0.5, 0.5},
		{0.5, 0.5},
		{0.5, 0.5},
		{0.5, 0.5},
	}
	// All-tied scores rank at chance level.
	require.InDelta(t, 0.5, OvRWeightedAUC(probabilities, actual), 1e-9)
}

func TestOvRWeightedAUCSingleClass(t *testing.T) {
	actual := []int{1, 1, 1}
	probabilities := [][]float64{{0, 1}, {0, 1}, {0, 1}}
	require.Equal(t, 0.0, OvRWeightedAUC(probabilities, actual))
}

func TestNumClassesAndCounts(t *testing.T) {
	y := []int{0, 2, 1, 2, 2}
	require.Equal(t, 3, NumClasses(y))
	require.Equal(t, []int{1, 1, 3}, ClassCounts(y))
}
