// Package ml implements the small set of tabular classifiers, scalers and
// evaluation helpers the risk pipeline trains on. The estimators are
// intentionally plain: full-batch solvers over [][]float64 feature matrices,
// deterministic under a caller-provided seed, and JSON-serializable so a
// fitted pipeline can be persisted as a single artifact.
package ml

// Classifier is a multi-class estimator over dense feature rows.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
}

// ProbabilityEstimator is implemented by classifiers that can emit per-class
// probability vectors. Callers must type-assert for it rather than assume it.
type ProbabilityEstimator interface {
	PredictProba(X [][]float64) [][]float64
}

// ImportanceProvider is implemented by classifiers that expose per-feature
// importances (native importances or absolute linear coefficients).
type ImportanceProvider interface {
	FeatureImportances() []float64
}

// NumClasses returns the number of distinct classes in y assuming labels are
// contiguous ordinals starting at zero.
func NumClasses(y []int) int {
	max := -1
	for _, label := range y {
		if label > max {
			max = label
		}
	}
	return max + 1
}

// ClassCounts tallies label frequencies for contiguous ordinal labels.
func ClassCounts(y []int) []int {
	counts := make([]int, NumClasses(y))
	for _, label := range y {
		counts[label]++
	}
	return counts
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
