package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a multinomial (softmax) classifier trained with
// full-batch gradient descent and L2 regularization. With a fixed seed and
// zero-initialized weights the fit is fully deterministic.
type LogisticRegression struct {
	LearningRate float64     `json:"learning_rate"`
	MaxIter      int         `json:"max_iter"`
	L2           float64     `json:"l2"`
	Weights      [][]float64 `json:"weights"` // [class][feature+1], bias last
	Classes      int         `json:"classes"`
}

// NewLogisticRegression builds a solver with the defaults used across the
// training pipeline.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{LearningRate: 0.1, MaxIter: 1000, L2: 1e-4}
}

// Fit trains softmax weights on the given matrix and ordinal labels.
func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("logistic: matrix and labels must be non-empty and aligned")
	}
	classes := NumClasses(y)
	if classes < 2 {
		return fmt.Errorf("logistic: need at least 2 classes, got %d", classes)
	}

	n := len(X)
	d := len(X[0]) + 1 // bias column
	samples := mat.NewDense(n, d, nil)
	for i, row := range X {
		for j, v := range row {
			samples.Set(i, j, v)
		}
		samples.Set(i, d-1, 1)
	}

	weights := mat.NewDense(classes, d, nil)
	grad := mat.NewDense(classes, d, nil)
	probs := make([]float64, classes)
	logits := make([]float64, classes)

	for iter := 0; iter < lr.MaxIter; iter++ {
		grad.Zero()
		for i := 0; i < n; i++ {
			row := samples.RawRowView(i)
			for k := 0; k < classes; k++ {
				logits[k] = dot(weights.RawRowView(k), row)
			}
			softmaxInto(logits, probs)
			for k := 0; k < classes; k++ {
				delta := probs[k]
				if y[i] == k {
					delta -= 1
				}
				gradRow := grad.RawRowView(k)
				for j := 0; j < d; j++ {
					gradRow[j] += delta * row[j]
				}
			}
		}
		step := lr.LearningRate / float64(n)
		for k := 0; k < classes; k++ {
			wRow := weights.RawRowView(k)
			gRow := grad.RawRowView(k)
			for j := 0; j < d; j++ {
				penalty := 0.0
				if j != d-1 { // bias is not regularized
					penalty = lr.L2 * wRow[j]
				}
				wRow[j] -= step*gRow[j] + penalty
			}
		}
	}

	lr.Classes = classes
	lr.Weights = make([][]float64, classes)
	for k := 0; k < classes; k++ {
		lr.Weights[k] = append([]float64(nil), weights.RawRowView(k)...)
	}
	return nil
}

// Predict returns the most likely class per row.
func (lr *LogisticRegression) Predict(X [][]float64) []int {
	probs := lr.PredictProba(X)
	labels := make([]int, len(probs))
	for i, p := range probs {
		labels[i] = argmax(p)
	}
	return labels
}

// PredictProba returns softmax probabilities per row.
func (lr *LogisticRegression) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	logits := make([]float64, lr.Classes)
	for i, row := range X {
		for k := 0; k < lr.Classes; k++ {
			w := lr.Weights[k]
			sum := w[len(w)-1] // bias
			for j, v := range row {
				sum += w[j] * v
			}
			logits[k] = sum
		}
		probs := make([]float64, lr.Classes)
		softmaxInto(logits, probs)
		out[i] = probs
	}
	return out
}

// FeatureImportances reports the mean absolute coefficient per feature.
func (lr *LogisticRegression) FeatureImportances() []float64 {
	if len(lr.Weights) == 0 {
		return nil
	}
	features := len(lr.Weights[0]) - 1
	importances := make([]float64, features)
	for _, row := range lr.Weights {
		for j := 0; j < features; j++ {
			importances[j] += math.Abs(row[j])
		}
	}
	for j := range importances {
		importances[j] /= float64(len(lr.Weights))
	}
	return importances
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}

func softmaxInto(logits, probs []float64) {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	sum := 0.0
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
}
