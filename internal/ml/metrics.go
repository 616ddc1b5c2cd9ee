package ml

import "sort"

// Accuracy is the fraction of exact label matches.
func Accuracy(predicted, actual []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	hits := 0
	for i, p := range predicted {
		if p == actual[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(actual))
}

// WeightedF1 computes the support-weighted mean of per-class F1 scores.
func WeightedF1(predicted, actual []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	classes := NumClasses(actual)
	if c := NumClasses(predicted); c > classes {
		classes = c
	}

	total := 0.0
	weighted := 0.0
	for k := 0; k < classes; k++ {
		tp, fp, fn := 0.0, 0.0, 0.0
		support := 0.0
		for i := range actual {
			if actual[i] == k {
				support++
				if predicted[i] == k {
					tp++
				} else {
					fn++
				}
			} else if predicted[i] == k {
				fp++
			}
		}
		if support == 0 {
			continue
		}
		f1 := 0.0
		if tp > 0 {
			precision := tp / (tp + fp)
			recall := tp / (tp + fn)
			f1 = 2 * precision * recall / (precision + recall)
		}
		weighted += f1 * support
		total += support
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// OvRWeightedAUC computes the one-vs-rest ROC AUC averaged over classes,
// weighted by class support. Classes absent from actual are skipped; if no
// class is scorable the result is zero.
func OvRWeightedAUC(probabilities [][]float64, actual []int) float64 {
	if len(actual) == 0 || len(probabilities) == 0 {
		return 0
	}
	classes := len(probabilities[0])
	total := 0.0
	weighted := 0.0
	for k := 0; k < classes; k++ {
		support := 0.0
		for _, label := range actual {
			if label == k {
				support++
			}
		}
		if support == 0 || support == float64(len(actual)) {
			continue
		}
		auc := binaryAUC(probabilities, actual, k)
		weighted += auc * support
		total += support
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// binaryAUC ranks scores for class k and computes the Mann-Whitney statistic,
// with tie handling via midranks.
func binaryAUC(probabilities [][]float64, actual []int, k int) float64 {
	type scored struct {
		score    float64
		positive bool
	}
	items := make([]scored, len(actual))
	positives := 0.0
	for i, label := range actual {
		items[i] = scored{score: probabilities[i][k], positive: label == k}
		if label == k {
			positives++
		}
	}
	negatives := float64(len(actual)) - positives

	sort.Slice(items, func(i, j int) bool { return items[i].score < items[j].score })

	rankSum := 0.0
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].score == items[i].score {
			j++
		}
		midrank := float64(i+j+1) / 2 // ranks are 1-based
		for t := i; t < j; t++ {
			if items[t].positive {
				rankSum += midrank
			}
		}
		i = j
	}
	return (rankSum - positives*(positives+1)/2) / (positives * negatives)
}
