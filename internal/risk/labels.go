package risk

import "fmt"

// LabelPolicy selects how supervision targets are manufactured. Both
// policies are proxies for unavailable dropout outcomes: any metric computed
// against them measures agreement with the hand-written rule, not
// real-world predictive validity.
type LabelPolicy string

const (
	// PolicyWeighted applies the weighted v1 rule score and its thresholds.
	PolicyWeighted LabelPolicy = "weighted"
	// PolicyThreshold applies hard any-of conditions with a different
	// decision boundary than the weighted formula.
	PolicyThreshold LabelPolicy = "threshold"
)

// GenerateLabels produces one ordinal label per record under the chosen
// policy. Deterministic; identical inputs always yield identical labels.
func GenerateLabels(records []StudentRecord, policy LabelPolicy) ([]RiskLabel, error) {
	switch policy {
	case PolicyWeighted:
		labels := make([]RiskLabel, len(records))
		for i, record := range records {
			labels[i] = WeightedLabel(WeightedScore(record))
		}
		return labels, nil
	case PolicyThreshold:
		labels := make([]RiskLabel, len(records))
		for i, record := range records {
			labels[i] = thresholdLabel(record)
		}
		return labels, nil
	default:
		return nil, fmt.Errorf("unknown label policy %q", policy)
	}
}

func thresholdLabel(record StudentRecord) RiskLabel {
	record, _ = record.Normalize()

	highRisk := record.Attendance < 60 ||
		record.Marks < 40 ||
		(record.Attendance < 70 && record.Marks < 50)
	if highRisk {
		return LabelHigh
	}

	mediumRisk := record.Attendance < 75 ||
		record.Marks < 60 ||
		record.FeesStatus != FeePaid
	if mediumRisk {
		return LabelMedium
	}
	return LabelSafe
}
