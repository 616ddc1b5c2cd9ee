package risk

// RiskLabel is the ordinal risk class shared by the rule scorers, the label
// generator and the trained classifier.
type RiskLabel int

const (
	LabelSafe   RiskLabel = 0
	LabelMedium RiskLabel = 1
	LabelHigh   RiskLabel = 2
)

// Weighted rule thresholds. These are part of the external contract: the
// dashboards hard-code matching color bands.
const (
	WeightedHighThreshold   = 0.6
	WeightedMediumThreshold = 0.3
)

// FourLevel is the finer category scheme produced by the v2 rule scale.
type FourLevel string

const (
	FourLevelLow      FourLevel = "Low Risk"
	FourLevelMedium   FourLevel = "Medium Risk"
	FourLevelHigh     FourLevel = "High Risk"
	FourLevelVeryHigh FourLevel = "Very High Risk"
)

// WeightedScore is the v1 rule scorer: a deterministic weighted accumulation
// over attendance/marks/fee deficiencies on a [0,1] scale. Always available,
// no training required.
func WeightedScore(record StudentRecord) float64 {
	record, _ = record.Normalize()
	score := 0.0

	switch {
	case record.Attendance < 60:
		score += 0.4
	case record.Attendance < 75:
		score += 0.2
	case record.Attendance < 85:
		score += 0.1
	}

	switch {
	case record.Marks < 40:
		score += 0.4
	case record.Marks < 60:
		score += 0.2
	case record.Marks < 75:
		score += 0.1
	}

	if record.FeesStatus != FeePaid {
		score += 0.2
	}
	return score
}

// WeightedLabel maps a weighted v1 score onto the ordinal risk classes.
func WeightedLabel(score float64) RiskLabel {
	switch {
	case score >= WeightedHighThreshold:
		return LabelHigh
	case score >= WeightedMediumThreshold:
		return LabelMedium
	default:
		return LabelSafe
	}
}

// FourLevelScore is the v2 rule scorer: a coarser point accumulation on a
// [0,10] scale with different cut points than the v1 formula. The two scales
// evolved independently and are deliberately not reconciled.
func FourLevelScore(record StudentRecord) float64 {
	record, _ = record.Normalize()
	score := 0.0

	switch {
	case record.Attendance < 70:
		score += 4
	case record.Attendance < 80:
		score += 2
	}

	switch {
	case record.Marks < 40:
		score += 3
	case record.Marks < 60:
		score += 1.5
	}

	switch record.FeesStatus {
	case FeeOverdue:
		score += 3
	case FeePending:
		score += 1.5
	}
	return score
}

// CombineFourLevel merges a v2 rule score with a binary model verdict
// (mlHighRisk reports whether the classifier flagged the student) into the
// four-level category.
func CombineFourLevel(score float64, mlHighRisk bool) FourLevel {
	switch {
	case score >= 7 && mlHighRisk:
		return FourLevelVeryHigh
	case score >= 6:
		return FourLevelHigh
	case score >= 3 || mlHighRisk:
		return FourLevelMedium
	default:
		return FourLevelLow
	}
}

// Category maps an ordinal label to its display name and glyph.
func Category(label RiskLabel) (string, string) {
	switch label {
	case LabelHigh:
		return "High Risk", "🔴"
	case LabelMedium:
		return "Medium Risk", "🟠"
	default:
		return "Safe", "🟢"
	}
}

// Categories maps labels element-wise, mirroring Category.
func Categories(labels []RiskLabel) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i], _ = Category(label)
	}
	return out
}
