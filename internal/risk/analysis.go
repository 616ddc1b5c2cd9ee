package risk

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MetricStats summarizes one numeric column of a cohort.
type MetricStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// CohortAnalysis is the aggregate report the dashboards render.
type CohortAnalysis struct {
	TotalStudents        int            `json:"total_students"`
	AttendanceStats      MetricStats    `json:"attendance_stats"`
	MarksStats           MetricStats    `json:"marks_stats"`
	FeesBreakdown        map[string]int `json:"fees_breakdown"`
	RiskDistribution     map[string]int `json:"risk_distribution"`
	HighRiskPercentage   float64        `json:"high_risk_percentage"`
	AttendanceCategories map[string]int `json:"attendance_categories"`
	MarksCategories      map[string]int `json:"marks_categories"`
	TopRiskFactors       []RiskFactor   `json:"top_risk_factors"`
}

// RiskFactor counts how many students trip one deficiency condition.
type RiskFactor struct {
	Factor string `json:"factor"`
	Count  int    `json:"count"`
}

// AnalyzeCohort computes the aggregate statistics for a scored batch.
// Predictions must align with records by index.
func AnalyzeCohort(records []StudentRecord, predictions []Prediction) CohortAnalysis {
	analysis := CohortAnalysis{
		TotalStudents:        len(records),
		FeesBreakdown:        map[string]int{},
		RiskDistribution:     map[string]int{},
		AttendanceCategories: map[string]int{},
		MarksCategories:      map[string]int{},
	}
	if len(records) == 0 {
		return analysis
	}

	attendance := make([]float64, len(records))
	marks := make([]float64, len(records))
	factors := map[string]int{}
	for i, record := range records {
		normalized, _ := record.Normalize()
		attendance[i] = normalized.Attendance
		marks[i] = normalized.Marks
		analysis.FeesBreakdown[string(normalized.FeesStatus)]++
		analysis.AttendanceCategories[AttendanceCategory(normalized.Attendance)]++
		analysis.MarksCategories[MarksCategory(normalized.Marks)]++

		if normalized.Attendance < 75 {
			factors["low_attendance"]++
		}
		if normalized.Marks < 60 {
			factors["low_marks"]++
		}
		if normalized.FeesStatus != FeePaid {
			factors["fees_not_paid"]++
		}
	}
	for factor, count := range factors {
		analysis.TopRiskFactors = append(analysis.TopRiskFactors, RiskFactor{Factor: factor, Count: count})
	}
	sort.Slice(analysis.TopRiskFactors, func(i, j int) bool {
		if analysis.TopRiskFactors[i].Count != analysis.TopRiskFactors[j].Count {
			return analysis.TopRiskFactors[i].Count > analysis.TopRiskFactors[j].Count
		}
		return analysis.TopRiskFactors[i].Factor < analysis.TopRiskFactors[j].Factor
	})
	analysis.AttendanceStats = describe(attendance)
	analysis.MarksStats = describe(marks)

	highRisk := 0
	for _, prediction := range predictions {
		analysis.RiskDistribution[prediction.RiskCategory]++
		if prediction.RiskLabel == LabelHigh {
			highRisk++
		}
	}
	if len(predictions) > 0 {
		analysis.HighRiskPercentage = float64(highRisk) / float64(len(predictions)) * 100
	}
	return analysis
}

func describe(values []float64) MetricStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	return MetricStats{
		Mean:   mean,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Std:    std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}
