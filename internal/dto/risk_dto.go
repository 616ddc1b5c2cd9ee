package dto

import "time"

// RiskPredictionResponse is the per-record scoring contract consumed by the
// dashboards. Probabilities is null whenever the serving model cannot
// produce them (including rule-fallback mode).
type RiskPredictionResponse struct {
	StudentID     string    `json:"student_id"`
	Name          string    `json:"name"`
	RiskScore     float64   `json:"risk_score"`
	RiskLabel     int       `json:"risk_label"`
	RiskCategory  string    `json:"risk_category"`
	RiskEmoji     string    `json:"risk_emoji"`
	Probabilities []float64 `json:"probabilities,omitempty"`
	Mode          string    `json:"mode"`
}

// FourLevelPredictionResponse is the finer four-level scheme output.
type FourLevelPredictionResponse struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	RuleScore float64 `json:"rule_score"`
	MLVerdict bool    `json:"ml_high_risk"`
	FinalRisk string  `json:"final_risk"`
	Mode      string  `json:"mode"`
}

// AssessmentSummaryResponse aggregates one scoring pass over the cohort.
type AssessmentSummaryResponse struct {
	Total       int                      `json:"total"`
	Mode        string                   `json:"mode"`
	Distributed map[string]int           `json:"risk_distribution"`
	Predictions []RiskPredictionResponse `json:"predictions"`
	AssessedAt  time.Time                `json:"assessed_at"`
}

// AdHocScoreRequest scores records supplied inline without persisting them.
type AdHocScoreRequest struct {
	Records []AdHocRecord `json:"records" validate:"required,min=1,max=1000,dive"`
}

// AdHocRecord is one inline scoring input.
type AdHocRecord struct {
	StudentID            string  `json:"student_id" validate:"required"`
	Name                 string  `json:"name"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	MarksPercentage      float64 `json:"marks_percentage"`
	FeesStatus           string  `json:"fees_status" validate:"required"`
}

// AssessmentRecordResponse is one persisted scoring result for a student.
type AssessmentRecordResponse struct {
	StudentID     string             `json:"student_id"`
	RiskScore     float64            `json:"risk_score"`
	RiskLabel     int                `json:"risk_label"`
	RiskCategory  string             `json:"risk_category"`
	Mode          string             `json:"mode"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	AssessedAt    time.Time          `json:"assessed_at"`
}

// FeatureImportanceResponse is one row of the ranked importance table.
type FeatureImportanceResponse struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}
