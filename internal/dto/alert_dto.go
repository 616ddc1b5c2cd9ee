package dto

import "time"

// AlertResponse is the per-student alert stored for the student and
// counselor dashboards.
type AlertResponse struct {
	StudentID         string    `json:"student_id"`
	StudentName       string    `json:"student_name"`
	RiskLevel         string    `json:"risk_level"`
	Message           string    `json:"alert_message"`
	CounselorAssigned bool      `json:"counselor_assigned"`
	UpdatedAt         time.Time `json:"last_updated"`
}

// RiskListsResponse groups students by risk band for the counselor view.
type RiskListsResponse struct {
	HighRisk    []RiskPredictionResponse `json:"high_risk"`
	MediumRisk  []RiskPredictionResponse `json:"medium_risk"`
	LowRisk     []RiskPredictionResponse `json:"low_risk"`
	LastUpdated *time.Time               `json:"last_updated"`
}
