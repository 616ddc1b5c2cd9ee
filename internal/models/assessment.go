package models

import (
	"time"

	"gorm.io/datatypes"
)

// RiskAssessment is the persisted output of one scoring pass for one
// student. Probabilities holds the per-class probability map when the model
// supports it; Mode records whether the label came from the trained
// pipeline or the rule fallback so dashboards can flag degraded output.
type RiskAssessment struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	StudentID     string            `gorm:"size:64;index;not null" json:"student_id"`
	RiskScore     float64           `gorm:"not null" json:"risk_score"`
	RiskLabel     int               `gorm:"not null" json:"risk_label"`
	RiskCategory  string            `gorm:"size:32;not null" json:"risk_category"`
	Mode          string            `gorm:"size:8;not null" json:"mode"`
	Probabilities datatypes.JSONMap `gorm:"type:json" json:"probabilities,omitempty"`
	AssessedAt    time.Time         `gorm:"index" json:"assessed_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
