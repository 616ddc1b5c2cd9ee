package models

import "time"

// Student is one learner tracked by the risk dashboards. Percentages are
// stored clamped to [0,100]; FeesStatus holds the normalized enum value.
type Student struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	StudentID            string    `gorm:"size:64;uniqueIndex;not null" json:"student_id"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	AttendancePercentage float64   `gorm:"not null" json:"attendance_percentage"`
	MarksPercentage      float64   `gorm:"not null" json:"marks_percentage"`
	FeesStatus           string    `gorm:"size:16;not null;default:pending" json:"fees_status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
