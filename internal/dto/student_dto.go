package dto

import "time"

// StudentCreateRequest adds or updates one student record manually.
type StudentCreateRequest struct {
	StudentID            string  `json:"student_id" validate:"required,max=64"`
	Name                 string  `json:"name" validate:"required,max=255"`
	AttendancePercentage float64 `json:"attendance_percentage" validate:"min=-1000,max=1000"`
	MarksPercentage      float64 `json:"marks_percentage" validate:"min=-1000,max=1000"`
	FeesStatus           string  `json:"fees_status" validate:"required"`
}

// StudentResponse is the API projection of a stored student.
type StudentResponse struct {
	StudentID            string    `json:"student_id"`
	Name                 string    `json:"name"`
	AttendancePercentage float64   `json:"attendance_percentage"`
	MarksPercentage      float64   `json:"marks_percentage"`
	FeesStatus           string    `json:"fees_status"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// UploadSummaryResponse reports the outcome of a CSV ingestion.
type UploadSummaryResponse struct {
	TotalRows        int              `json:"total_rows"`
	Accepted         int              `json:"accepted"`
	RejectedRows     []RowErrorDetail `json:"rejected_rows,omitempty"`
	ClampedValues    int              `json:"clamped_values"`
	UnknownFeeStatus int              `json:"unknown_fee_status"`
	Duplicates       int              `json:"duplicates"`
}

// RowErrorDetail identifies one rejected upload row.
type RowErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

// SeedRequest triggers synthetic cohort seeding.
type SeedRequest struct {
	Token string `json:"token" validate:"required"`
	Count int    `json:"count" validate:"omitempty,min=1,max=5000"`
}
