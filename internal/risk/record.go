// Package risk implements the DropSafe risk-scoring core: feature
// engineering, the deterministic rule-based scorers, proxy-label generation,
// classifier training with model selection, and prediction with rule
// fallback. Everything here is a pure function of its inputs plus one
// optional persisted pipeline artifact.
package risk

import "strings"

// FeeStatus is the normalized fee-payment state of a student.
type FeeStatus string

const (
	FeePaid    FeeStatus = "paid"
	FeePending FeeStatus = "pending"
	FeeOverdue FeeStatus = "overdue"
)

// StudentRecord is one raw scoring input row. Name is carried for display
// and alert messages only; it never influences a score.
type StudentRecord struct {
	StudentID  string    `json:"student_id"`
	Name       string    `json:"name"`
	Attendance float64   `json:"attendance_percentage"`
	Marks      float64   `json:"marks_percentage"`
	FeesStatus FeeStatus `json:"fees_status"`
}

// ParseFeeStatus normalizes a raw fee-status string. Unrecognized values map
// to pending severity (some risk, never the worst); the second return value
// reports whether the input was one of the known states so callers can log a
// data-quality warning.
func ParseFeeStatus(raw string) (FeeStatus, bool) {
	switch FeeStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case FeePaid:
		return FeePaid, true
	case FeePending:
		return FeePending, true
	case FeeOverdue:
		return FeeOverdue, true
	default:
		return FeePending, false
	}
}

// Clamp bounds a percentage to [0,100]. Out-of-range numeric values are
// normalized at ingestion rather than rejected.
func Clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Normalize returns a copy of the record with percentages clamped and the
// fee status mapped onto the known enum. The boolean mirrors ParseFeeStatus.
func (r StudentRecord) Normalize() (StudentRecord, bool) {
	status, known := ParseFeeStatus(string(r.FeesStatus))
	r.Attendance = Clamp(r.Attendance)
	r.Marks = Clamp(r.Marks)
	r.FeesStatus = status
	return r, known
}
