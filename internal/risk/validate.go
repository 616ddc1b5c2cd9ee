package risk

import (
	"fmt"
	"strconv"
	"strings"
)

// RequiredColumns is the input table contract. Name is required but ignored
// by scoring.
var RequiredColumns = []string{"student_id", "name", "attendance_percentage", "marks_percentage", "fees_status"}

// BatchPolicy controls how row-level validation failures propagate.
type BatchPolicy string

const (
	// RejectRows drops only the offending rows, reporting them.
	RejectRows BatchPolicy = "reject_rows"
	// RejectBatch fails the whole batch when any row is invalid.
	RejectBatch BatchPolicy = "reject_batch"
)

// ValidationReport summarizes a parsed batch. Rejected rows are always
// itemized; batches are never shrunk silently.
type ValidationReport struct {
	Total             int        `json:"total"`
	Accepted          int        `json:"accepted"`
	Rejected          []RowError `json:"rejected,omitempty"`
	ClampedValues     int        `json:"clamped_values"`
	UnknownFeeStatus  int        `json:"unknown_fee_status"`
	DuplicateStudents int        `json:"duplicate_students"`
}

// ParseTable validates a tabular batch against the input contract and
// converts it into normalized StudentRecords. Column matching is
// case-insensitive. A missing required column fails the whole batch; row
// failures are collected per the policy.
func ParseTable(columns []string, rows [][]string, policy BatchPolicy) ([]StudentRecord, ValidationReport, error) {
	index := map[string]int{}
	for i, col := range columns {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, ValidationReport{}, &DataValidationError{MissingColumns: missing}
	}

	report := ValidationReport{Total: len(rows)}
	records := make([]StudentRecord, 0, len(rows))
	seen := map[string]bool{}

	for rowNum, row := range rows {
		record, rowErr := parseRow(index, row, rowNum, &report)
		if rowErr != nil {
			report.Rejected = append(report.Rejected, *rowErr)
			continue
		}
		if seen[record.StudentID] {
			report.DuplicateStudents++
		}
		seen[record.StudentID] = true
		records = append(records, record)
	}
	report.Accepted = len(records)

	if policy == RejectBatch && len(report.Rejected) > 0 {
		return nil, report, &DataValidationError{Rows: report.Rejected}
	}
	return records, report, nil
}

func parseRow(index map[string]int, row []string, rowNum int, report *ValidationReport) (StudentRecord, *RowError) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	studentID := cell("student_id")
	if studentID == "" {
		return StudentRecord{}, &RowError{Row: rowNum, Column: "student_id", Message: "empty student id"}
	}

	attendance, err := parsePercentage(cell("attendance_percentage"))
	if err != nil {
		return StudentRecord{}, &RowError{Row: rowNum, Column: "attendance_percentage", Message: err.Error()}
	}
	marks, err := parsePercentage(cell("marks_percentage"))
	if err != nil {
		return StudentRecord{}, &RowError{Row: rowNum, Column: "marks_percentage", Message: err.Error()}
	}

	if attendance != Clamp(attendance) {
		report.ClampedValues++
	}
	if marks != Clamp(marks) {
		report.ClampedValues++
	}

	fees, known := ParseFeeStatus(cell("fees_status"))
	if !known {
		report.UnknownFeeStatus++
	}

	return StudentRecord{
		StudentID:  studentID,
		Name:       cell("name"),
		Attendance: Clamp(attendance),
		Marks:      Clamp(marks),
		FeesStatus: fees,
	}, nil
}

func parsePercentage(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", raw)
	}
	return value, nil
}
