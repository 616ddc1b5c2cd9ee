package risk

import "math"

// Attendance bins, right-open ascending: a value exactly on a boundary
// belongs to the upper bin.
const (
	AttendancePoorBelow     = 60.0
	AttendanceBelowAvgBelow = 75.0
	AttendanceGoodBelow     = 85.0
)

// Marks bins, same right-open convention.
const (
	MarksFailingBelow  = 40.0
	MarksBelowAvgBelow = 60.0
	MarksGoodBelow     = 75.0
)

// Overall-risk blend weights. Hand-tuned constants carried over from the
// original dashboards; candidates for calibration, not derived from data.
const (
	AttendanceWeight = 0.4
	MarksWeight      = 0.4
	FeesWeight       = 0.2
)

var attendanceCategories = []string{"poor", "below_avg", "good", "excellent"}
var marksCategories = []string{"failing", "below_avg", "good", "excellent"}

var featureNames = buildFeatureNames()

func buildFeatureNames() []string {
	names := []string{
		"attendance_percentage", "marks_percentage", "fees_paid",
		"attendance_risk", "marks_risk", "fees_risk",
		"academic_risk", "overall_risk",
		"attendance_marks_product", "attendance_marks_ratio",
		"attendance_squared", "marks_squared",
		"distance_from_ideal", "performance_consistency",
		"high_attendance", "high_marks",
		"excellent_student", "at_risk_student",
	}
	// One-hot columns come from the bin definitions, not observed values, so
	// the schema is identical for every batch.
	for _, cat := range attendanceCategories {
		names = append(names, "attendance_category_"+cat)
	}
	for _, cat := range marksCategories {
		names = append(names, "marks_category_"+cat)
	}
	return names
}

// FeatureNames returns the engineered feature columns in the fixed order
// used for both training and prediction.
func FeatureNames() []string {
	return append([]string(nil), featureNames...)
}

// AttendanceCategory bins an attendance percentage.
func AttendanceCategory(attendance float64) string {
	switch {
	case attendance < AttendancePoorBelow:
		return "poor"
	case attendance < AttendanceBelowAvgBelow:
		return "below_avg"
	case attendance < AttendanceGoodBelow:
		return "good"
	default:
		return "excellent"
	}
}

// MarksCategory bins a marks percentage.
func MarksCategory(marks float64) string {
	switch {
	case marks < MarksFailingBelow:
		return "failing"
	case marks < MarksBelowAvgBelow:
		return "below_avg"
	case marks < MarksGoodBelow:
		return "good"
	default:
		return "excellent"
	}
}

// EngineerFeatures derives the full feature vector for one record, aligned
// with FeatureNames. Pure function; inputs are normalized first.
func EngineerFeatures(record StudentRecord) []float64 {
	record, _ = record.Normalize()
	attendance := record.Attendance
	marks := record.Marks

	feesPaid := 0.0
	if record.FeesStatus == FeePaid {
		feesPaid = 1
	}

	attendanceRisk := (100 - attendance) / 100
	marksRisk := (100 - marks) / 100
	feesRisk := 1 - feesPaid
	academicRisk := (attendanceRisk + marksRisk) / 2
	overallRisk := AttendanceWeight*attendanceRisk + MarksWeight*marksRisk + FeesWeight*feesRisk

	features := []float64{
		attendance,
		marks,
		feesPaid,
		attendanceRisk,
		marksRisk,
		feesRisk,
		academicRisk,
		overallRisk,
		attendance * marks / 10000,
		attendance / (marks + 1),
		attendance * attendance,
		marks * marks,
		math.Hypot(attendance-100, marks-100),
		100 - math.Abs(attendance-marks),
		boolFeature(attendance >= AttendanceGoodBelow),
		boolFeature(marks >= MarksGoodBelow),
		boolFeature(attendance >= AttendanceGoodBelow && marks >= MarksGoodBelow),
		boolFeature(attendance < AttendanceBelowAvgBelow || marks < MarksBelowAvgBelow),
	}

	attendanceCat := AttendanceCategory(attendance)
	for _, cat := range attendanceCategories {
		features = append(features, boolFeature(cat == attendanceCat))
	}
	marksCat := MarksCategory(marks)
	for _, cat := range marksCategories {
		features = append(features, boolFeature(cat == marksCat))
	}
	return features
}

// EngineerMatrix derives feature vectors for a batch, row order preserved.
func EngineerMatrix(records []StudentRecord) [][]float64 {
	out := make([][]float64, len(records))
	for i, record := range records {
		out[i] = EngineerFeatures(record)
	}
	return out
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
