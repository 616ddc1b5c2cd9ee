package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func featureValue(t *testing.T, features []float64, name string) float64 {
	t.Helper()
	for i, n := range FeatureNames() {
		if n == name {
			return features[i]
		}
	}
	t.Fatalf("feature %q not found", name)
	return 0
}

func TestFeatureNamesStable(t *testing.T) {
	first := FeatureNames()
	second := FeatureNames()
	require.Equal(t, first, second)
	// The one-hot schema comes from the bin definitions, so every category
	// column exists whether or not a batch contains members.
	require.Contains(t, first, "attendance_category_poor")
	require.Contains(t, first, "attendance_category_excellent")
	require.Contains(t, first, "marks_category_failing")
	require.Contains(t, first, "marks_category_excellent")
	require.Len(t, first, 26)
}

func TestEngineerFeaturesMatchesNames(t *testing.T) {
	features := EngineerFeatures(StudentRecord{Attendance: 80, Marks: 70, FeesStatus: FeePaid})
	require.Len(t, features, len(FeatureNames()))
}

func TestRiskRatios(t *testing.T) {
	features := EngineerFeatures(StudentRecord{Attendance: 75, Marks: 50, FeesStatus: FeePending})
	require.InDelta(t, 0.25, featureValue(t, features, "attendance_risk"), 1e-9)
	require.InDelta(t, 0.5, featureValue(t, features, "marks_risk"), 1e-9)
	require.InDelta(t, 1.0, featureValue(t, features, "fees_risk"), 1e-9)
	require.InDelta(t, 0.375, featureValue(t, features, "academic_risk"), 1e-9)
	// overall = 0.4*0.25 + 0.4*0.5 + 0.2*1.0
	require.InDelta(t, 0.5, featureValue(t, features, "overall_risk"), 1e-9)
}

func TestRiskRatioRangeInvariant(t *testing.T) {
	for attendance := -20.0; attendance <= 120; attendance += 17 {
		for marks := -20.0; marks <= 120; marks += 17 {
			features := EngineerFeatures(StudentRecord{Attendance: attendance, Marks: marks, FeesStatus: FeeOverdue})
			for _, name := range []string{"attendance_risk", "marks_risk", "fees_risk", "overall_risk"} {
				value := featureValue(t, features, name)
				require.GreaterOrEqual(t, value, 0.0, name)
				require.LessOrEqual(t, value, 1.0, name)
			}
		}
	}
}

func TestBinBoundariesAreRightOpen(t *testing.T) {
	// Values exactly on a boundary belong to the upper bin.
	require.Equal(t, "below_avg", AttendanceCategory(60))
	require.Equal(t, "good", AttendanceCategory(75))
	require.Equal(t, "excellent", AttendanceCategory(85))
	require.Equal(t, "poor", AttendanceCategory(59.999))
	require.Equal(t, "excellent", AttendanceCategory(100))

	require.Equal(t, "below_avg", MarksCategory(40))
	require.Equal(t, "good", MarksCategory(60))
	require.Equal(t, "excellent", MarksCategory(75))
	require.Equal(t, "failing", MarksCategory(39.999))
	require.Equal(t, "excellent", MarksCategory(100))
}

func TestOneHotSchemaIndependentOfBatch(t *testing.T) {
	// A batch with only excellent students still carries the poor column.
	features := EngineerFeatures(StudentRecord{Attendance: 95, Marks: 90, FeesStatus: FeePaid})
	require.Equal(t, 0.0, featureValue(t, features, "attendance_category_poor"))
	require.Equal(t, 1.0, featureValue(t, features, "attendance_category_excellent"))
	require.Equal(t, 0.0, featureValue(t, features, "marks_category_failing"))
	require.Equal(t, 1.0, featureValue(t, features, "marks_category_excellent"))
}

func TestPerformanceConsistency(t *testing.T) {
	balanced := EngineerFeatures(StudentRecord{Attendance: 40, Marks: 40, FeesStatus: FeePaid})
	require.InDelta(t, 100, featureValue(t, balanced, "performance_consistency"), 1e-9)

	skewed := EngineerFeatures(StudentRecord{Attendance: 90, Marks: 40, FeesStatus: FeePaid})
	require.InDelta(t, 50, featureValue(t, skewed, "performance_consistency"), 1e-9)
}

func TestDistanceFromIdeal(t *testing.T) {
	ideal := EngineerFeatures(StudentRecord{Attendance: 100, Marks: 100, FeesStatus: FeePaid})
	require.InDelta(t, 0, featureValue(t, ideal, "distance_from_ideal"), 1e-9)

	features := EngineerFeatures(StudentRecord{Attendance: 97, Marks: 96, FeesStatus: FeePaid})
	require.InDelta(t, 5, featureValue(t, features, "distance_from_ideal"), 1e-9)
}

func TestBinaryFlags(t *testing.T) {
	excellent := EngineerFeatures(StudentRecord{Attendance: 90, Marks: 80, FeesStatus: FeePaid})
	require.Equal(t, 1.0, featureValue(t, excellent, "high_attendance"))
	require.Equal(t, 1.0, featureValue(t, excellent, "high_marks"))
	require.Equal(t, 1.0, featureValue(t, excellent, "excellent_student"))
	require.Equal(t, 0.0, featureValue(t, excellent, "at_risk_student"))

	atRisk := EngineerFeatures(StudentRecord{Attendance: 70, Marks: 80, FeesStatus: FeePaid})
	require.Equal(t, 1.0, featureValue(t, atRisk, "at_risk_student"))
}

func TestEngineerFeaturesPure(t *testing.T) {
	record := StudentRecord{StudentID: "S1", Attendance: 130, Marks: -5, FeesStatus: "PAID"}
	first := EngineerFeatures(record)
	second := EngineerFeatures(record)
	require.Equal(t, first, second)
	// Input record is untouched; clamping happens on a copy.
	require.Equal(t, 130.0, record.Attendance)
	require.Equal(t, 100.0, featureValue(t, first, "attendance_percentage"))
	require.Equal(t, 0.0, featureValue(t, first, "marks_percentage"))
}
