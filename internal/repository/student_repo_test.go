package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dropsafe/dropsafe-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.RiskAssessment{}))
	return db
}

func TestStudentRepositoryUpsertBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	initial := []models.Student{
		{StudentID: "STU001", Name: "Asha", AttendancePercentage: 90, MarksPercentage: 85, FeesStatus: "paid"},
		{StudentID: "STU002", Name: "Bilal", AttendancePercentage: 55, MarksPercentage: 40, FeesStatus: "overdue"},
	}
	_, err := repo.UpsertBatch(context.Background(), initial)
	require.NoError(t, err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// Re-upserting the same student updates in place instead of duplicating.
	updated := []models.Student{
		{StudentID: "STU002", Name: "Bilal", AttendancePercentage: 70, MarksPercentage: 62, FeesStatus: "pending"},
	}
	_, err = repo.UpsertBatch(context.Background(), updated)
	require.NoError(t, err)

	count, err = repo.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	student, err := repo.GetByStudentID(context.Background(), "STU002")
	require.NoError(t, err)
	require.Equal(t, 70.0, student.AttendancePercentage)
	require.Equal(t, "pending", student.FeesStatus)
}

func TestStudentRepositoryListOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	_, err := repo.UpsertBatch(context.Background(), []models.Student{
		{StudentID: "STU003", Name: "Chen", AttendancePercentage: 80, MarksPercentage: 75, FeesStatus: "paid"},
		{StudentID: "STU001", Name: "Asha", AttendancePercentage: 90, MarksPercentage: 85, FeesStatus: "paid"},
	})
	require.NoError(t, err)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "STU001", students[0].StudentID)
	require.Equal(t, "STU003", students[1].StudentID)
}

func TestAssessmentRepositoryLatestPerStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)

	earlier := time.Now().UTC().Add(-time.Hour)
	later := time.Now().UTC()
	require.NoError(t, repo.SaveBatch(context.Background(), []models.RiskAssessment{
		{StudentID: "STU001", RiskScore: 0.5, RiskLabel: 1, RiskCategory: "Medium Risk", Mode: "rule", AssessedAt: earlier},
		{StudentID: "STU001", RiskScore: 0.2, RiskLabel: 0, RiskCategory: "Safe", Mode: "rule", AssessedAt: later},
		{StudentID: "STU002", RiskScore: 0.9, RiskLabel: 2, RiskCategory: "High Risk", Mode: "rule", AssessedAt: earlier},
	}))

	latest, err := repo.LatestPerStudent(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 2)
	for _, assessment := range latest {
		if assessment.StudentID == "STU001" {
			require.Equal(t, "Safe", assessment.RiskCategory)
		}
	}

	history, err := repo.HistoryByStudentID(context.Background(), "STU001", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "Safe", history[0].RiskCategory, "expected newest assessment first")
}
