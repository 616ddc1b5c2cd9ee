package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/models"
	"github.com/dropsafe/dropsafe-api/internal/risk"
)

func sampleStudents(n int) []models.Student {
	records := risk.GenerateSampleCohort(n, 7)
	students := make([]models.Student, len(records))
	for i, record := range records {
		students[i] = models.Student{
			StudentID:            record.StudentID,
			Name:                 record.Name,
			AttendancePercentage: record.Attendance,
			MarksPercentage:      record.Marks,
			FeesStatus:           string(record.FeesStatus),
		}
	}
	return students
}

func TestTrainingServiceTrainsAndReloads(t *testing.T) {
	artifactPath := filepath.Join(t.TempDir(), "model.json")
	students := &studentRepoStub{students: sampleStudents(150)}
	predictor := risk.NewPredictor(artifactPath, testLogger())
	require.Equal(t, risk.ModeRule, predictor.Mode())

	svc := NewTrainingService(students, predictor, artifactPath, risk.DefaultTrainerConfig(), testLogger())

	response, err := svc.Train(context.Background(), dto.TrainRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, response.Algorithm)
	require.Equal(t, "weighted", response.LabelPolicy)
	require.Equal(t, 150, response.Samples)
	require.NotEmpty(t, response.Performance)
	require.Equal(t, risk.ModeML, predictor.Mode())

	status := svc.Status(context.Background())
	require.Equal(t, "ml", status.Mode)
	require.Equal(t, response.Algorithm, status.Algorithm)
	require.NotNil(t, status.TrainedAt)
	require.Equal(t, 26, status.Features)
}

func TestTrainingServiceLabelPolicyOverride(t *testing.T) {
	artifactPath := filepath.Join(t.TempDir(), "model.json")
	students := &studentRepoStub{students: sampleStudents(150)}
	predictor := risk.NewPredictor(artifactPath, testLogger())

	svc := NewTrainingService(students, predictor, artifactPath, risk.DefaultTrainerConfig(), testLogger())

	response, err := svc.Train(context.Background(), dto.TrainRequest{LabelPolicy: "threshold"})
	require.NoError(t, err)
	require.Equal(t, "threshold", response.LabelPolicy)
}

func TestTrainingServiceEmptyCohort(t *testing.T) {
	artifactPath := filepath.Join(t.TempDir(), "model.json")
	predictor := risk.NewPredictor(artifactPath, testLogger())

	svc := NewTrainingService(&studentRepoStub{}, predictor, artifactPath, risk.DefaultTrainerConfig(), testLogger())

	_, err := svc.Train(context.Background(), dto.TrainRequest{})
	require.ErrorIs(t, err, ErrNoStudents)

	status := svc.Status(context.Background())
	require.Equal(t, "rule", status.Mode)
	require.Empty(t, status.Algorithm)
}

func TestTrainingServiceDegenerateLabels(t *testing.T) {
	artifactPath := filepath.Join(t.TempDir(), "model.json")
	students := make([]models.Student, 40)
	for i := range students {
		students[i] = models.Student{
			StudentID:            fmt.Sprintf("STU%03d", i+1),
			Name:                 "Perfect",
			AttendancePercentage: 99,
			MarksPercentage:      98,
			FeesStatus:           "paid",
		}
	}
	predictor := risk.NewPredictor(artifactPath, testLogger())

	svc := NewTrainingService(&studentRepoStub{students: students}, predictor, artifactPath, risk.DefaultTrainerConfig(), testLogger())

	_, err := svc.Train(context.Background(), dto.TrainRequest{})
	var failure *risk.TrainingFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, risk.ModeRule, predictor.Mode())
}
