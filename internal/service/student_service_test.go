package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/dropsafe/dropsafe-api/internal/dto"
)

func TestStudentServiceCreateClampsAndNormalizes(t *testing.T) {
	repo := &studentRepoStub{}
	svc := NewStudentService(repo, validator.New(), testLogger())

	created, err := svc.Create(context.Background(), dto.StudentCreateRequest{
		StudentID:            "STU900",
		Name:                 "  Over Achiever  ",
		AttendancePercentage: 104,
		MarksPercentage:      -3,
		FeesStatus:           "PAID",
	})
	require.NoError(t, err)
	require.Equal(t, "Over Achiever", created.Name)
	require.Equal(t, 100.0, created.AttendancePercentage)
	require.Equal(t, 0.0, created.MarksPercentage)
	require.Equal(t, "paid", created.FeesStatus)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(&studentRepoStub{}, validator.New(), testLogger())

	_, err := svc.Create(context.Background(), dto.StudentCreateRequest{Name: "No ID", FeesStatus: "paid"})
	require.Error(t, err)
}

func TestStudentServiceCreateUnknownFeeStatusDefaultsPending(t *testing.T) {
	svc := NewStudentService(&studentRepoStub{}, validator.New(), testLogger())

	created, err := svc.Create(context.Background(), dto.StudentCreateRequest{
		StudentID:            "STU901",
		Name:                 "Mystery Fees",
		AttendancePercentage: 80,
		MarksPercentage:      70,
		FeesStatus:           "definitely-not-a-status",
	})
	require.NoError(t, err)
	require.Equal(t, "pending", created.FeesStatus)
}

func TestStudentServiceUploadCSV(t *testing.T) {
	repo := &studentRepoStub{}
	svc := NewStudentService(repo, validator.New(), testLogger())

	csvData := []byte("student_id,name,attendance_percentage,marks_percentage,fees_status\n" +
		"STU001,Asha,92,88,paid\n" +
		"STU002,Bilal,55%,41,overdue\n" +
		"STU003,Chen,not-a-number,70,paid\n")

	summary, err := svc.UploadCSV(context.Background(), csvData)
	require.NoError(t, err)
	require.Equal(t, 3, summary.TotalRows)
	require.Equal(t, 2, summary.Accepted)
	require.Len(t, summary.RejectedRows, 1)
	require.Equal(t, "attendance_percentage", summary.RejectedRows[0].Column)
	require.Len(t, repo.students, 2)
}

func TestStudentServiceUploadCSVMissingColumn(t *testing.T) {
	svc := NewStudentService(&studentRepoStub{}, validator.New(), testLogger())

	csvData := []byte("student_id,name,attendance_percentage\nSTU001,Asha,92\n")

	_, err := svc.UploadCSV(context.Background(), csvData)
	require.Error(t, err)
}

func TestStudentServiceUploadEmptyFile(t *testing.T) {
	svc := NewStudentService(&studentRepoStub{}, validator.New(), testLogger())

	_, err := svc.UploadCSV(context.Background(), []byte("student_id,name,attendance_percentage,marks_percentage,fees_status\n"))
	require.ErrorIs(t, err, ErrEmptyUpload)
}

func TestSeedServiceTokenGate(t *testing.T) {
	repo := &studentRepoStub{}
	svc := NewSeedService(repo, true, "sekrit", 42, testLogger())

	_, err := svc.SeedCohort(context.Background(), "wrong", 10)
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	affected, err := svc.SeedCohort(context.Background(), "sekrit", 10)
	require.NoError(t, err)
	require.EqualValues(t, 10, affected)
	require.Len(t, repo.students, 10)
}

func TestSeedServiceDisabled(t *testing.T) {
	svc := NewSeedService(&studentRepoStub{}, false, "sekrit", 42, testLogger())

	_, err := svc.SeedCohort(context.Background(), "sekrit", 10)
	require.ErrorIs(t, err, ErrSeedDisabled)
}
