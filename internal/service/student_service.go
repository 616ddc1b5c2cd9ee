package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/models"
	"github.com/dropsafe/dropsafe-api/internal/repository"
	"github.com/dropsafe/dropsafe-api/internal/risk"
)

var (
	// ErrEmptyUpload indicates the uploaded file held no data rows.
	ErrEmptyUpload = errors.New("uploaded file contains no data rows")
	// ErrUnsupportedUpload indicates the uploaded file is not CSV text.
	ErrUnsupportedUpload = errors.New("unsupported upload format, expected CSV")
)

// StudentService manages cohort records and CSV ingestion.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	UploadCSV(ctx context.Context, data []byte) (dto.UploadSummaryResponse, error)
}

type studentService struct {
	repo      repository.StudentRepository
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		validate:  validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, len(students))
	for i, student := range students {
		responses[i] = toStudentResponse(student)
	}
	return responses, nil
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	status, known := risk.ParseFeeStatus(req.FeesStatus)
	if !known {
		s.logger.Warn().Str("student_id", req.StudentID).Str("fees_status", req.FeesStatus).Msg("unknown fee status, treating as pending")
	}

	record := risk.StudentRecord{
		StudentID:  strings.TrimSpace(req.StudentID),
		Name:       s.sanitizer.Sanitize(strings.TrimSpace(req.Name)),
		Attendance: req.AttendancePercentage,
		Marks:      req.MarksPercentage,
		FeesStatus: status,
	}
	record, clamped := record.Normalize()
	if clamped {
		s.logger.Warn().Str("student_id", record.StudentID).Msg("percentage out of range, clamped to [0,100]")
	}

	student := studentFromRecord(record)
	if _, err := s.repo.UpsertBatch(ctx, []models.Student{student}); err != nil {
		return dto.StudentResponse{}, err
	}

	stored, err := s.repo.GetByStudentID(ctx, record.StudentID)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return toStudentResponse(stored), nil
}

func (s *studentService) UploadCSV(ctx context.Context, data []byte) (dto.UploadSummaryResponse, error) {
	mime := mimetype.Detect(data)
	if !mime.Is("text/csv") && !mime.Is("text/plain") {
		return dto.UploadSummaryResponse{}, fmt.Errorf("%w: got %s", ErrUnsupportedUpload, mime.String())
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return dto.UploadSummaryResponse{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return dto.UploadSummaryResponse{}, ErrEmptyUpload
	}

	records, report, err := risk.ParseTable(rows[0], rows[1:], risk.RejectRows)
	if err != nil {
		return dto.UploadSummaryResponse{}, err
	}

	students := make([]models.Student, len(records))
	for i, record := range records {
		record.Name = s.sanitizer.Sanitize(record.Name)
		students[i] = studentFromRecord(record)
	}
	if _, err := s.repo.UpsertBatch(ctx, students); err != nil {
		return dto.UploadSummaryResponse{}, err
	}

	s.logger.Info().
		Int("total", report.Total).
		Int("accepted", report.Accepted).
		Int("rejected", len(report.Rejected)).
		Int("clamped", report.ClampedValues).
		Msg("cohort csv ingested")

	summary := dto.UploadSummaryResponse{
		TotalRows:        report.Total,
		Accepted:         report.Accepted,
		ClampedValues:    report.ClampedValues,
		UnknownFeeStatus: report.UnknownFeeStatus,
		Duplicates:       report.DuplicateStudents,
	}
	for _, rejected := range report.Rejected {
		summary.RejectedRows = append(summary.RejectedRows, dto.RowErrorDetail{
			Row:     rejected.Row,
			Column:  rejected.Column,
			Message: rejected.Message,
		})
	}
	return summary, nil
}

func studentFromRecord(record risk.StudentRecord) models.Student {
	return models.Student{
		StudentID:            record.StudentID,
		Name:                 record.Name,
		AttendancePercentage: record.Attendance,
		MarksPercentage:      record.Marks,
		FeesStatus:           string(record.FeesStatus),
	}
}

func toStudentResponse(student models.Student) dto.StudentResponse {
	return dto.StudentResponse{
		StudentID:            student.StudentID,
		Name:                 student.Name,
		AttendancePercentage: student.AttendancePercentage,
		MarksPercentage:      student.MarksPercentage,
		FeesStatus:           student.FeesStatus,
		UpdatedAt:            student.UpdatedAt,
	}
}
