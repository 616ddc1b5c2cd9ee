package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dropsafe/dropsafe-api/internal/models"
)

// AssessmentRepository persists risk scoring results.
type AssessmentRepository interface {
	SaveBatch(ctx context.Context, assessments []models.RiskAssessment) error
	LatestPerStudent(ctx context.Context) ([]models.RiskAssessment, error)
	HistoryByStudentID(ctx context.Context, studentID string, limit int) ([]models.RiskAssessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs the repository implementation.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) SaveBatch(ctx context.Context, assessments []models.RiskAssessment) error {
	if len(assessments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&assessments, 200).Error
}

func (r *assessmentRepository) LatestPerStudent(ctx context.Context) ([]models.RiskAssessment, error) {
	sub := r.db.Model(&models.RiskAssessment{}).
		Select("student_id, MAX(assessed_at) AS max_assessed").
		Group("student_id")

	var assessments []models.RiskAssessment
	err := r.db.WithContext(ctx).
		Joins("JOIN (?) latest ON risk_assessments.student_id = latest.student_id AND risk_assessments.assessed_at = latest.max_assessed", sub).
		Order("risk_assessments.student_id ASC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepository) HistoryByStudentID(ctx context.Context, studentID string, limit int) ([]models.RiskAssessment, error) {
	if limit <= 0 {
		limit = 50
	}
	var assessments []models.RiskAssessment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("assessed_at DESC").
		Limit(limit).
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}
