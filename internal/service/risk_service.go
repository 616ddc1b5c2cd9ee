package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/models"
	"github.com/dropsafe/dropsafe-api/internal/observability"
	"github.com/dropsafe/dropsafe-api/internal/repository"
	"github.com/dropsafe/dropsafe-api/internal/risk"
)

// ErrNoStudents indicates the cohort is empty and nothing can be scored.
var ErrNoStudents = errors.New("no students to assess")

const analysisCacheKey = "risk:analysis:v1"

// RiskService scores the stored cohort and serves the dashboard views.
type RiskService interface {
	AssessAll(ctx context.Context) (dto.AssessmentSummaryResponse, error)
	ScoreAdHoc(ctx context.Context, req dto.AdHocScoreRequest) ([]dto.RiskPredictionResponse, error)
	AssessFourLevel(ctx context.Context) ([]dto.FourLevelPredictionResponse, error)
	Analysis(ctx context.Context) (risk.CohortAnalysis, error)
	FeatureImportances(ctx context.Context) ([]dto.FeatureImportanceResponse, bool)
	RiskLists(ctx context.Context) (dto.RiskListsResponse, error)
	History(ctx context.Context, studentID string, limit int) ([]dto.AssessmentRecordResponse, error)
	AlertFor(ctx context.Context, studentID string) (dto.AlertResponse, bool, error)
}

type riskService struct {
	students    repository.StudentRepository
	assessments repository.AssessmentRepository
	alerts      repository.AlertRepository
	predictor   *risk.Predictor
	cache       *redis.Client
	cacheTTL    time.Duration
	alertTTL    time.Duration
	nats        *nats.Conn
	natsSubject string
	validate    *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewRiskService constructs the scoring service.
func NewRiskService(
	students repository.StudentRepository,
	assessments repository.AssessmentRepository,
	alerts repository.AlertRepository,
	predictor *risk.Predictor,
	cache *redis.Client,
	cacheTTL time.Duration,
	alertTTL time.Duration,
	natsConn *nats.Conn,
	natsSubject string,
	validate *validator.Validate,
	logger zerolog.Logger,
) RiskService {
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}
	return &riskService{
		students:    students,
		assessments: assessments,
		alerts:      alerts,
		predictor:   predictor,
		cache:       cache,
		cacheTTL:    cacheTTL,
		alertTTL:    alertTTL,
		nats:        natsConn,
		natsSubject: natsSubject,
		validate:    validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/dropsafe/dropsafe-api/internal/service/risk"),
		logger:      logger.With().Str("component", "risk_service").Logger(),
	}
}

func (s *riskService) AssessAll(ctx context.Context) (dto.AssessmentSummaryResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "risk.assess_all")
	defer span.End()

	records, err := s.loadCohort(spanCtx)
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentSummaryResponse{}, err
	}

	predictions := s.predictor.Predict(records)
	assessedAt := time.Now().UTC()
	span.SetAttributes(
		attribute.Int("risk.cohort_size", len(records)),
		attribute.String("risk.mode", string(s.predictor.Mode())),
	)

	if err := s.persistAssessments(spanCtx, predictions, assessedAt); err != nil {
		span.RecordError(err)
		return dto.AssessmentSummaryResponse{}, err
	}
	if err := s.writeAlerts(spanCtx, predictions); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write alerts")
	}
	s.publishHighRisk(spanCtx, predictions)
	s.invalidateAnalysisCache(spanCtx)

	distribution := map[string]int{}
	responses := make([]dto.RiskPredictionResponse, len(predictions))
	for i, p := range predictions {
		observability.Predictions().WithLabelValues(string(p.Mode), p.RiskCategory).Inc()
		distribution[p.RiskCategory]++
		responses[i] = toPredictionResponse(p)
	}

	return dto.AssessmentSummaryResponse{
		Total:       len(predictions),
		Mode:        string(s.predictor.Mode()),
		Distributed: distribution,
		Predictions: responses,
		AssessedAt:  assessedAt,
	}, nil
}

func (s *riskService) ScoreAdHoc(ctx context.Context, req dto.AdHocScoreRequest) ([]dto.RiskPredictionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	records := make([]risk.StudentRecord, len(req.Records))
	for i, r := range req.Records {
		status, known := risk.ParseFeeStatus(r.FeesStatus)
		if !known {
			s.logger.Warn().Str("student_id", r.StudentID).Str("fees_status", r.FeesStatus).Msg("unknown fee status, treating as pending")
		}
		records[i] = risk.StudentRecord{
			StudentID:  strings.TrimSpace(r.StudentID),
			Name:       s.sanitizer.Sanitize(strings.TrimSpace(r.Name)),
			Attendance: r.AttendancePercentage,
			Marks:      r.MarksPercentage,
			FeesStatus: status,
		}
	}

	predictions := s.predictor.Predict(records)
	responses := make([]dto.RiskPredictionResponse, len(predictions))
	for i, p := range predictions {
		observability.Predictions().WithLabelValues(string(p.Mode), p.RiskCategory).Inc()
		responses[i] = toPredictionResponse(p)
	}
	return responses, nil
}

func (s *riskService) AssessFourLevel(ctx context.Context) ([]dto.FourLevelPredictionResponse, error) {
	records, err := s.loadCohort(ctx)
	if err != nil {
		return nil, err
	}

	predictions := s.predictor.PredictFourLevel(records)
	responses := make([]dto.FourLevelPredictionResponse, len(predictions))
	for i, p := range predictions {
		responses[i] = dto.FourLevelPredictionResponse{
			StudentID: p.StudentID,
			Name:      p.Name,
			RuleScore: p.RuleScore,
			MLVerdict: p.MLVerdict,
			FinalRisk: string(p.FinalRisk),
			Mode:      string(p.Mode),
		}
	}
	return responses, nil
}

func (s *riskService) Analysis(ctx context.Context) (risk.CohortAnalysis, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, analysisCacheKey).Result(); err == nil && cached != "" {
			var analysis risk.CohortAnalysis
			if err := json.Unmarshal([]byte(cached), &analysis); err == nil {
				return analysis, nil
			}
		}
	}

	records, err := s.loadCohort(ctx)
	if err != nil {
		return risk.CohortAnalysis{}, err
	}
	predictions := s.predictor.Predict(records)
	analysis := risk.AnalyzeCohort(records, predictions)

	if s.cache != nil {
		if payload, err := json.Marshal(analysis); err == nil {
			if err := s.cache.Set(ctx, analysisCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache cohort analysis")
			}
		}
	}
	return analysis, nil
}

func (s *riskService) FeatureImportances(ctx context.Context) ([]dto.FeatureImportanceResponse, bool) {
	table, ok := s.predictor.FeatureImportanceTable()
	if !ok {
		return nil, false
	}
	responses := make([]dto.FeatureImportanceResponse, len(table))
	for i, row := range table {
		responses[i] = dto.FeatureImportanceResponse{Feature: row.Feature, Importance: row.Importance}
	}
	return responses, true
}

func (s *riskService) RiskLists(ctx context.Context) (dto.RiskListsResponse, error) {
	records, err := s.loadCohort(ctx)
	if err != nil {
		return dto.RiskListsResponse{}, err
	}

	predictions := s.predictor.Predict(records)
	lists := dto.RiskListsResponse{
		HighRisk:   []dto.RiskPredictionResponse{},
		MediumRisk: []dto.RiskPredictionResponse{},
		LowRisk:    []dto.RiskPredictionResponse{},
	}
	for _, p := range predictions {
		response := toPredictionResponse(p)
		switch p.RiskLabel {
		case risk.LabelHigh:
			lists.HighRisk = append(lists.HighRisk, response)
		case risk.LabelMedium:
			lists.MediumRisk = append(lists.MediumRisk, response)
		default:
			lists.LowRisk = append(lists.LowRisk, response)
		}
	}

	if s.alerts != nil {
		if updated, err := s.alerts.LastUpdated(ctx); err == nil {
			lists.LastUpdated = updated
		}
	}
	return lists, nil
}

func (s *riskService) History(ctx context.Context, studentID string, limit int) ([]dto.AssessmentRecordResponse, error) {
	assessments, err := s.assessments.HistoryByStudentID(ctx, strings.TrimSpace(studentID), limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssessmentRecordResponse, len(assessments))
	for i, assessment := range assessments {
		response := dto.AssessmentRecordResponse{
			StudentID:    assessment.StudentID,
			RiskScore:    assessment.RiskScore,
			RiskLabel:    assessment.RiskLabel,
			RiskCategory: assessment.RiskCategory,
			Mode:         assessment.Mode,
			AssessedAt:   assessment.AssessedAt,
		}
		if len(assessment.Probabilities) > 0 {
			response.Probabilities = map[string]float64{}
			for class, value := range assessment.Probabilities {
				if probability, ok := value.(float64); ok {
					response.Probabilities[class] = probability
				}
			}
		}
		responses[i] = response
	}
	return responses, nil
}

func (s *riskService) AlertFor(ctx context.Context, studentID string) (dto.AlertResponse, bool, error) {
	alert, ok, err := s.alerts.GetByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil || !ok {
		return dto.AlertResponse{}, ok, err
	}
	return dto.AlertResponse{
		StudentID:         alert.StudentID,
		StudentName:       alert.StudentName,
		RiskLevel:         alert.RiskLevel,
		Message:           alert.Message,
		CounselorAssigned: alert.CounselorAssigned,
		UpdatedAt:         alert.UpdatedAt,
	}, true, nil
}

func (s *riskService) loadCohort(ctx context.Context) ([]risk.StudentRecord, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrNoStudents
	}

	records := make([]risk.StudentRecord, len(students))
	for i, student := range students {
		status, known := risk.ParseFeeStatus(student.FeesStatus)
		if !known {
			s.logger.Warn().Str("student_id", student.StudentID).Str("fees_status", student.FeesStatus).Msg("unknown fee status, treating as pending")
		}
		records[i] = risk.StudentRecord{
			StudentID:  student.StudentID,
			Name:       student.Name,
			Attendance: student.AttendancePercentage,
			Marks:      student.MarksPercentage,
			FeesStatus: status,
		}
	}
	return records, nil
}

func (s *riskService) persistAssessments(ctx context.Context, predictions []risk.Prediction, assessedAt time.Time) error {
	assessments := make([]models.RiskAssessment, len(predictions))
	for i, p := range predictions {
		assessment := models.RiskAssessment{
			StudentID:    p.StudentID,
			RiskScore:    p.RiskScore,
			RiskLabel:    int(p.RiskLabel),
			RiskCategory: p.RiskCategory,
			Mode:         string(p.Mode),
			AssessedAt:   assessedAt,
		}
		if len(p.Probabilities) == 3 {
			assessment.Probabilities = datatypes.JSONMap{
				"safe":   p.Probabilities[0],
				"medium": p.Probabilities[1],
				"high":   p.Probabilities[2],
			}
		}
		assessments[i] = assessment
	}
	return s.assessments.SaveBatch(ctx, assessments)
}

func (s *riskService) writeAlerts(ctx context.Context, predictions []risk.Prediction) error {
	if s.alerts == nil {
		return nil
	}

	now := time.Now().UTC()
	alerts := make([]repository.StudentAlert, len(predictions))
	for i, p := range predictions {
		name := s.sanitizer.Sanitize(p.Name)
		alerts[i] = repository.StudentAlert{
			StudentID:         p.StudentID,
			StudentName:       name,
			RiskLevel:         p.RiskCategory,
			Message:           alertMessage(name, p.RiskLabel),
			CounselorAssigned: p.RiskLabel == risk.LabelHigh,
			UpdatedAt:         now,
		}
		observability.AlertsWritten().WithLabelValues(p.RiskCategory).Inc()
	}
	return s.alerts.ReplaceAll(ctx, alerts, s.alertTTL)
}

func (s *riskService) publishHighRisk(ctx context.Context, predictions []risk.Prediction) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}
	for _, p := range predictions {
		if p.RiskLabel != risk.LabelHigh {
			continue
		}
		payload, err := json.Marshal(toPredictionResponse(p))
		if err != nil {
			continue
		}
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Str("student_id", p.StudentID).Msg("failed to publish high-risk event")
		}
	}
}

func (s *riskService) invalidateAnalysisCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, analysisCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate analysis cache")
	}
}

func alertMessage(name string, label risk.RiskLabel) string {
	switch label {
	case risk.LabelHigh:
		return fmt.Sprintf("🚨 HIGH ALERT: %s is at high risk of dropping out. Immediate counseling recommended.", name)
	case risk.LabelMedium:
		return fmt.Sprintf("⚠️ MEDIUM RISK: %s needs attention. Schedule a check-in soon.", name)
	default:
		return fmt.Sprintf("✅ %s is on track. No intervention needed.", name)
	}
}

func toPredictionResponse(p risk.Prediction) dto.RiskPredictionResponse {
	return dto.RiskPredictionResponse{
		StudentID:     p.StudentID,
		Name:          p.Name,
		RiskScore:     p.RiskScore,
		RiskLabel:     int(p.RiskLabel),
		RiskCategory:  p.RiskCategory,
		RiskEmoji:     p.RiskEmoji,
		Probabilities: p.Probabilities,
		Mode:          string(p.Mode),
	}
}
