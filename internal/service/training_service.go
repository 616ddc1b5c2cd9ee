package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/observability"
	"github.com/dropsafe/dropsafe-api/internal/repository"
	"github.com/dropsafe/dropsafe-api/internal/risk"
)

// ErrTrainingInProgress indicates a concurrent training run holds the lock.
var ErrTrainingInProgress = errors.New("training already in progress")

// TrainingService runs the train-select-persist cycle and reports model state.
type TrainingService interface {
	Train(ctx context.Context, req dto.TrainRequest) (dto.TrainResponse, error)
	Status(ctx context.Context) dto.ModelStatusResponse
}

type trainingService struct {
	students     repository.StudentRepository
	predictor    *risk.Predictor
	artifactPath string
	baseConfig   risk.TrainerConfig
	mu           sync.Mutex
	tracer       trace.Tracer
	logger       zerolog.Logger
}

// NewTrainingService constructs the training service. Training runs are
// serialized per process; the artifact swap itself is atomic so readers
// never observe a partial file.
func NewTrainingService(students repository.StudentRepository, predictor *risk.Predictor, artifactPath string, cfg risk.TrainerConfig, logger zerolog.Logger) TrainingService {
	return &trainingService{
		students:     students,
		predictor:    predictor,
		artifactPath: artifactPath,
		baseConfig:   cfg,
		tracer:       otel.Tracer("github.com/dropsafe/dropsafe-api/internal/service/training"),
		logger:       logger.With().Str("component", "training_service").Logger(),
	}
}

func (s *trainingService) Train(ctx context.Context, req dto.TrainRequest) (dto.TrainResponse, error) {
	if !s.mu.TryLock() {
		return dto.TrainResponse{}, ErrTrainingInProgress
	}
	defer s.mu.Unlock()

	spanCtx, span := s.tracer.Start(ctx, "training.run")
	defer span.End()

	start := time.Now()
	cfg := s.baseConfig
	if req.LabelPolicy != "" {
		cfg.LabelPolicy = risk.LabelPolicy(req.LabelPolicy)
	}
	span.SetAttributes(attribute.String("training.label_policy", string(cfg.LabelPolicy)))

	students, err := s.students.List(spanCtx)
	if err != nil {
		span.RecordError(err)
		observability.TrainingRuns().WithLabelValues("error").Inc()
		return dto.TrainResponse{}, err
	}
	if len(students) == 0 {
		observability.TrainingRuns().WithLabelValues("error").Inc()
		return dto.TrainResponse{}, ErrNoStudents
	}

	records := make([]risk.StudentRecord, len(students))
	for i, student := range students {
		status, _ := risk.ParseFeeStatus(student.FeesStatus)
		records[i] = risk.StudentRecord{
			StudentID:  student.StudentID,
			Name:       student.Name,
			Attendance: student.AttendancePercentage,
			Marks:      student.MarksPercentage,
			FeesStatus: status,
		}
	}

	trainer := risk.NewTrainer(cfg, s.logger)
	pipeline, err := trainer.Train(records)
	if err != nil {
		span.RecordError(err)
		observability.TrainingRuns().WithLabelValues("failure").Inc()
		s.logger.Error().Err(err).Msg("training failed")
		return dto.TrainResponse{}, err
	}

	if err := risk.SaveArtifact(s.artifactPath, pipeline); err != nil {
		span.RecordError(err)
		observability.TrainingRuns().WithLabelValues("error").Inc()
		return dto.TrainResponse{}, err
	}
	if err := s.predictor.Reload(); err != nil {
		span.RecordError(err)
		observability.TrainingRuns().WithLabelValues("error").Inc()
		return dto.TrainResponse{}, err
	}

	duration := time.Since(start)
	observability.TrainingDuration().Observe(duration.Seconds())
	observability.TrainingRuns().WithLabelValues("success").Inc()
	observability.SetServingMode(string(s.predictor.Mode()))

	s.logger.Info().
		Str("algorithm", pipeline.Algorithm).
		Str("label_policy", string(pipeline.LabelPolicy)).
		Int("samples", len(records)).
		Dur("duration", duration).
		Msg("training completed")

	return dto.TrainResponse{
		Algorithm:   pipeline.Algorithm,
		LabelPolicy: string(pipeline.LabelPolicy),
		TrainedAt:   pipeline.TrainedAt,
		Samples:     len(records),
		Performance: toPerformanceResponses(pipeline.Performance),
	}, nil
}

func (s *trainingService) Status(ctx context.Context) dto.ModelStatusResponse {
	pipeline := s.predictor.Pipeline()
	status := dto.ModelStatusResponse{Mode: string(s.predictor.Mode())}
	if pipeline == nil {
		return status
	}

	trainedAt := pipeline.TrainedAt
	status.Algorithm = pipeline.Algorithm
	status.LabelPolicy = string(pipeline.LabelPolicy)
	status.TrainedAt = &trainedAt
	status.Features = len(pipeline.FeatureNames)
	status.Performance = toPerformanceResponses(pipeline.Performance)
	return status
}

func toPerformanceResponses(performance []risk.AlgorithmPerformance) []dto.AlgorithmPerformanceResponse {
	responses := make([]dto.AlgorithmPerformanceResponse, len(performance))
	for i, p := range performance {
		responses[i] = dto.AlgorithmPerformanceResponse{
			Algorithm:   p.Algorithm,
			CVMean:      p.CVMean,
			CVStd:       p.CVStd,
			ValAccuracy: p.ValAccuracy,
			AUCScore:    p.AUCScore,
			Best:        p.Best,
		}
	}
	return responses
}
