package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/models"
	"github.com/dropsafe/dropsafe-api/internal/repository"
	"github.com/dropsafe/dropsafe-api/internal/risk"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService populates the cohort with a synthetic student population.
type SeedService interface {
	SeedCohort(ctx context.Context, token string, count int) (int64, error)
}

type seedService struct {
	repo    repository.StudentRepository
	enabled bool
	token   string
	seed    int64
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(repo repository.StudentRepository, enabled bool, token string, seed int64, logger zerolog.Logger) SeedService {
	return &seedService{
		repo:    repo,
		enabled: enabled,
		token:   token,
		seed:    seed,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedCohort(ctx context.Context, token string, count int) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}
	if count <= 0 {
		count = 100
	}

	records := risk.GenerateSampleCohort(count, s.seed)
	students := make([]models.Student, len(records))
	for i, record := range records {
		students[i] = studentFromRecord(record)
	}

	affected, err := s.repo.UpsertBatch(ctx, students)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("affected", affected).Msg("cohort seeded")
	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return constantTimeEquals(expected, strings.TrimSpace(token))
}

func constantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}
