package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/handler"
	"github.com/dropsafe/dropsafe-api/internal/risk"
	"github.com/dropsafe/dropsafe-api/internal/service"
)

type mockRiskService struct {
	summary     dto.AssessmentSummaryResponse
	assessErr   error
	adHoc       []dto.RiskPredictionResponse
	adHocErr    error
	importances []dto.FeatureImportanceResponse
	hasModel    bool
}

func (m *mockRiskService) AssessAll(context.Context) (dto.AssessmentSummaryResponse, error) {
	return m.summary, m.assessErr
}

func (m *mockRiskService) ScoreAdHoc(_ context.Context, req dto.AdHocScoreRequest) ([]dto.RiskPredictionResponse, error) {
	return m.adHoc, m.adHocErr
}

func (m *mockRiskService) AssessFourLevel(context.Context) ([]dto.FourLevelPredictionResponse, error) {
	return nil, m.assessErr
}

func (m *mockRiskService) Analysis(context.Context) (risk.CohortAnalysis, error) {
	return risk.CohortAnalysis{}, m.assessErr
}

func (m *mockRiskService) FeatureImportances(context.Context) ([]dto.FeatureImportanceResponse, bool) {
	return m.importances, m.hasModel
}

func (m *mockRiskService) RiskLists(context.Context) (dto.RiskListsResponse, error) {
	return dto.RiskListsResponse{}, m.assessErr
}

func (m *mockRiskService) History(context.Context, string, int) ([]dto.AssessmentRecordResponse, error) {
	return nil, nil
}

func (m *mockRiskService) AlertFor(context.Context, string) (dto.AlertResponse, bool, error) {
	return dto.AlertResponse{}, false, nil
}

func newRiskApp(svc service.RiskService) *fiber.App {
	app := fiber.New()
	handler.NewRiskHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/risk"))
	return app
}

func TestRiskHandlerAssess(t *testing.T) {
	svc := &mockRiskService{summary: dto.AssessmentSummaryResponse{Total: 2, Mode: "rule"}}
	app := newRiskApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/assess", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                          `json:"success"`
		Data    dto.AssessmentSummaryResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.True(t, response.Success)
	require.Equal(t, 2, response.Data.Total)
	require.Equal(t, "rule", response.Data.Mode)
}

func TestRiskHandlerAssessEmptyCohort(t *testing.T) {
	app := newRiskApp(&mockRiskService{assessErr: service.ErrNoStudents})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/risk/assess", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRiskHandlerScoreBadBody(t *testing.T) {
	app := newRiskApp(&mockRiskService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRiskHandlerImportancesUnavailable(t *testing.T) {
	app := newRiskApp(&mockRiskService{hasModel: false})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/risk/importances", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

type mockTrainingService struct {
	response dto.TrainResponse
	err      error
	status   dto.ModelStatusResponse
}

func (m *mockTrainingService) Train(context.Context, dto.TrainRequest) (dto.TrainResponse, error) {
	return m.response, m.err
}

func (m *mockTrainingService) Status(context.Context) dto.ModelStatusResponse {
	return m.status
}

func TestTrainingHandlerConflict(t *testing.T) {
	app := fiber.New()
	svc := &mockTrainingService{err: service.ErrTrainingInProgress}
	handler.NewTrainingHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/model"))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/model/train", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestTrainingHandlerDegenerateLabels(t *testing.T) {
	app := fiber.New()
	svc := &mockTrainingService{err: &risk.TrainingFailure{Reason: "proxy labels collapsed to a single class"}}
	handler.NewTrainingHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/model"))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/model/train", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTrainingHandlerStatus(t *testing.T) {
	app := fiber.New()
	svc := &mockTrainingService{status: dto.ModelStatusResponse{Mode: "rule"}}
	handler.NewTrainingHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/model"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/model/status", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.ModelStatusResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.Equal(t, "rule", response.Data.Mode)
}
