package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/service"
	"github.com/dropsafe/dropsafe-api/internal/utils"
)

// RiskHandler handles scoring and cohort analysis endpoints.
type RiskHandler struct {
	risk   service.RiskService
	logger zerolog.Logger
}

// NewRiskHandler constructs the handler.
func NewRiskHandler(risk service.RiskService, logger zerolog.Logger) *RiskHandler {
	return &RiskHandler{
		risk:   risk,
		logger: logger.With().Str("component", "risk_handler").Logger(),
	}
}

// Register wires routes for risk scoring.
func (h *RiskHandler) Register(router fiber.Router) {
	router.Post("/assess", h.assess)
	router.Post("/score", h.score)
	router.Get("/four-level", h.fourLevel)
	router.Get("/analysis", h.analysis)
	router.Get("/lists", h.lists)
	router.Get("/importances", h.importances)
	router.Get("/history/:studentID", h.history)
}

func (h *RiskHandler) assess(c *fiber.Ctx) error {
	summary, err := h.risk.AssessAll(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoStudents) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to assess cohort")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to assess cohort")
	}
	return utils.SendSuccess(c, "cohort assessed", summary)
}

func (h *RiskHandler) score(c *fiber.Ctx) error {
	var req dto.AdHocScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	predictions, err := h.risk.ScoreAdHoc(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to score records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to score records")
	}
	return utils.SendSuccess(c, "records scored", predictions)
}

func (h *RiskHandler) fourLevel(c *fiber.Ctx) error {
	predictions, err := h.risk.AssessFourLevel(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoStudents) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute four-level assessment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute four-level assessment")
	}
	return utils.SendSuccess(c, "four-level assessment computed", predictions)
}

func (h *RiskHandler) analysis(c *fiber.Ctx) error {
	analysis, err := h.risk.Analysis(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoStudents) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to analyze cohort")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to analyze cohort")
	}
	return utils.SendSuccess(c, "cohort analysis computed", analysis)
}

func (h *RiskHandler) lists(c *fiber.Ctx) error {
	lists, err := h.risk.RiskLists(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoStudents) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build risk lists")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build risk lists")
	}
	return utils.SendSuccess(c, "risk lists retrieved", lists)
}

func (h *RiskHandler) history(c *fiber.Ctx) error {
	studentID := c.Params("studentID")
	limit := c.QueryInt("limit", 50)

	history, err := h.risk.History(c.Context(), studentID, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", studentID).Msg("failed to fetch assessment history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch assessment history")
	}
	return utils.SendSuccess(c, "assessment history retrieved", history)
}

func (h *RiskHandler) importances(c *fiber.Ctx) error {
	table, ok := h.risk.FeatureImportances(c.Context())
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "feature importances unavailable in rule mode")
	}
	return utils.SendSuccess(c, "feature importances retrieved", table)
}
