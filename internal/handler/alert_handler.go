package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/service"
	"github.com/dropsafe/dropsafe-api/internal/utils"
)

// AlertHandler serves the per-student alert lookups.
type AlertHandler struct {
	risk   service.RiskService
	logger zerolog.Logger
}

// NewAlertHandler constructs the handler.
func NewAlertHandler(risk service.RiskService, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		risk:   risk,
		logger: logger.With().Str("component", "alert_handler").Logger(),
	}
}

// Register wires routes for alerts.
func (h *AlertHandler) Register(router fiber.Router) {
	router.Get("/:studentID", h.get)
}

func (h *AlertHandler) get(c *fiber.Ctx) error {
	studentID := c.Params("studentID")
	alert, ok, err := h.risk.AlertFor(c.Context(), studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", studentID).Msg("failed to fetch alert")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch alert")
	}
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no alert for student")
	}
	return utils.SendSuccess(c, "alert retrieved", alert)
}
