package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/risk"
	"github.com/dropsafe/dropsafe-api/internal/service"
	"github.com/dropsafe/dropsafe-api/internal/utils"
)

// TrainingHandler handles model training and status endpoints.
type TrainingHandler struct {
	training service.TrainingService
	logger   zerolog.Logger
}

// NewTrainingHandler constructs the handler.
func NewTrainingHandler(training service.TrainingService, logger zerolog.Logger) *TrainingHandler {
	return &TrainingHandler{
		training: training,
		logger:   logger.With().Str("component", "training_handler").Logger(),
	}
}

// Register wires routes for model management.
func (h *TrainingHandler) Register(router fiber.Router) {
	router.Post("/train", h.train)
	router.Get("/status", h.status)
}

func (h *TrainingHandler) train(c *fiber.Ctx) error {
	var req dto.TrainRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	response, err := h.training.Train(c.Context(), req)
	if err != nil {
		var failure *risk.TrainingFailure
		switch {
		case errors.Is(err, service.ErrTrainingInProgress):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrNoStudents):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.As(err, &failure):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("training run failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "training run failed")
		}
	}
	return utils.SendSuccess(c, "model trained", response)
}

func (h *TrainingHandler) status(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "model status retrieved", h.training.Status(c.Context()))
}
