package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/dto"
	"github.com/dropsafe/dropsafe-api/internal/risk"
	"github.com/dropsafe/dropsafe-api/internal/service"
	"github.com/dropsafe/dropsafe-api/internal/utils"
)

// StudentHandler handles cohort management endpoints.
type StudentHandler struct {
	students service.StudentService
	seeder   service.SeedService
	logger   zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students service.StudentService, seeder service.SeedService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		seeder:   seeder,
		logger:   logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires routes for cohort management.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/upload", h.upload)
	router.Post("/seed", h.seed)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.students.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var req dto.StudentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.students.Create(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create student")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student saved", student)
}

func (h *StudentHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	opened, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}

	summary, err := h.students.UploadCSV(c.Context(), data)
	if err != nil {
		var validation *risk.DataValidationError
		switch {
		case errors.Is(err, service.ErrUnsupportedUpload), errors.Is(err, service.ErrEmptyUpload):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.As(err, &validation):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to ingest cohort csv")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to ingest cohort csv")
		}
	}
	return utils.SendSuccess(c, "cohort ingested", summary)
}

func (h *StudentHandler) seed(c *fiber.Ctx) error {
	var req dto.SeedRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	affected, err := h.seeder.SeedCohort(c.Context(), req.Token, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to seed cohort")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to seed cohort")
		}
	}
	return utils.SendSuccess(c, "cohort seeded", fiber.Map{"affected": affected})
}
