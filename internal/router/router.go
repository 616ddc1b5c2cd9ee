package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dropsafe/dropsafe-api/internal/config"
	"github.com/dropsafe/dropsafe-api/internal/handler"
	"github.com/dropsafe/dropsafe-api/internal/middleware"
	"github.com/dropsafe/dropsafe-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler  *handler.StudentHandler
	RiskHandler     *handler.RiskHandler
	TrainingHandler *handler.TrainingHandler
	AlertHandler    *handler.AlertHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware, middleware.RequireRole("teacher", "counselor", "admin"))
		deps.StudentHandler.Register(students)
	}

	if deps.RiskHandler != nil {
		risk := api.Group("/risk", jwtMiddleware, middleware.RequireRole("teacher", "counselor", "admin"))
		deps.RiskHandler.Register(risk)
	}

	if deps.TrainingHandler != nil {
		model := api.Group("/model", jwtMiddleware, middleware.RequireRole("counselor", "admin"))
		model.Use(middleware.RateLimit("model", 5, time.Minute))
		deps.TrainingHandler.Register(model)
	}

	if deps.AlertHandler != nil {
		alerts := api.Group("/alerts", jwtMiddleware)
		deps.AlertHandler.Register(alerts)
	}
}
