package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/config"
	"github.com/dropsafe/dropsafe-api/internal/database"
	"github.com/dropsafe/dropsafe-api/internal/handler"
	"github.com/dropsafe/dropsafe-api/internal/middleware"
	"github.com/dropsafe/dropsafe-api/internal/models"
	"github.com/dropsafe/dropsafe-api/internal/observability"
	"github.com/dropsafe/dropsafe-api/internal/repository"
	"github.com/dropsafe/dropsafe-api/internal/risk"
	"github.com/dropsafe/dropsafe-api/internal/router"
	"github.com/dropsafe/dropsafe-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.RiskAssessment{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, high-risk events will not be published")
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	alertRepo := repository.NewAlertRepository(redisClient)

	predictor := risk.NewPredictor(cfg.ModelArtifactPath, logger)
	observability.SetServingMode(string(predictor.Mode()))

	trainerConfig := risk.DefaultTrainerConfig()
	trainerConfig.LabelPolicy = risk.LabelPolicy(cfg.LabelPolicy)
	trainerConfig.Seed = cfg.TrainingSeed

	riskService := service.NewRiskService(studentRepo, assessmentRepo, alertRepo, predictor, redisClient, cfg.AnalysisCacheTTL, cfg.AlertTTL, natsConn, cfg.NATSAlertSubject, validate, logger)
	trainingService := service.NewTrainingService(studentRepo, predictor, cfg.ModelArtifactPath, trainerConfig, logger)
	studentService := service.NewStudentService(studentRepo, validate, logger)
	seedService := service.NewSeedService(studentRepo, cfg.SeedEnabled, cfg.SeedToken, cfg.TrainingSeed, logger)

	studentHandler := handler.NewStudentHandler(studentService, seedService, logger)
	riskHandler := handler.NewRiskHandler(riskService, logger)
	trainingHandler := handler.NewTrainingHandler(trainingService, logger)
	alertHandler := handler.NewAlertHandler(riskService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:  studentHandler,
		RiskHandler:     riskHandler,
		TrainingHandler: trainingHandler,
		AlertHandler:    alertHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().
		Str("mode", string(predictor.Mode())).
		Str("artifact", cfg.ModelArtifactPath).
		Msg("dropsafe api started")

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
