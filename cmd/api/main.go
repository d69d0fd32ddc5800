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
	"github.com/rs/zerolog"

	"github.com/peergrade-io/peergrade-api/internal/config"
	"github.com/peergrade-io/peergrade-api/internal/database"
	"github.com/peergrade-io/peergrade-api/internal/handler"
	"github.com/peergrade-io/peergrade-api/internal/middleware"
	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/repository"
	"github.com/peergrade-io/peergrade-api/internal/router"
	"github.com/peergrade-io/peergrade-api/internal/service"
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

	if err := db.AutoMigrate(
		&models.Task{},
		&models.Team{},
		&models.Person{},
		&models.TeamMember{},
		&models.Submission{},
		&models.ReviewAssignment{},
		&models.ReviewPair{},
		&models.MetaReview{},
		&models.RubricItem{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var events service.AssignmentEventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		events = service.NewNATSEventPublisher(natsConn, cfg.EventSubject, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	rubricRepo := repository.NewRubricRepository(db)

	taskService := service.NewTaskService(taskRepo, teamRepo, submissionRepo, validate, logger)
	assignmentService := service.NewAssignmentService(taskRepo, assignmentRepo, redisClient, cfg.MapCacheTTL, events, validate, logger)
	reviewService := service.NewReviewService(reviewRepo, rubricRepo, validate, logger)
	gradingService := service.NewGradingService(taskRepo, assignmentRepo, rubricRepo, logger)

	taskHandler := handler.NewTaskHandler(taskService, gradingService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TaskHandler:       taskHandler,
		AssignmentHandler: assignmentHandler,
		ReviewHandler:     reviewHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

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
