package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/autopulse/crm-service/internal/api/http"
	"github.com/autopulse/crm-service/internal/api/http/handlers"
	"github.com/autopulse/crm-service/internal/auth"
	"github.com/autopulse/crm-service/internal/config"
	"github.com/autopulse/crm-service/internal/events"
	"github.com/autopulse/crm-service/internal/observability"
	"github.com/autopulse/crm-service/internal/persistence"
	"github.com/autopulse/crm-service/internal/repository"
	"github.com/autopulse/crm-service/internal/service"
	"github.com/autopulse/crm-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	defer store.Close()

	if cfg.SQLite.RunMigrations {
		if err := persistence.RunMigrations(ctx, store.Handle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if cfg.SQLite.SeedDemoData {
		if err := persistence.SeedDemoData(ctx, store.Handle(), cfg.Auth, logger); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	db := store.Handle()
	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	assignmentService := service.NewAssignmentService(userRepo)
	leadService := service.NewLeadService(service.LeadDependencies{
		Store:      store,
		LeadRepo:   leadRepo,
		UserRepo:   userRepo,
		Assignment: assignmentService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	activityService := service.NewActivityService(service.ActivityDependencies{
		Store:        store,
		LeadRepo:     leadRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	pipelineService := service.NewPipelineService(leadService)
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		LeadRepo:     leadRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Cache:        redis,
		CacheTTL:     cfg.Redis.DashboardTTL(),
		Dealership:   cfg.Dealership,
		Logger:       logger,
	})
	dashboardService.RegisterInvalidation(dispatcher)
	userService := service.NewUserService(userRepo, leadRepo)
	authService := service.NewAuthService(cfg.Auth, userRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Leads:          handlers.NewLeadsHandler(leadService),
		Activities:     handlers.NewActivitiesHandler(activityService),
		Users:          handlers.NewUsersHandler(userService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Pipeline:       handlers.NewPipelineHandler(pipelineService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
