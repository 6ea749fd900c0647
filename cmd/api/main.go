package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tyagiab3/user-service/internal/api/http"
	"github.com/tyagiab3/user-service/internal/api/http/handlers"
	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/config"
	"github.com/tyagiab3/user-service/internal/events"
	"github.com/tyagiab3/user-service/internal/observability"
	"github.com/tyagiab3/user-service/internal/persistence"
	"github.com/tyagiab3/user-service/internal/repository"
	"github.com/tyagiab3/user-service/internal/service"
	"github.com/tyagiab3/user-service/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	userCache := repository.NewUserCache(redis.Client)

	publisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer publisher.Close()

	auditService := service.NewAuditService(auditRepo, logger)
	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:  userRepo,
		RoleRepo:  roleRepo,
		Cache:     userCache,
		Publisher: publisher,
		Audit:     auditService,
	}, logger)
	roleService := service.NewRoleService(roleRepo, userRepo, userCache, auditService, logger)
	adminService := service.NewAdminService(userRepo, auditService, logger)

	authMiddleware := auth.NewMiddleware(userService.TokenCodec(), userRepo, roleRepo, logger)

	var consumer *events.Consumer
	if cfg.Kafka.EnableConsumer {
		consumer = events.NewConsumer(cfg.Kafka, auditService, logger)
		worker.StartEventConsumer(ctx, consumer)
		defer consumer.Stop()
	}

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Roles:          handlers.NewRolesHandler(roleService),
		Admin:          handlers.NewAdminHandler(adminService),
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
