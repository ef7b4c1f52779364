package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ideaspark/internal/config"
	"ideaspark/internal/database"
	"ideaspark/internal/jobs"
	"ideaspark/internal/lock"
	"ideaspark/internal/logger"
	"ideaspark/internal/metrics"
	"ideaspark/internal/repositories"
	"ideaspark/internal/server"
	"ideaspark/internal/services"
	"ideaspark/pkg/rabbitmq"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	// --- Database ---
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	auditRepo := repositories.NewGORMAuditLogRepository(db)

	logService := services.NewLogService(auditRepo, log)

	// --- Events: RabbitMQ when configured, otherwise straight to the audit log ---
	var events services.EventPublisher = logService
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		events = services.NewMQEventPublisher(mqClient)

		if err := mqClient.Consume(rabbitmq.AuditQueue, auditHandler(logService)); err != nil {
			return err
		}
	} else {
		log.Warn("RABBITMQ_URL is not set, audit events are written synchronously")
	}

	locker, closeLocker, err := newLocker(cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	// --- Initialize Services ---
	userService := services.NewUserService(userRepo, events, log)
	authService := services.NewAuthService(userService, cfg.SecretKey, cfg.JWT.AccessLifetime, cfg.JWT.RefreshLifetime, log)

	app, err := server.NewApp(server.Deps{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Users:    userService,
		Profiles: services.NewProfileService(profileRepo, log),
		Auth:     authService,
		Orders:   services.NewOrderService(orderRepo, locker, events, log),
		Logs:     logService,
	})
	if err != nil {
		return err
	}

	// --- Background jobs ---
	if cfg.Jobs.StatsCron != "" {
		scheduler, err := jobs.NewScheduler(cfg.Jobs.StatsCron, userService, log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// --- Start HTTP Server ---
	log.WithFields(logrus.Fields{"port": cfg.AppPort, "env": cfg.Env}).Info("starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("error during fiber shutdown")
	}
	log.Info("server gracefully stopped")
	return nil
}

// newLocker returns the Redis locker when REDIS_URL is set and the
// in-process one otherwise.
func newLocker(cfg *config.Config, log *logrus.Logger) (lock.Locker, func(), error) {
	if cfg.Redis.URL == "" {
		log.Warn("REDIS_URL is not set, order locks are process local")
		return lock.NewMemoryLocker(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return lock.NewRedisLocker(rdb, log), func() { rdb.Close() }, nil
}

// auditHandler feeds broker deliveries to the audit log.
func auditHandler(logs *services.LogService) rabbitmq.Handler {
	return func(routingKey string, body []byte) error {
		err := logs.HandleMessage(routingKey, body)
		metrics.RecordEvent(routingKey, err == nil)
		return err
	}
}
