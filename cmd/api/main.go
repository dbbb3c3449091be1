package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/config"
	"github.com/resource-request-api/internal/handler"
	"github.com/resource-request-api/internal/repository"
	"github.com/resource-request-api/internal/service"
	"github.com/resource-request-api/internal/worker"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {
	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Подключение к БД
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Запуск миграций
	if err := runMigrations(sqlDB); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Фоновая очередь уведомлений и трансляций
	outbox := worker.NewOutbox(logger, cfg.Outbox.Workers, cfg.Outbox.Buffer)
	outbox.Start()

	publisher, closePublisher, err := newPublisher(cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to configure broadcast", slog.Any("error", err))
		os.Exit(1)
	}
	defer closePublisher()
	broadcaster := broadcast.NewBroadcaster(publisher, outbox)

	// Инициализация репозиториев
	txManager := repository.NewTxManager(db)
	unitRepo := repository.NewUnitRepository(db)
	posRepo := repository.NewPositionRepository(db)
	empRepo := repository.NewEmployeeRepository(db)
	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Инициализация сервисов
	notifService := service.NewNotificationService(notifRepo, userRepo, outbox, broadcaster, logger)
	unitService := service.NewUnitService(txManager, unitRepo, posRepo, broadcaster)
	posService := service.NewPositionService(posRepo, unitRepo)
	empService := service.NewEmployeeService(txManager, empRepo, posRepo, userRepo, broadcaster, logger, cfg.Matricule.MaxAttempts)
	userService := service.NewUserService(userRepo, empRepo)
	resourceService := service.NewResourceService(txManager, resourceRepo, userRepo, notifService, broadcaster)
	workflowService := service.NewWorkflowService(txManager, requestRepo, resourceRepo, empRepo, userRepo, notifService, broadcaster, logger)

	// Настройка роутера
	router := handler.NewRouter(handler.Handlers{
		Units:         handler.NewUnitHandler(unitService, posService, logger),
		Employees:     handler.NewEmployeeHandler(empService, logger),
		Users:         handler.NewUserHandler(userService, logger),
		Resources:     handler.NewResourceHandler(resourceService, logger),
		Workflow:      handler.NewWorkflowHandler(workflowService, logger),
		Notifications: handler.NewNotificationHandler(notifService, logger),
	}, logger)
	httpHandler := router.Setup()

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}

		// Досылаем уже поставленные уведомления до закрытия БД
		outbox.Close()
		close(done)
	}()

	logger.Info("server is starting", slog.String("port", cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 30; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
			TranslateError: true,
		})
		if err == nil {
			sqlDB, _ := db.DB()
			if sqlDB.Ping() == nil {
				return db, nil
			}
		}
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("failed to connect to database after 30 attempts: %w", err)
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// newPublisher выбирает Redis при заданном REDIS_URL, иначе пишет события в лог
func newPublisher(cfg config.RedisConfig, logger *slog.Logger) (broadcast.Publisher, func(), error) {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set, broadcasting to log")
		return broadcast.NewLogPublisher(logger), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Трансляция необязательна: сервис продолжает работу, события будут теряться
		logger.Warn("redis ping failed", slog.Any("error", err))
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis client", slog.Any("error", err))
		}
	}
	return broadcast.NewRedisPublisher(rdb, cfg.Channel), closeFn, nil
}
