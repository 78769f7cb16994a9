package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"displaydeck/internal/app"
	"displaydeck/internal/config"
	"displaydeck/internal/model"
	mysqlClient "displaydeck/internal/platform/mysql"
	rabbitmqClient "displaydeck/internal/platform/rabbitmq"
	redisClient "displaydeck/internal/platform/redis"
	"displaydeck/internal/repository"
	"displaydeck/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	CleanupWorker *worker.CleanupWorker
	Logger        *slog.Logger

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := slog.Default().With("app", cfg.App.Name)

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Operator{},
		&model.Session{},
		&model.Display{},
		&model.Blob{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.CleanupQueue)
	if err != nil {
		return nil, err
	}

	displayService := app.NewDisplayService(repository.NewDisplayRepository(mysqlDB))
	blobRepo := repository.NewBlobRepository(mysqlDB)
	cleanupService := app.NewCleanupService(displayService, blobRepo, logger)
	cleanupWorker := worker.NewCleanupWorker(mqConn, cleanupService, cfg.RabbitMQ.CleanupQueue, logger)
	if err := cleanupWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start cleanup worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		CleanupWorker: cleanupWorker,
		Logger:        logger,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.CleanupWorker != nil {
		a.CleanupWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
