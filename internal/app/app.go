package app

import (
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-hrms/internal/config"
	"go-hrms/internal/metrics"
	"go-hrms/internal/shared/connection"
)

// App holds the shared infrastructure of every binary.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	SQL     *sql.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// New connects the database and Redis. Kafka is connected by the binaries
// that need it.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.L()
	}

	db, err := connection.ConnectGORMWithRetry(cfg.Database.DSN(), cfg.Database.Retries, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Retries, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		DB:      db,
		SQL:     sqlDB,
		Redis:   rdb,
		Metrics: metrics.New(),
		Logger:  logger,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.SQL != nil {
		errs = append(errs, a.SQL.Close())
	}
	return errors.Join(errs...)
}
