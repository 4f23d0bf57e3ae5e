package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var retryDelay = 5 * time.Second

func ConnectGORMWithRetry(dsn string, maxRetries int, logger ...*zap.Logger) (*gorm.DB, error) {
	log := pick(logger).Named("connection.db")
	var lastErr error

	for i := 1; i <= maxRetries; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
			SkipDefaultTransaction: true,
			TranslateError:         true,
		})
		if err != nil {
			lastErr = err
			log.Warn("gorm open failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Warn("db ping failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		log.Info("connected to database")
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

func ConnectRedisWithRetry(addr, password string, maxRetries int, logger ...*zap.Logger) (*redis.Client, error) {
	log := pick(logger).Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if lastErr = rdb.Ping(context.Background()).Err(); lastErr == nil {
			log.Info("connected to redis")
			return rdb, nil
		}

		log.Warn("redis ping failed", zap.Int("attempt", i), zap.Error(lastErr))
		time.Sleep(retryDelay)
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}

// ConnectKafkaWithRetry waits until a broker accepts connections. The caller
// builds writers/readers from the same broker list afterwards.
func ConnectKafkaWithRetry(brokers []string, maxRetries int, logger ...*zap.Logger) error {
	log := pick(logger).Named("connection.kafka")
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
		cancel()
		if err == nil {
			_ = conn.Close()
			log.Info("connected to kafka", zap.Strings("brokers", brokers))
			return nil
		}

		lastErr = err
		log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return fmt.Errorf("kafka connection failed after %d retries: %w", maxRetries, lastErr)
}

func pick(logger []*zap.Logger) *zap.Logger {
	if len(logger) > 0 && logger[0] != nil {
		return logger[0]
	}
	return zap.L()
}
