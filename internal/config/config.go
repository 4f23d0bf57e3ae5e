package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type DatabaseOptions struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"hrms"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	Retries  int    `env:"DB_CONNECT_RETRIES" envDefault:"10"`
}

func (d DatabaseOptions) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisOptions struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	Retries  int    `env:"REDIS_CONNECT_RETRIES" envDefault:"10"`
}

type KafkaOptions struct {
	Brokers           []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	NotificationTopic string        `env:"KAFKA_NOTIFICATION_TOPIC" envDefault:"hr.leave.notifications.v1"`
	ConsumerGroup     string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"hrms-notifications"`
	RelayInterval     time.Duration `env:"OUTBOX_RELAY_INTERVAL" envDefault:"2s"`
	RelayBatchSize    int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"50"`
	Retries           int           `env:"KAFKA_CONNECT_RETRIES" envDefault:"10"`
}

type AuthOptions struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
	LoginRPS        float64       `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"1"`
	LoginBurst      int           `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"5"`
}

type HTTPOptions struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// LeaveOptions tunes the leave workflow and the monthly accrual job.
type LeaveOptions struct {
	MinNoticeDays   int           `env:"LEAVE_MIN_NOTICE_DAYS" envDefault:"2"`
	AccrualEL       string        `env:"LEAVE_ACCRUAL_EL" envDefault:"1"`
	AccrualSL       string        `env:"LEAVE_ACCRUAL_SL" envDefault:"1"`
	AccrualInterval time.Duration `env:"ACCRUAL_SCHEDULE_INTERVAL" envDefault:"1h"`
	AccrualLockTTL  time.Duration `env:"ACCRUAL_LOCK_TTL" envDefault:"30m"`
}

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Database DatabaseOptions
	Redis    RedisOptions
	Kafka    KafkaOptions
	Auth     AuthOptions
	HTTP     HTTPOptions
	Leave    LeaveOptions
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Leave.MinNoticeDays < 0 {
		return fmt.Errorf("LEAVE_MIN_NOTICE_DAYS must be non-negative, got %d", c.Leave.MinNoticeDays)
	}
	return nil
}

// Load reads the given dotenv files (missing ones are skipped) and then
// parses the process environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
