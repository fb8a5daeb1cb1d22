package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MQBackendNone     = "none"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

type Config struct {
	ServerPort int           `env:"SERVER_PORT" validate:"min=0,max=65535"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info" validate:"loglevel"`
	JWTSecret  string        `env:"JWT_SECRET" validate:"required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"720h" validate:"gt=0"`
	Database   DatabaseConfig
	MQ         MQConfig
}

type DatabaseConfig struct {
	Driver         string `env:"DB_DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	URL            string `env:"DATABASE_URL"`
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           int    `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"taskdesk"`
	Password       string `env:"DB_PASSWORD" envDefault:"password"`
	DBName         string `env:"DB_NAME" envDefault:"taskdesk_db"`
	UseSSL         bool   `env:"DB_USE_SSL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://internal/db/migrations"`
}

type MQConfig struct {
	Backend     string `env:"MQ_BACKEND" envDefault:"none" validate:"oneof=none rabbitmq pubsub"`
	TaskChannel string `env:"TASK_EVENTS_CHANNEL" envDefault:"task-events"`
	RabbitMQ    RabbitMQConfig
	PubSub      PubSubConfig
}

type RabbitMQConfig struct {
	URL             string `env:"RABBITMQ_URL" validate:"required_if=Enabled true"`
	PrefetchCount   int    `env:"RABBITMQ_PREFETCH" envDefault:"10"`
	QueueDurable    bool   `env:"RABBITMQ_QUEUE_DURABLE" envDefault:"true"`
	QueueAutoDelete bool   `env:"RABBITMQ_QUEUE_AUTO_DELETE"`
	Enabled         bool
}

type PubSubConfig struct {
	ProjectID          string `env:"PUBSUB_PROJECT_ID" validate:"required_if=Enabled true"`
	CredentialsFile    string `env:"PUBSUB_CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"PUBSUB_SUBSCRIPTION_SUFFIX" envDefault:"-sub"`
	Enabled            bool
}

// LoadConfig reads configuration from the environment. With ENV=dev a .env
// file is loaded first when one exists. A missing JWT_SECRET is reported as
// an error.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ServerPort == 0 {
		if port, exists := os.LookupEnv("PORT"); exists {
			if _, err := fmt.Sscanf(port, "%d", &cfg.ServerPort); err != nil {
				return Config{}, fmt.Errorf("invalid PORT %q", port)
			}
		}
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = 8080
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.URL == "" {
		cfg.Database.URL = "taskdesk.db"
	}
	cfg.MQ.RabbitMQ.Enabled = cfg.MQ.Backend == MQBackendRabbitMQ
	cfg.MQ.PubSub.Enabled = cfg.MQ.Backend == MQBackendPubSub

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	v := validator.New()
	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.StructField() == "JWTSecret" {
				return ErrMissingJWTSecret
			}
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return err
}

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	switch fieldLevel.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
