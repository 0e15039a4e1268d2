package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata" // DISCOUNT_TIMEZONE resolves on images without zoneinfo

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env       string        `env:"ENV,        default=development"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`

	HTTP      HTTPConfig
	DB        DBConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	RateLimit RateLimitConfig
	Discount  DiscountConfig
	Workers   WorkersConfig
	Admin     AdminConfig
}

type HTTPConfig struct {
	Port            string        `env:"PORT,                  default=8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,     default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,    default=15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=10s"`
}

type DBConfig struct {
	Driver          string        `env:"DB_DRIVER,            default=sqlite"`
	DSN             string        `env:"DB_DSN,               default=file:fitness.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,    default=25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,    default=25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME, default=30m"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE,      default=true"`
}

// MongoConfig enables the reservation audit log when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=fitness_club"`
}

// RedisConfig enables idempotency keys and rate limiting when Addr is set.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// AMQPConfig enables the broker sink when URL is set.
type AMQPConfig struct {
	URL   string `env:"AMQP_URL"`
	Queue string `env:"AMQP_QUEUE, default=reservation.events"`
}

type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED,         default=true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY,        default=60"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS,   default=1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL, default=1s"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX,          default=rl"`
}

// DiscountConfig routes roles to policies, e.g. "TRAINER:vip,USER:fixed=0.05".
// Timezone is the IANA zone seasonal policies read the session month in.
type DiscountConfig struct {
	Policies map[string]string `env:"DISCOUNT_POLICIES"`
	Timezone string            `env:"DISCOUNT_TIMEZONE, default=UTC"`
}

// Location resolves Timezone.
func (c DiscountConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: DISCOUNT_TIMEZONE: %w", err)
	}
	return loc, nil
}

type WorkersConfig struct {
	EventWorkers int `env:"EVENT_WORKERS, default=4"`
}

// AdminConfig seeds an ADMIN account at startup when both fields are set.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	if _, err := cfg.Discount.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}
