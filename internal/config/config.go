package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/cron"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Database   DatabaseConfig   `envPrefix:"DB_"`
	JWT        JWTConfig        `envPrefix:"JWT_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	RabbitMQ   RabbitMQConfig   `envPrefix:"RABBITMQ_"`
	Tax        TaxConfig        `envPrefix:"TAX_"`
	Sweep      SweepConfig      `envPrefix:"SWEEP_"`
	Attendance AttendanceConfig `envPrefix:"ATTENDANCE_"`
	LogLevel   string           `env:"LOG_LEVEL" envDefault:"info"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"false"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"shift_payroll"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"MIN_CONNS" envDefault:"5"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string        `env:"SECRET_KEY"`
	AccessExpiration time.Duration `env:"ACCESS_EXPIRATION_TIME" envDefault:"1h"`
}

// RedisConfig is optional; an empty Addr keeps revocations in memory.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// RabbitMQConfig is optional; an empty DSN disables event publishing.
type RabbitMQConfig struct {
	DSN            string        `env:"DSN"`
	Exchange       string        `env:"EXCHANGE" envDefault:"shift_payroll.events"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"10s"`
}

type TaxConfig struct {
	IncomeRate        decimal.Decimal `env:"INCOME_RATE" envDefault:"0.03"`
	LocalRateOnIncome decimal.Decimal `env:"LOCAL_RATE_ON_INCOME" envDefault:"0.10"`
	OtherRate         decimal.Decimal `env:"OTHER_RATE" envDefault:"0"`
}

type SweepConfig struct {
	Enabled   bool          `env:"ENABLED" envDefault:"true"`
	Interval  time.Duration `env:"INTERVAL" envDefault:"24h"`
	Tolerance time.Duration `env:"TOLERANCE" envDefault:"2h"`
	MaxOpen   time.Duration `env:"MAX_OPEN" envDefault:"16h"`
	PageSize  int           `env:"PAGE_SIZE" envDefault:"500"`
}

type AttendanceConfig struct {
	GraceMinutes       int `env:"GRACE_MINUTES" envDefault:"0"`
	EarlyWindowMinutes int `env:"EARLY_WINDOW_MINUTES" envDefault:"60"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := Parse(nil)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse parses cfg from the process environment, or from environment when it
// is non-nil.
func Parse(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}

	one := decimal.NewFromInt(1)
	for name, rate := range map[string]decimal.Decimal{
		"TAX_INCOME_RATE":          c.Tax.IncomeRate,
		"TAX_LOCAL_RATE_ON_INCOME": c.Tax.LocalRateOnIncome,
		"TAX_OTHER_RATE":           c.Tax.OtherRate,
	} {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}

	if c.Attendance.GraceMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_GRACE_MINUTES cannot be negative")
	}
	if c.Attendance.EarlyWindowMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_EARLY_WINDOW_MINUTES cannot be negative")
	}
	if c.Sweep.PageSize <= 0 {
		return fmt.Errorf("SWEEP_PAGE_SIZE must be positive")
	}
	if c.Sweep.MaxOpen <= 0 {
		return fmt.Errorf("SWEEP_MAX_OPEN must be positive")
	}
	return nil
}

func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{MaxConns: c.Database.MaxConns, MinConns: c.Database.MinConns}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) TaxRates() payroll.TaxRates {
	return payroll.TaxRates{
		IncomeRate:        c.Tax.IncomeRate,
		LocalRateOnIncome: c.Tax.LocalRateOnIncome,
		OtherRate:         c.Tax.OtherRate,
	}
}

func (c *Config) AttendancePolicy() attendance.Policy {
	return attendance.Policy{
		Grace:       time.Duration(c.Attendance.GraceMinutes) * time.Minute,
		EarlyWindow: time.Duration(c.Attendance.EarlyWindowMinutes) * time.Minute,
	}
}

func (c *Config) SweepConfig() cron.SweepConfig {
	return cron.SweepConfig{
		Tolerance: c.Sweep.Tolerance,
		MaxOpen:   c.Sweep.MaxOpen,
		PageSize:  c.Sweep.PageSize,
		Interval:  c.Sweep.Interval,
	}
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
