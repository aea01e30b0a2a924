package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Mode               string `mapstructure:"mode"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	Version            string `mapstructure:"version"`
	TimeZone           string `mapstructure:"time_zone"`
	*LogConfig         `mapstructure:"log"`
	*MongodbConfig     `mapstructure:"mongodb"`
	*WorkerConfig      `mapstructure:"worker"`
	*RabbitMQConfig    `mapstructure:"rabbitmq"`
	*JwtConfig         `mapstructure:"jwt"`
	*SessionConfig     `mapstructure:"session"`
	*CheckoutConfig    `mapstructure:"checkout"`
	*InviteConfig      `mapstructure:"invite"`
	*RedisConfig       `mapstructure:"redis"`
	*RateLimiterConfig `mapstructure:"rate_limiter"`
	*CorsConfig        `mapstructure:"cors"`
}

// JwtConfig holds the JWT signing configuration.
type JwtConfig struct {
	Algorithm      string `mapstructure:"algorithm"`
	Secret         string `mapstructure:"secret"`
	PrivateKeyFile string `mapstructure:"private_key_file"`
	PublicKeyFile  string `mapstructure:"public_key_file"`
}

// SessionConfig holds operator session lifetimes.
type SessionConfig struct {
	IdleMinutes  int `mapstructure:"idle_minutes"`
	RememberDays int `mapstructure:"remember_days"`
}

// CheckoutConfig holds order engine tunables.
type CheckoutConfig struct {
	ReservationMinutes int     `mapstructure:"reservation_minutes"`
	FeeRate            float64 `mapstructure:"fee_rate"`
}

// InviteConfig holds the invite flow tunables.
type InviteConfig struct {
	ExpiryDays int `mapstructure:"expiry_days"`
}

// MongodbConfig holds the MongoDB configuration.
type MongodbConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// WorkerConfig holds all background worker configurations.
type WorkerConfig struct {
	Outbox         OutboxWorkerConfig   `mapstructure:"outbox"`
	OrderExpirer   OrderExpirerConfig   `mapstructure:"order_expirer"`
	AuditRetention AuditRetentionConfig `mapstructure:"audit_retention"`
}

// OrderExpirerConfig holds the configuration for the pending order sweep.
type OrderExpirerConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	BatchSize       int `mapstructure:"batch_size"`
}

// AuditRetentionConfig holds the configuration for the audit purge worker.
type AuditRetentionConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	RetentionDays   int `mapstructure:"retention_days"`
}

// OutboxWorkerConfig holds the configuration for the outbox polling worker.
type OutboxWorkerConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	BatchSize       int `mapstructure:"batch_size"`
}

// RabbitMQConfig holds the RabbitMQ configuration.
type RabbitMQConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	OrderEmailTopic   string `mapstructure:"order_email_topic"`
	PaymentEventTopic string `mapstructure:"payment_event_topic"`
}

// RedisConfig holds the Redis client configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimiterPolicy defines the limit and interval for a policy.
type RateLimiterPolicy struct {
	Interval string `mapstructure:"interval"` // e.g., "1s", "1m", "1h"
	Limit    int    `mapstructure:"limit"`
}

// RateLimiterConfig holds all rate limiting policies.
type RateLimiterConfig struct {
	Default  RateLimiterPolicy            `mapstructure:"default"`
	Policies map[string]RateLimiterPolicy `mapstructure:"policies"`
}

// CorsConfig holds the allowed origins for browser clients.
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NewConfig loads the application configuration from a file.
func NewConfig(confFile string) (*AppConfig, error) {
	// Load .env file. It's okay if it doesn't exist. Errors are ignored.
	// This is mainly for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(confFile)

	// Replace dots in keys with underscores for environment variables (e.g., `mongodb.host` -> `MONGODB_HOST`).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Enable automatic reading of environment variables.
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set timezone
	loc, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	time.Local = loc

	return &conf, nil
}

// SessionIdleDuration returns the rolling session window, defaulting to 30
// minutes when unset.
func (c *AppConfig) SessionIdleDuration() time.Duration {
	if c.SessionConfig == nil || c.SessionConfig.IdleMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionConfig.IdleMinutes) * time.Minute
}

// SessionRememberDuration returns the fixed remembered-session lifetime,
// defaulting to 7 days when unset.
func (c *AppConfig) SessionRememberDuration() time.Duration {
	if c.SessionConfig == nil || c.SessionConfig.RememberDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.SessionConfig.RememberDays) * 24 * time.Hour
}

// ReservationDuration returns how long a pending order holds its seats.
func (c *AppConfig) ReservationDuration() time.Duration {
	if c.CheckoutConfig == nil || c.CheckoutConfig.ReservationMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.CheckoutConfig.ReservationMinutes) * time.Minute
}

// InviteExpiry returns the absolute invite lifetime.
func (c *AppConfig) InviteExpiry() time.Duration {
	if c.InviteConfig == nil || c.InviteConfig.ExpiryDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.InviteConfig.ExpiryDays) * 24 * time.Hour
}
