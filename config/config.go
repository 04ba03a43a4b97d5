// Package config loads application settings from the environment through viper
// and validates them before the server starts.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/matchfund/matchfund-backend/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// FrontendURL is where payOS sends the payer back after checkout.
	FrontendURL string `mapstructure:"FRONTEND_URL" yaml:"frontend_url"`
	// TrustedProxies lists CIDRs whose X-Forwarded-For is honoured. Empty
	// means no proxy is trusted.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	ConnMaxLife    string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// URL for golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// ConnString returns a key/value DSN for pgxpool.ParseConfig.
func (c *DatabaseConfig) ConnString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Name, sslmode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	if c.MaxConnections > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", c.MaxConnections)
	}
	if c.ConnMaxLife != "" {
		dsn += " pool_max_conn_lifetime=" + c.ConnMaxLife
	}
	return dsn
}

type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// PayOSConfig holds merchant credentials for the payOS gateway.
type PayOSConfig struct {
	ClientID       string `mapstructure:"CLIENT_ID" yaml:"client_id"`
	APIKey         string `mapstructure:"API_KEY" yaml:"api_key"`
	ChecksumKey    string `mapstructure:"CHECKSUM_KEY" yaml:"checksum_key"`
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	ReturnPath     string `mapstructure:"RETURN_PATH" yaml:"return_path"`
	CancelPath     string `mapstructure:"CANCEL_PATH" yaml:"cancel_path"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// PushConfig configures delivery through the Expo push API.
type PushConfig struct {
	ExpoURL        string `mapstructure:"EXPO_URL" yaml:"expo_url"`
	AccessToken    string `mapstructure:"ACCESS_TOKEN" yaml:"access_token"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// StorageConfig points at an S3 compatible bucket (Cloudflare R2 by default)
// used for member avatars.
type StorageConfig struct {
	Enabled         bool   `mapstructure:"ENABLED" yaml:"enabled"`
	AccountID       string `mapstructure:"ACCOUNT_ID" yaml:"account_id"`
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"PUBLIC_BASE_URL" yaml:"public_base_url"`
	MaxAvatarBytes  int64  `mapstructure:"MAX_AVATAR_BYTES" yaml:"max_avatar_bytes"`
}

type RateLimitConfig struct {
	// PaymentRequestsPerMinute caps create-payment-link calls per client IP.
	PaymentRequestsPerMinute int `mapstructure:"PAYMENT_REQUESTS_PER_MINUTE" yaml:"payment_requests_per_minute"`
	WindowSeconds            int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

type WorkerPoolConfig struct {
	MaxWorkers             int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	QueueSize              int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// EventServiceConfig tunes the redis backed live event feed.
type EventServiceConfig struct {
	PublishTimeoutSeconds   int `mapstructure:"PUBLISH_TIMEOUT_SECONDS" yaml:"publish_timeout_seconds"`
	SubscribeTimeoutSeconds int `mapstructure:"SUBSCRIBE_TIMEOUT_SECONDS" yaml:"subscribe_timeout_seconds"`
	EventBufferSize         int `mapstructure:"EVENT_BUFFER_SIZE" yaml:"event_buffer_size"`
}

type Config struct {
	Server       ServerConfig       `mapstructure:"SERVER" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"DATABASE" yaml:"database"`
	Redis        RedisConfig        `mapstructure:"REDIS" yaml:"redis"`
	PayOS        PayOSConfig        `mapstructure:"PAYOS" yaml:"payos"`
	Push         PushConfig         `mapstructure:"PUSH" yaml:"push"`
	Email        EmailConfig        `mapstructure:"EMAIL" yaml:"email"`
	Storage      StorageConfig      `mapstructure:"STORAGE" yaml:"storage"`
	RateLimit    RateLimitConfig    `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	WorkerPool   WorkerPoolConfig   `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	EventService EventServiceConfig `mapstructure:"EVENT_SERVICE" yaml:"event_service"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})

	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "matchfund_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")

	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)

	v.SetDefault("PAYOS.BASE_URL", "https://api-merchant.payos.vn")
	v.SetDefault("PAYOS.RETURN_PATH", "/payment/success")
	v.SetDefault("PAYOS.CANCEL_PATH", "/payment/cancel")
	v.SetDefault("PAYOS.TIMEOUT_SECONDS", 15)

	v.SetDefault("PUSH.EXPO_URL", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("PUSH.TIMEOUT_SECONDS", 30)

	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.FROM_NAME", "Matchfund")

	v.SetDefault("STORAGE.ENABLED", false)
	v.SetDefault("STORAGE.MAX_AVATAR_BYTES", 2<<20)

	v.SetDefault("RATE_LIMIT.PAYMENT_REQUESTS_PER_MINUTE", 20)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)

	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 200)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)

	v.SetDefault("EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("EVENT_SERVICE.SUBSCRIBE_TIMEOUT_SECONDS", 10)
	v.SetDefault("EVENT_SERVICE.EVENT_BUFFER_SIZE", 64)
}

// LoadConfig reads defaults and environment variables into a validated Config.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.FRONTEND_URL", "FRONTEND_URL"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},

		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},

		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},

		{"PAYOS.CLIENT_ID", "PAYOS_CLIENT_ID"},
		{"PAYOS.API_KEY", "PAYOS_API_KEY"},
		{"PAYOS.CHECKSUM_KEY", "PAYOS_CHECKSUM_KEY"},
		{"PAYOS.BASE_URL", "PAYOS_BASE_URL"},

		{"PUSH.EXPO_URL", "EXPO_PUSH_URL"},
		{"PUSH.ACCESS_TOKEN", "EXPO_ACCESS_TOKEN"},

		{"EMAIL.ENABLED", "EMAIL_ENABLED"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},

		{"STORAGE.ENABLED", "STORAGE_ENABLED"},
		{"STORAGE.ACCOUNT_ID", "R2_ACCOUNT_ID"},
		{"STORAGE.ENDPOINT", "STORAGE_ENDPOINT"},
		{"STORAGE.BUCKET", "STORAGE_BUCKET"},
		{"STORAGE.ACCESS_KEY_ID", "STORAGE_ACCESS_KEY_ID"},
		{"STORAGE.SECRET_ACCESS_KEY", "STORAGE_SECRET_ACCESS_KEY"},
		{"STORAGE.PUBLIC_BASE_URL", "STORAGE_PUBLIC_BASE_URL"},

		{"RATE_LIMIT.PAYMENT_REQUESTS_PER_MINUTE", "RATE_LIMIT_PAYMENT_REQUESTS_PER_MINUTE"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},

		{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
		{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
		{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"db", logger.MaskConnectionString(cfg.Database.URL()),
		"redis", cfg.Redis.Address,
		"email_enabled", cfg.Email.Enabled,
		"storage_enabled", cfg.Storage.Enabled,
	)
	return &cfg, nil
}

func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if _, err := url.ParseRequestURI(cfg.Server.FrontendURL); err != nil {
		return fmt.Errorf("invalid frontend URL: %w", err)
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if err := validatePayOSConfig(&cfg.PayOS, cfg.Server.Environment, log); err != nil {
		return err
	}
	validateEmailConfig(&cfg.Email, log)
	validateStorageConfig(&cfg.Storage, log)

	if cfg.RateLimit.PaymentRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit payment requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}
	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}
	if cfg.EventService.PublishTimeoutSeconds <= 0 || cfg.EventService.SubscribeTimeoutSeconds <= 0 {
		return fmt.Errorf("event service timeouts must be positive")
	}
	if cfg.EventService.EventBufferSize <= 0 {
		return fmt.Errorf("event service buffer size must be positive")
	}
	return nil
}

// validatePayOSConfig requires full merchant credentials in production. In
// development a missing key only warns so the rest of the API can run.
func validatePayOSConfig(cfg *PayOSConfig, env Environment, log *zap.SugaredLogger) error {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid payOS base URL: %w", err)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("payOS timeout must be positive")
	}
	missing := cfg.ClientID == "" || cfg.APIKey == "" || cfg.ChecksumKey == ""
	if missing && env == EnvProduction {
		return fmt.Errorf("payOS client id, api key and checksum key are required in production")
	}
	if missing {
		log.Warn("payOS credentials incomplete; payment links and webhook signatures will fail")
	}
	return nil
}

func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" {
		log.Warn("Resend API key or from address not set, auto-disabling receipt emails")
		cfg.Enabled = false
	}
}

func validateStorageConfig(cfg *StorageConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" ||
		(cfg.AccountID == "" && cfg.Endpoint == "") {
		log.Warn("Storage credentials incomplete, auto-disabling avatar uploads")
		cfg.Enabled = false
	}
	if cfg.MaxAvatarBytes <= 0 {
		cfg.MaxAvatarBytes = 2 << 20
	}
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
