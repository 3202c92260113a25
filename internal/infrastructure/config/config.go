package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Upstream     UpstreamConfig
	Sync         SyncConfig
	TokenRefresh TokenRefreshConfig
	Webhook      WebhookConfig
	Telemetry    TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for verifying admin API tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// UpstreamConfig holds the commerce platform API settings
type UpstreamConfig struct {
	BaseURL                string
	APIVersion             string
	Sandbox                bool
	ApplicationID          string
	ApplicationSecret      string
	WebhookSignatureKey    string
	WebhookNotificationURL string
	Timeout                time.Duration
	MaxRetries             int
	RetryBaseDelay         time.Duration
	RetryMaxDelay          time.Duration
	MaxPages               int
}

// SyncConfig holds catalog synchronization settings
type SyncConfig struct {
	LockTTL            time.Duration
	LockBackend        string // memory, redis
	CronEnabled        bool
	CronInterval       time.Duration
	DefaultCurrency    string
	PickupLeadMinutes  int
	MaxPickupDaysAhead int
}

// TokenRefreshConfig holds the daily token refresh job settings
type TokenRefreshConfig struct {
	Enabled       bool
	Hour          int
	Minute        int
	RefreshWindow time.Duration
}

// WebhookConfig holds webhook intake settings
type WebhookConfig struct {
	IdempotencyTTL     time.Duration
	IdempotencyBackend string // memory, redis
	SignatureAlgorithm string // sha256, sha1
	MaxBodyBytes       int64
	Workers            int
	QueueSize          int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	LogsMinLevel      string
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// Continuous profiling
	ProfilingEnabled bool
	PyroscopeURL     string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MENUSYNC_ prefix (e.g., MENUSYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/menusync")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MENUSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Upstream: UpstreamConfig{
			BaseURL:                v.GetString("upstream.base_url"),
			APIVersion:             v.GetString("upstream.api_version"),
			Sandbox:                v.GetBool("upstream.sandbox"),
			ApplicationID:          v.GetString("upstream.application_id"),
			ApplicationSecret:      v.GetString("upstream.application_secret"),
			WebhookSignatureKey:    v.GetString("upstream.webhook_signature_key"),
			WebhookNotificationURL: v.GetString("upstream.webhook_notification_url"),
			Timeout:                v.GetDuration("upstream.timeout"),
			MaxRetries:             v.GetInt("upstream.max_retries"),
			RetryBaseDelay:         v.GetDuration("upstream.retry_base_delay"),
			RetryMaxDelay:          v.GetDuration("upstream.retry_max_delay"),
			MaxPages:               v.GetInt("upstream.max_pages"),
		},
		Sync: SyncConfig{
			LockTTL:            v.GetDuration("sync.lock_ttl"),
			LockBackend:        v.GetString("sync.lock_backend"),
			CronEnabled:        v.GetBool("sync.cron_enabled"),
			CronInterval:       v.GetDuration("sync.cron_interval"),
			DefaultCurrency:    v.GetString("sync.default_currency"),
			PickupLeadMinutes:  v.GetInt("sync.pickup_lead_minutes"),
			MaxPickupDaysAhead: v.GetInt("sync.max_pickup_days_ahead"),
		},
		TokenRefresh: TokenRefreshConfig{
			Enabled:       v.GetBool("token_refresh.enabled"),
			Hour:          v.GetInt("token_refresh.hour"),
			Minute:        v.GetInt("token_refresh.minute"),
			RefreshWindow: v.GetDuration("token_refresh.refresh_window"),
		},
		Webhook: WebhookConfig{
			IdempotencyTTL:     v.GetDuration("webhook.idempotency_ttl"),
			IdempotencyBackend: v.GetString("webhook.idempotency_backend"),
			SignatureAlgorithm: v.GetString("webhook.signature_algorithm"),
			MaxBodyBytes:       v.GetInt64("webhook.max_body_bytes"),
			Workers:            v.GetInt("webhook.workers"),
			QueueSize:          v.GetInt("webhook.queue_size"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			LogsMinLevel:      v.GetString("telemetry.logs_min_level"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeURL:      v.GetString("telemetry.pyroscope_url"),
		},
	}

	// Token refresh runs at 03:00 by default; an explicit 00:00 is respected
	if !v.IsSet("token_refresh.enabled") {
		cfg.TokenRefresh.Enabled = true
	}
	if !v.IsSet("token_refresh.hour") {
		cfg.TokenRefresh.Hour = 3
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "menusync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "menusync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "menusync-identity"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Accept-Language"}
	}
	if cfg.Upstream.APIVersion == "" {
		cfg.Upstream.APIVersion = "2024-01-18"
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 30 * time.Second
	}
	if cfg.Upstream.MaxRetries == 0 {
		cfg.Upstream.MaxRetries = 3
	}
	if cfg.Upstream.RetryBaseDelay == 0 {
		cfg.Upstream.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.Upstream.RetryMaxDelay == 0 {
		cfg.Upstream.RetryMaxDelay = 30 * time.Second
	}
	if cfg.Upstream.MaxPages == 0 {
		cfg.Upstream.MaxPages = 1000
	}
	if cfg.Sync.LockTTL == 0 {
		cfg.Sync.LockTTL = 15 * time.Minute
	}
	if cfg.Sync.LockBackend == "" {
		cfg.Sync.LockBackend = "memory"
	}
	if cfg.Sync.CronInterval == 0 {
		cfg.Sync.CronInterval = 6 * time.Hour
	}
	if cfg.Sync.DefaultCurrency == "" {
		cfg.Sync.DefaultCurrency = "USD"
	}
	if cfg.Sync.PickupLeadMinutes == 0 {
		cfg.Sync.PickupLeadMinutes = 15
	}
	if cfg.Sync.MaxPickupDaysAhead == 0 {
		cfg.Sync.MaxPickupDaysAhead = 7
	}
	if cfg.TokenRefresh.RefreshWindow == 0 {
		cfg.TokenRefresh.RefreshWindow = 8 * 24 * time.Hour
	}
	if cfg.Webhook.IdempotencyTTL == 0 {
		cfg.Webhook.IdempotencyTTL = 72 * time.Hour
	}
	if cfg.Webhook.IdempotencyBackend == "" {
		cfg.Webhook.IdempotencyBackend = "memory"
	}
	if cfg.Webhook.SignatureAlgorithm == "" {
		cfg.Webhook.SignatureAlgorithm = "sha256"
	}
	if cfg.Webhook.MaxBodyBytes == 0 {
		cfg.Webhook.MaxBodyBytes = 256 << 10 // 256KB
	}
	if cfg.Webhook.Workers == 0 {
		cfg.Webhook.Workers = 4
	}
	if cfg.Webhook.QueueSize == 0 {
		cfg.Webhook.QueueSize = 256
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "menusync"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsMinLevel == "" {
		cfg.Telemetry.LogsMinLevel = "info"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeURL == "" {
		cfg.Telemetry.PyroscopeURL = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.TokenRefresh.Hour < 0 || c.TokenRefresh.Hour > 23 {
		return fmt.Errorf("token_refresh.hour must be between 0 and 23, got %d", c.TokenRefresh.Hour)
	}
	if c.TokenRefresh.Minute < 0 || c.TokenRefresh.Minute > 59 {
		return fmt.Errorf("token_refresh.minute must be between 0 and 59, got %d", c.TokenRefresh.Minute)
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries cannot be negative")
	}
	if c.Upstream.RetryMaxDelay < c.Upstream.RetryBaseDelay {
		return fmt.Errorf("upstream.retry_max_delay (%s) cannot be below upstream.retry_base_delay (%s)",
			c.Upstream.RetryMaxDelay, c.Upstream.RetryBaseDelay)
	}
	if c.Sync.PickupLeadMinutes < 0 {
		return fmt.Errorf("sync.pickup_lead_minutes cannot be negative")
	}
	if len(c.Sync.DefaultCurrency) != 3 {
		return fmt.Errorf("sync.default_currency must be a 3-letter ISO code, got %q", c.Sync.DefaultCurrency)
	}
	switch c.Webhook.IdempotencyBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("webhook.idempotency_backend must be memory or redis, got %q", c.Webhook.IdempotencyBackend)
	}
	switch c.Webhook.SignatureAlgorithm {
	case "sha256", "sha1":
	default:
		return fmt.Errorf("webhook.signature_algorithm must be sha256 or sha1, got %q", c.Webhook.SignatureAlgorithm)
	}
	switch c.Sync.LockBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("sync.lock_backend must be memory or redis, got %q", c.Sync.LockBackend)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Upstream.ApplicationID == "" || c.Upstream.ApplicationSecret == "" {
			return fmt.Errorf("upstream.application_id and upstream.application_secret are required in production")
		}
		if c.Upstream.WebhookSignatureKey == "" || c.Upstream.WebhookNotificationURL == "" {
			return fmt.Errorf("upstream.webhook_signature_key and upstream.webhook_notification_url are required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
