package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "menusync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "menusync", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 3, cfg.Upstream.MaxRetries)
		assert.Equal(t, 500*time.Millisecond, cfg.Upstream.RetryBaseDelay)
		assert.Equal(t, 15*time.Minute, cfg.Sync.LockTTL)
		assert.Equal(t, "USD", cfg.Sync.DefaultCurrency)
		assert.Equal(t, 15, cfg.Sync.PickupLeadMinutes)
		assert.True(t, cfg.TokenRefresh.Enabled)
		assert.Equal(t, 3, cfg.TokenRefresh.Hour)
		assert.Equal(t, 0, cfg.TokenRefresh.Minute)
		assert.Equal(t, 72*time.Hour, cfg.Webhook.IdempotencyTTL)
		assert.Equal(t, "memory", cfg.Webhook.IdempotencyBackend)
		assert.Equal(t, "sha256", cfg.Webhook.SignatureAlgorithm)
	})

	t.Run("loads values from environment variables with MENUSYNC prefix", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MENUSYNC_APP_PORT", "9000")
		t.Setenv("MENUSYNC_DATABASE_HOST", "testdb.local")
		t.Setenv("MENUSYNC_DATABASE_PORT", "5433")
		t.Setenv("MENUSYNC_UPSTREAM_MAX_RETRIES", "5")
		t.Setenv("MENUSYNC_UPSTREAM_RETRY_BASE_DELAY", "250ms")
		t.Setenv("MENUSYNC_SYNC_LOCK_BACKEND", "redis")
		t.Setenv("MENUSYNC_TOKEN_REFRESH_HOUR", "0")
		t.Setenv("MENUSYNC_TOKEN_REFRESH_MINUTE", "30")
		t.Setenv("MENUSYNC_TOKEN_REFRESH_ENABLED", "false")
		t.Setenv("MENUSYNC_WEBHOOK_IDEMPOTENCY_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 5, cfg.Upstream.MaxRetries)
		assert.Equal(t, 250*time.Millisecond, cfg.Upstream.RetryBaseDelay)
		assert.Equal(t, "redis", cfg.Sync.LockBackend)
		assert.Equal(t, 0, cfg.TokenRefresh.Hour)
		assert.Equal(t, 30, cfg.TokenRefresh.Minute)
		assert.False(t, cfg.TokenRefresh.Enabled)
		assert.Equal(t, "redis", cfg.Webhook.IdempotencyBackend)
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MENUSYNC_WEBHOOK_IDEMPOTENCY_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "webhook.idempotency_backend")
	})
}

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.TokenRefresh.Hour = 3
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"idle conns above open conns", func(c *Config) { c.Database.MaxIdleConns = 100 }, "max_idle_conns"},
		{"negative idle conns", func(c *Config) { c.Database.MaxIdleConns = -1 }, "cannot be negative"},
		{"hour out of range", func(c *Config) { c.TokenRefresh.Hour = 24 }, "token_refresh.hour"},
		{"minute out of range", func(c *Config) { c.TokenRefresh.Minute = 60 }, "token_refresh.minute"},
		{"retry max below base", func(c *Config) { c.Upstream.RetryMaxDelay = time.Millisecond }, "retry_max_delay"},
		{"bad currency", func(c *Config) { c.Sync.DefaultCurrency = "DOLLAR" }, "default_currency"},
		{"bad lock backend", func(c *Config) { c.Sync.LockBackend = "etcd" }, "sync.lock_backend"},
		{"bad signature algorithm", func(c *Config) { c.Webhook.SignatureAlgorithm = "md5" }, "webhook.signature_algorithm"},
		{"sha1 signatures", func(c *Config) { c.Webhook.SignatureAlgorithm = "sha1" }, ""},
		{"sampling ratio above one", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "sampling_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	production := func() *Config {
		cfg := validConfig()
		cfg.App.Env = "production"
		cfg.JWT.Secret = strings.Repeat("s", 32)
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.Upstream.ApplicationID = "app"
		cfg.Upstream.ApplicationSecret = "secret"
		cfg.Upstream.WebhookSignatureKey = "key"
		cfg.Upstream.WebhookNotificationURL = "https://menusync.example.com/webhooks/upstream"
		return cfg
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		assert.NoError(t, production().validate())
		assert.True(t, production().IsProduction())
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		cfg := production()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.validate(), "at least 32 characters")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		cfg := production()
		cfg.Database.SSLMode = "disable"
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})

	t.Run("requires webhook signature key in production", func(t *testing.T) {
		cfg := production()
		cfg.Upstream.WebhookSignatureKey = ""
		assert.ErrorContains(t, cfg.validate(), "webhook_signature_key")
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		cfg := production()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", DBName: "menusync", SSLMode: "disable"}
		assert.Equal(t, "postgres://postgres:pw@localhost:5432/menusync?sslmode=disable", cfg.DSN())
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/w:rd", DBName: "d", SSLMode: "require"}
		assert.Contains(t, cfg.DSN(), "p%40ss%2Fw%3Ard")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
