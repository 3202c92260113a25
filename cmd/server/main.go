package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	catalogapp "github.com/menusync/backend/internal/application/catalog"
	integrationapp "github.com/menusync/backend/internal/application/integration"
	locationapp "github.com/menusync/backend/internal/application/location"
	merchantapp "github.com/menusync/backend/internal/application/merchant"
	"github.com/menusync/backend/internal/domain/location"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
	"github.com/menusync/backend/internal/infrastructure/auth"
	"github.com/menusync/backend/internal/infrastructure/cache"
	"github.com/menusync/backend/internal/infrastructure/config"
	"github.com/menusync/backend/internal/infrastructure/ecommerce"
	"github.com/menusync/backend/internal/infrastructure/event"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/infrastructure/persistence"
	"github.com/menusync/backend/internal/infrastructure/scheduler"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"github.com/menusync/backend/internal/interfaces/http/handler"
	"github.com/menusync/backend/internal/interfaces/http/middleware"
	"github.com/menusync/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	webhookRateLimit = 600
	oauthRateLimit   = 30
	shutdownTimeout  = 30 * time.Second
)

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// OTEL log export is teed into the zap core when enabled
	minLevel, err := logger.ParseLevel(cfg.Telemetry.LogsMinLevel)
	if err != nil {
		panic("Invalid telemetry log level: " + err.Error())
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MinLevel:          minLevel,
	})
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.Core())
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	defer func() {
		if err := logProvider.Shutdown(context.Background(), log); err != nil {
			log.Error("Error shutting down log exporter", zap.Error(err))
		}
	}()

	log.Info("Starting menusync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		SpanProfiles:      cfg.Telemetry.ProfilingEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis backs the idempotency store and the sync lock when configured
	var redisClient *redis.Client
	if cache.NeedsRedis(cfg) {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
	}
	var cacheClient redis.Cmdable
	if redisClient != nil {
		cacheClient = redisClient
	}
	cacheFactory := cache.NewFactory(cacheClient, log)
	idempotency, err := cacheFactory.IdempotencyStore(cfg.Webhook.IdempotencyBackend)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	syncLock, err := cacheFactory.SyncLock(cfg.Sync.LockBackend)
	if err != nil {
		log.Fatal("Failed to create sync lock", zap.Error(err))
	}

	// Repositories
	merchantRepo := persistence.NewGormMerchantRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	catalogRepos := catalogapp.Repositories{
		Categories:    persistence.NewGormCategoryRepository(db.DB),
		Items:         persistence.NewGormItemRepository(db.DB),
		Variations:    persistence.NewGormVariationRepository(db.DB),
		ModifierLists: persistence.NewGormModifierListRepository(db.DB),
		Modifiers:     persistence.NewGormModifierRepository(db.DB),
		Links:         persistence.NewGormLinkRepository(db.DB),
		Images:        persistence.NewGormImageRepository(db.DB),
	}

	// Upstream adapter
	squareConfig := ecommerce.NewSquareConfig(cfg.Upstream.ApplicationID, cfg.Upstream.ApplicationSecret, cfg.Upstream.Sandbox)
	if cfg.Upstream.BaseURL != "" {
		squareConfig.APIBaseURL = cfg.Upstream.BaseURL
	}
	if cfg.Upstream.APIVersion != "" {
		squareConfig.APIVersion = cfg.Upstream.APIVersion
	}
	if cfg.Upstream.Timeout > 0 {
		squareConfig.TimeoutSeconds = int(cfg.Upstream.Timeout / time.Second)
	}
	squareConfig.MaxRetries = cfg.Upstream.MaxRetries
	if cfg.Upstream.RetryBaseDelay > 0 {
		squareConfig.RetryBaseDelay = cfg.Upstream.RetryBaseDelay
	}
	if cfg.Upstream.RetryMaxDelay > 0 {
		squareConfig.RetryMaxDelay = cfg.Upstream.RetryMaxDelay
	}
	squareClient, err := ecommerce.NewSquareClient(squareConfig, log)
	if err != nil {
		log.Fatal("Failed to create upstream client", zap.Error(err))
	}
	webhookVerifier, err := ecommerce.NewWebhookVerifier(cfg.Webhook.SignatureAlgorithm, cfg.Upstream.WebhookSignatureKey)
	if err != nil {
		log.Fatal("Failed to create webhook verifier", zap.Error(err))
	}

	// Event bus; subscribers run on its workers, never on the request goroutine
	eventBus := event.NewInMemoryEventBus(log, event.Config{
		Workers:   cfg.Webhook.Workers,
		QueueSize: cfg.Webhook.QueueSize,
	})

	// Application services
	locationSyncService := locationapp.NewLocationSyncService(locationRepo, merchantRepo, squareClient, log)
	syncService := catalogapp.NewSyncService(
		merchantRepo,
		catalogRepo,
		catalogRepos,
		syncLock,
		squareClient,
		locationSyncService,
		eventBus,
		metrics,
		catalogapp.SyncServiceConfig{
			LockTTL:         cfg.Sync.LockTTL,
			MaxPages:        cfg.Upstream.MaxPages,
			DefaultCurrency: valueobject.Currency(cfg.Sync.DefaultCurrency),
		},
		log,
	)
	menuService := catalogapp.NewMenuService(catalogRepo, catalogRepos, locationRepo, log)
	pickupService := locationapp.NewPickupService(
		locationRepo,
		location.NewPickupPolicy(
			time.Duration(cfg.Sync.PickupLeadMinutes)*time.Minute,
			time.Duration(cfg.Sync.MaxPickupDaysAhead)*24*time.Hour,
		),
		cfg.Sync.PickupLeadMinutes,
	)
	tokenService := merchantapp.NewTokenService(
		merchantRepo,
		squareClient,
		eventBus,
		metrics,
		merchantapp.TokenServiceConfig{RefreshWindow: cfg.TokenRefresh.RefreshWindow},
		log,
	)
	intakeService := integrationapp.NewWebhookIntakeService(
		webhookVerifier,
		merchantRepo,
		idempotency,
		eventBus,
		metrics,
		integrationapp.WebhookIntakeConfig{
			NotificationURL: cfg.Upstream.WebhookNotificationURL,
			IdempotencyTTL:  cfg.Webhook.IdempotencyTTL,
		},
		log,
	)

	// Webhook subscribers
	catalogWebhookHandler := catalogapp.NewCatalogWebhookHandler(syncService, log)
	locationWebhookHandler := locationapp.NewLocationWebhookHandler(locationSyncService, log)
	revocationWebhookHandler := merchantapp.NewRevocationWebhookHandler(tokenService, log)
	eventBus.Subscribe(catalogWebhookHandler)
	eventBus.Subscribe(locationWebhookHandler)
	eventBus.Subscribe(revocationWebhookHandler)
	log.Info("Event handlers registered",
		zap.Strings("catalog_webhook_events", catalogWebhookHandler.EventTypes()),
		zap.Strings("location_webhook_events", locationWebhookHandler.EventTypes()),
		zap.Strings("revocation_webhook_events", revocationWebhookHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Schedulers
	if cfg.TokenRefresh.Enabled {
		tokenScheduler, err := scheduler.NewTokenRefreshScheduler(scheduler.DailyTriggerConfig{
			Hour:   cfg.TokenRefresh.Hour,
			Minute: cfg.TokenRefresh.Minute,
		}, tokenService, log)
		if err != nil {
			log.Fatal("Failed to create token refresh scheduler", zap.Error(err))
		}
		if err := tokenScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start token refresh scheduler", zap.Error(err))
		}
		defer func() {
			if err := tokenScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping token refresh scheduler", zap.Error(err))
			}
		}()
		log.Info("Token refresh scheduler started",
			zap.Int("hour", cfg.TokenRefresh.Hour),
			zap.Int("minute", cfg.TokenRefresh.Minute),
		)
	}
	if cfg.Sync.CronEnabled {
		syncScheduler, err := scheduler.NewCatalogSyncScheduler(scheduler.CatalogSyncSchedulerConfig{
			Interval: cfg.Sync.CronInterval,
		}, merchantRepo, syncService, log)
		if err != nil {
			log.Fatal("Failed to create catalog sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start catalog sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping catalog sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Catalog sync scheduler started", zap.Duration("interval", cfg.Sync.CronInterval))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = cfg.Telemetry.Enabled
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.Env == "production"

	// Order matters:
	// 1. Recovery turns panics into 500s and logs them
	// 2. RequestID must run before anything that logs or traces
	// 3. Tracing opens the server span that the logger and enricher read
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(tracingConfig),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(meter, log),
		middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
		middleware.Secure(securityConfig),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	webhookLimiter := middleware.NewRateLimiter(webhookRateLimit, time.Minute)
	defer webhookLimiter.Stop()
	oauthLimiter := middleware.NewRateLimiter(oauthRateLimit, time.Minute)
	defer oauthLimiter.Stop()

	routes := router.Mount(engine, router.Handlers{
		Health:   handler.NewHealthHandler(db, version),
		Webhook:  handler.NewWebhookHandler(intakeService, webhookVerifier.Header(), cfg.Webhook.MaxBodyBytes, log),
		Merchant: handler.NewMerchantHandler(tokenService, syncService),
		Menu:     handler.NewMenuHandler(menuService),
		Pickup:   handler.NewPickupHandler(pickupService),
	}, router.Guards{
		Admin:   middleware.JWTAuth(auth.NewTokenVerifier(cfg.JWT), log),
		Webhook: middleware.RateLimit(webhookLimiter),
		OAuth:   middleware.RateLimit(oauthLimiter),
	})
	for _, route := range routes.Routes() {
		log.Debug("Route mounted",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.Bool("guarded", route.Guarded()),
		)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
