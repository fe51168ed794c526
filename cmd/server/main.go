package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/erp/returns/docs"
	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/erp/returns/internal/infrastructure/auth"
	"github.com/erp/returns/internal/infrastructure/cache"
	"github.com/erp/returns/internal/infrastructure/collaborator"
	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/erp/returns/internal/infrastructure/event"
	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/infrastructure/migration"
	"github.com/erp/returns/internal/infrastructure/persistence"
	"github.com/erp/returns/internal/infrastructure/printing"
	"github.com/erp/returns/internal/infrastructure/realtime"
	"github.com/erp/returns/internal/infrastructure/storage"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"github.com/erp/returns/internal/interfaces/http/handler"
	"github.com/erp/returns/internal/interfaces/http/middleware"
	"github.com/erp/returns/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

//	@title			Returns API
//	@version		1.0
//	@description	Product return lifecycle: intake, inspection, approval and resolution dispatch.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the auth service. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the bridged logger reaches the collector
	providers, err := telemetry.Setup(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		LogLevel:          logger.ParseLevel(cfg.Telemetry.LogsLevel),
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log)

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() { _ = profiler.Stop() }()
	if cfg.Telemetry.ProfilingEnabled {
		providers.EnableSpanProfiles()
	}

	log.Info("Starting returns service",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:           cfg.Database.DBName,
		IncludeVariables: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := runMigrations(db, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	statsDB, err := db.Sqlx()
	if err != nil {
		log.Fatal("Failed to open reporting connection", zap.Error(err))
	}

	// Locks and idempotency keys
	coordination, err := cache.NewCoordinationFactory(cfg.Redis, cfg.Dispatch.LockTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(rootCtx)
	if err != nil {
		log.Fatal("Failed to initialize coordination stores", zap.Error(err))
	}
	defer func() {
		if err := coordination.Close(); err != nil {
			log.Error("Error closing coordination stores", zap.Error(err))
		}
	}()

	collaborators, err := collaborator.NewFromConfig(cfg.Collaborators, log)
	if err != nil {
		log.Fatal("Failed to configure collaborators", zap.Error(err))
	}

	evidence, err := storage.NewEvidenceStorage(rootCtx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to configure evidence storage", zap.Error(err))
	}

	var slipRenderer appreturns.SlipRenderer
	if cfg.Printing.Enabled {
		slips, pdf, err := printing.NewSlipRendererFromConfig(cfg.Printing, log)
		if err != nil {
			log.Fatal("Failed to configure slip printing", zap.Error(err))
		}
		defer func() { _ = pdf.Close() }()
		slipRenderer = slips
	}

	// Application services
	repo := persistence.NewGormReturnRecordRepository(db.DB)
	dispatcher := appreturns.NewResolutionDispatcher(collaborators.Collaborators, coordination.Idempotency,
		appreturns.DispatcherConfig{
			Timeout:        cfg.Dispatch.Timeout,
			IdempotencyTTL: cfg.Dispatch.IdempotencyTTL,
		}, log)
	returnService := appreturns.NewReturnService(
		repo,
		persistence.NewSqlxStatsReader(statsDB, db.Driver()),
		collaborators.Customers,
		coordination.Locker,
		dispatcher,
		log,
	)
	attachmentService := appreturns.NewAttachmentService(repo,
		persistence.NewGormReturnAttachmentRepository(db.DB), evidence, cfg.Storage.PresignExpiration, log)
	slipService := appreturns.NewSlipService(repo, slipRenderer)

	metrics, err := telemetry.NewReturnMetrics(providers.Meter("returns"))
	if err != nil {
		log.Fatal("Failed to create return metrics", zap.Error(err))
	}
	returnService.SetMetrics(metrics)

	// Lifecycle events fan out to the websocket feed
	eventBus := event.NewInMemoryEventBus(log)
	returnService.SetEventPublisher(eventBus)

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(cfg.Realtime, event.NewReturnEventSerializer(), log)
		eventBus.Subscribe(hub)
		go hub.Run(rootCtx)
		log.Info("Realtime feed enabled", zap.Strings("event_types", hub.EventTypes()))
	}
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(providers.Meter("returns.http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = cfg.Telemetry.ProfilingEnabled

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After")

	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	if coordination.Redis != nil {
		revocations = auth.NewRedisRevocationList(coordination.Redis)
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(tracingCfg),
		middleware.TracingAttributeInjector(),
		logger.GinMiddleware(log),
		httpMetrics,
		middleware.ProfilingWithConfig(profilingCfg),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Actor(middleware.ActorConfig{
			Verifier:    auth.NewTokenVerifier(cfg.Auth),
			Revocations: revocations,
			AllowHeader: cfg.Auth.AllowActorHeader,
			Logger:      log,
		}),
	)

	var mutating []gin.HandlerFunc
	if cfg.HTTP.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		mutating = append(mutating, middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimit),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if coordination.Redis != nil {
		checks["redis"] = coordination.Ping
	}
	health := handler.NewHealthHandler(cfg.App.Version, checks)
	engine.GET("/health", health.Health)
	engine.GET("/api/v1/ping", health.Ping)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	handlers := router.ReturnHandlers{
		Returns:     handler.NewReturnHandler(returnService),
		Attachments: handler.NewAttachmentHandler(attachmentService),
		Slips:       handler.NewSlipHandler(slipService),
	}
	if hub != nil {
		handlers.Realtime = handler.NewRealtimeHandler(hub)
	}
	returnRoutes := router.NewReturnsGroup(handlers, mutating...)
	router.NewRouter(engine).Register(returnRoutes).Setup()
	log.Debug("Routes registered", zap.Int("returns", len(returnRoutes.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()
	log.Info("Server exited gracefully")
}

func runMigrations(db *persistence.Database, driver string, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, driver, log)
	if err != nil {
		return err
	}
	// Close is skipped: the migrate driver would close the shared pool
	return m.Up()
}
