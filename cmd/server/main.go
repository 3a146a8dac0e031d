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
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/scg/portal/internal/application/catalog"
	contractapp "github.com/scg/portal/internal/application/contract"
	customerapp "github.com/scg/portal/internal/application/customer"
	engagementapp "github.com/scg/portal/internal/application/engagement"
	identityapp "github.com/scg/portal/internal/application/identity"
	reportapp "github.com/scg/portal/internal/application/report"
	signatureapp "github.com/scg/portal/internal/application/signature"
	"github.com/scg/portal/internal/infrastructure/auth"
	"github.com/scg/portal/internal/infrastructure/cache"
	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/scg/portal/internal/infrastructure/event"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/infrastructure/notification"
	"github.com/scg/portal/internal/infrastructure/persistence"
	"github.com/scg/portal/internal/infrastructure/printing"
	"github.com/scg/portal/internal/infrastructure/storage"
	"github.com/scg/portal/internal/infrastructure/telemetry"
	"github.com/scg/portal/internal/interfaces/http/handler"
	"github.com/scg/portal/internal/interfaces/http/middleware"
	"github.com/scg/portal/internal/interfaces/http/router"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/scg/portal/docs"
)

//	@title			SCG Portal API
//	@version		1.0
//	@description	Back office API for customers, contracts, scanner reports and support engagements

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	bootLog := logger.New(logger.FromAppConfig(cfg.Log))

	// Log export needs its provider before the final logger is built
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := logger.New(logger.FromAppConfig(cfg.Log), logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SCG Portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize profiling", zap.Error(err))
	}
	if profiler.Enabled() && tracerProvider.Enabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, logProvider, profiler)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracing(cfg.Telemetry.DBSlowQueryThresh, cfg.Telemetry.DBLogFullSQL, log)
		if err := dbTracing.Register(db.DB); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	if meterProvider.Enabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("db.client"),
			cfg.Telemetry.DBSlowQueryThresh, cfg.Telemetry.DBPoolStatsInterval, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		if err := dbMetrics.Register(db.DB); err != nil {
			log.Fatal("Failed to enable database metrics", zap.Error(err))
		}
		dbMetrics.StartPoolStats(ctx)
		defer dbMetrics.Stop()
	}
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))

	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewRedisTokenBlacklist(redisClient)

	eventBus := event.NewInMemoryEventBus(log)
	handlers, closeHandlers := buildHandlers(ctx, cfg, db.DB, redisClient, jwtService, blacklist, eventBus, log)
	if meterProvider.Enabled() {
		portalMetrics, err := telemetry.NewPortalMetrics(meterProvider.Meter("scg.portal"))
		if err != nil {
			log.Fatal("Failed to create portal metrics", zap.Error(err))
		}
		eventBus.Subscribe(portalMetrics)
	}
	defer closeHandlers()
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	engine := newEngine(cfg, log, handlers, jwtService, blacklist, meterProvider)

	health := handler.NewHealthHandler(version).
		AddCheck("database", db.Ping).
		AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	engine.GET("/health", health.Health)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// buildHandlers wires repositories, application services and event handlers.
// The returned func releases the PDF renderer.
func buildHandlers(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	bus *event.InMemoryEventBus,
	log *zap.Logger,
) (router.Handlers, func()) {
	customerRepo := persistence.NewGormCustomerRepository(db)
	serviceRepo := persistence.NewGormServiceRepository(db)
	reportTypeRepo := persistence.NewGormReportTypeRepository(db)
	contractRepo := persistence.NewGormContractRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	nessusRepo := persistence.NewGormNessusSignatureRepository(db)
	burpRepo := persistence.NewGormBurpSuiteSignatureRepository(db)
	reportRepo := persistence.NewGormReportRepository(db).WithFindingBatchSize(cfg.Upload.FindingBatchSize)
	engagementRepo := persistence.NewGormEngagementRepository(db)

	resetTokens := cache.NewRedisResetTokenStore(redisClient)
	policy := identityapp.PasswordPolicyFromConfig(cfg.Security)

	customerService := customerapp.NewCustomerService(customerRepo, bus, log)
	serviceCatalog := catalogapp.NewServiceCatalogService(serviceRepo, reportTypeRepo, bus, log)
	reportTypeService := catalogapp.NewReportTypeService(reportTypeRepo, log)
	contractService := contractapp.NewContractService(contractRepo, paymentRepo, serviceRepo, customerRepo, bus, log)
	paymentService := contractapp.NewPaymentService(paymentRepo, contractRepo,
		persistence.NewGormTransactionScope(db), bus, log)
	resetService := identityapp.NewPasswordResetService(userRepo, resetTokens, bus, policy, cfg.Security.ResetTokenTTL, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, policy, log)
	userService := identityapp.NewUserService(userRepo, customerRepo, resetService, blacklist,
		cfg.JWT.AccessTokenExpiration, bus, log)
	signatureService := signatureapp.NewSignatureService(nessusRepo, burpRepo, log)
	engagementService := engagementapp.NewEngagementService(engagementRepo, contractRepo, serviceRepo, log)
	supportService := engagementapp.NewSupportReportService(engagementRepo, contractRepo)

	reportOpts := []reportapp.Option{reportapp.WithTransactionScope(persistence.NewGormReportTransactionScope(db, cfg.Upload.FindingBatchSize))}
	if cfg.Storage.Enabled {
		store, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare upload bucket", zap.Error(err), zap.String("bucket", store.Bucket()))
		}
		reportOpts = append(reportOpts, reportapp.WithStorage(store))
		log.Info("Raw uploads are archived", zap.String("bucket", store.Bucket()))
	}
	closeRenderer := func() {}
	if cfg.Printing.Enabled {
		renderer, printer, err := newReportPrinter(cfg.Printing, log)
		if err != nil {
			log.Fatal("Failed to initialize PDF export", zap.Error(err))
		}
		closeRenderer = func() {
			if err := renderer.Close(); err != nil {
				log.Warn("Failed to close PDF renderer", zap.Error(err))
			}
		}
		reportOpts = append(reportOpts, reportapp.WithPrinter(printer))
	}
	reportService := reportapp.NewReportService(reportRepo, contractRepo, serviceRepo, nessusRepo, burpRepo,
		userRepo, bus, log, reportOpts...)

	priceChanged := contractapp.NewServicePriceChangedHandler(contractRepo, contractService, log)
	accountMail := notification.NewAccountMailHandler(notification.NewMailer(cfg.Mail, log), cfg.App.FrontendURL, log)
	bus.Subscribe(priceChanged)
	bus.Subscribe(accountMail)
	log.Info("Event handlers registered",
		zap.Strings("service_price_changed_events", priceChanged.EventTypes()),
		zap.Strings("account_mail_events", accountMail.EventTypes()),
	)

	return router.Handlers{
		Auth:       handler.NewAuthHandler(authService, resetService),
		Customer:   handler.NewCustomerHandler(customerService),
		Catalog:    handler.NewCatalogHandler(serviceCatalog, reportTypeService),
		Contract:   handler.NewContractHandler(contractService, paymentService),
		User:       handler.NewUserHandler(userService),
		Signature:  handler.NewSignatureHandler(signatureService),
		Report:     handler.NewReportHandler(reportService, supportService, cfg.Upload.MaxFileSize),
		Engagement: handler.NewEngagementHandler(engagementService),
	}, closeRenderer
}

func newReportPrinter(cfg config.PrintingConfig, log *zap.Logger) (*printing.ChromedpRenderer, *printing.ReportPrinter, error) {
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		RemoteURL:       cfg.ChromeURL,
		DefaultTimeout:  cfg.Timeout,
		NoSandbox:       os.Geteuid() == 0,
		PrintBackground: cfg.PrintBackground,
		Logger:          log,
	})
	if err != nil {
		return nil, nil, err
	}
	paper := printing.PaperLetter
	if cfg.PaperA4 {
		paper = printing.PaperA4
	}
	printer, err := printing.NewReportPrinter(renderer, printing.WithPaper(paper), printing.WithPrinterLogger(log))
	if err != nil {
		_ = renderer.Close()
		return nil, nil, err
	}
	return renderer, printer, nil
}

// newEngine applies the middleware stack and mounts the API
func newEngine(
	cfg *config.Config,
	log *zap.Logger,
	handlers router.Handlers,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	meterProvider *telemetry.MeterProvider,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters:
	// RequestID before the logger so every line carries it,
	// tracing after both so spans see the request ID and the route.
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(max(cfg.HTTP.MaxBodySize, cfg.Upload.MaxFileSize+multipartOverhead)))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meterProvider))
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))

	authenticate := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})

	api := router.API{Handlers: handlers, Authenticate: authenticate}
	if cfg.HTTP.AuthRateLimitEnabled {
		api.AuthLimit = middleware.AuthRateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
	}
	api.Register(router.NewRouter(engine, router.WithAPIVersion("v1"))).Setup()

	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger, authenticate), router.Swagger())
	return engine
}

// multipartOverhead leaves room for the form fields sent next to a report file
const multipartOverhead = 1 << 20

func shutdownTelemetry(
	log *zap.Logger,
	tp *telemetry.TracerProvider,
	mp *telemetry.MeterProvider,
	lp *telemetry.LoggerProvider,
	profiler *telemetry.Profiler,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush logs", zap.Error(err))
	}
}
