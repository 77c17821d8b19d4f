package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/services"
	httphandlers "vodnet/internal/handlers/http"
	"vodnet/internal/infrastructure/middleware"
	"vodnet/internal/infrastructure/monitoring"
	"vodnet/internal/infrastructure/provider"
	"vodnet/internal/infrastructure/repositories"
	"vodnet/pkg/config"
	"vodnet/pkg/logger"
	"vodnet/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/vodnet/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	if cfg.Tracing.Enabled {
		tracerProvider, err := tracing.Init(tracing.Config{
			Enabled:     cfg.Tracing.Enabled,
			ServiceName: cfg.Tracing.ServiceName,
			JaegerURL:   cfg.Tracing.JaegerURL,
			Environment: cfg.Tracing.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			log.Warnw("failed to initialize tracing", "error", err)
		} else {
			defer tracerProvider.Shutdown(context.Background())
		}
	}

	// Provider client: identity, profiles and the data API
	providerClient := provider.NewClient(provider.Config{
		BaseURL:        cfg.Provider.BaseURL,
		AnonKey:        cfg.Provider.AnonKey,
		RequestTimeout: cfg.Provider.RequestTimeout,
		SessionFile:    cfg.Provider.SessionFile,
	}, provider.RealtimeConfig{
		Enabled:      cfg.Provider.Realtime.Enabled,
		PingInterval: cfg.Provider.Realtime.PingInterval,
		ReconnectMin: cfg.Provider.Realtime.ReconnectMin,
		ReconnectMax: cfg.Provider.Realtime.ReconnectMax,
	}, log)
	defer providerClient.Close()

	// Initialize monitoring
	prometheusCollector := monitoring.NewPrometheusCollector()
	providerClient.SetMetrics(prometheusCollector)

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, providerClient, prometheusCollector, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	catalogRepo := repoFactory.CreateCatalogRepository()
	scheduleRepo := repoFactory.CreateScheduleRepository()
	planRepo := repoFactory.CreatePlanRepository()
	historyRepo := repoFactory.CreateHistoryRepository()

	// Initialize services
	sessionManager := services.NewSessionManager(
		providerClient,
		providerClient,
		domain.Language(cfg.Locale.Default),
		log,
	)

	catalogService := services.NewCatalogService(catalogRepo)
	cachedCatalog := services.NewCachedCatalogService(
		catalogService,
		cfg.Catalog.ListCacheTTL,
		cfg.Catalog.TitleCacheTTL,
	)
	defer cachedCatalog.Stop()

	playbackService := services.NewPlaybackService(cachedCatalog, sessionManager, log)
	scheduleService := services.NewScheduleService(scheduleRepo)
	planService := services.NewPlanService(planRepo)
	historyService := services.NewHistoryService(
		historyRepo,
		sessionManager,
		cfg.History.BatchSize,
		cfg.History.FlushInterval,
		log,
	)

	// Bootstrap the session; the auth event listener lives until shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if err := sessionManager.Initialize(rootCtx); err != nil {
		log.Fatalw("failed to initialize session", "error", err)
	}

	// Mirror session state into the metrics gauge.
	go func() {
		updates, unsubscribe := sessionManager.Subscribe()
		defer unsubscribe()
		for {
			select {
			case <-rootCtx.Done():
				return
			case session, ok := <-updates:
				if !ok {
					return
				}
				prometheusCollector.RecordSessionState(session.Status)
			}
		}
	}()

	// Health checks
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddProviderCheck(catalogRepo, 30*time.Second, 5*time.Second)
	healthChecker.AddSessionCheck(sessionManager, 10*time.Second, time.Second)
	if redisClient := repoFactory.RedisClient(); redisClient != nil {
		healthChecker.AddRedisCheck(redisClient, 30*time.Second, 2*time.Second)
	}

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(sessionManager, prometheusCollector)
	profileHandler := httphandlers.NewProfileHandler(sessionManager)
	catalogHandler := httphandlers.NewCatalogHandler(cachedCatalog)
	playbackHandler := httphandlers.NewPlaybackHandler(playbackService, sessionManager, prometheusCollector)
	scheduleHandler := httphandlers.NewScheduleHandler(scheduleService)
	planHandler := httphandlers.NewPlanHandler(planService)
	historyHandler := httphandlers.NewHistoryHandler(historyService, sessionManager)
	eventsHandler := httphandlers.NewSessionEventsHandler(sessionManager, log)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLoggerMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	authHandler.SetupRoutes(router)
	profileHandler.SetupRoutes(router)
	catalogHandler.SetupRoutes(router)
	playbackHandler.SetupRoutes(router)
	scheduleHandler.SetupRoutes(router)
	planHandler.SetupRoutes(router)
	historyHandler.SetupRoutes(router)
	eventsHandler.SetupRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := 200
		if !status.Healthy() {
			code = 503
		}
		c.JSON(code, gin.H{
			"status":    status.Status,
			"timestamp": status.Timestamp,
			"checks":    status.Checks,
			"uptime":    time.Since(startTime).String(),
		})
	})

	// Readiness endpoint
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repoFactory.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{
				"status":       "not_ready",
				"timestamp":    time.Now(),
				"dependencies": "unhealthy",
				"error":        err.Error(),
			})
			return
		}

		c.JSON(200, gin.H{
			"status":       "ready",
			"timestamp":    time.Now(),
			"dependencies": "ok",
		})
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting vodnet server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down vodnet server...")

	// Flush pending watch history before the process goes away.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := historyService.Flush(flushCtx); err != nil {
		log.Warnw("failed to flush watch history", "error", err)
	}
	flushCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("vodnet server stopped")
}
