package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appconnect "github.com/vesi/backend/internal/application/connect"
	appwellness "github.com/vesi/backend/internal/application/wellness"
	"github.com/vesi/backend/internal/infrastructure/config"
	"github.com/vesi/backend/internal/infrastructure/credstore"
	"github.com/vesi/backend/internal/infrastructure/logger"
	"github.com/vesi/backend/internal/infrastructure/provider"
	"github.com/vesi/backend/internal/interfaces/http/handler"
	"github.com/vesi/backend/internal/interfaces/http/middleware"
	"github.com/vesi/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Vesi backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Credential store
	storeFactory := credstore.NewFactory(cfg.Storage, cfg.Redis,
		credstore.WithLogger(log),
		credstore.WithMemoryFallback(cfg.Storage.AllowMemoryFallback),
	)
	store, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create credential store", zap.Error(err))
	}
	log.Info("Credential store ready", zap.String("backend", cfg.Storage.Backend))

	// Provider registry and gateway
	registry := provider.BuildRegistry(cfg)
	gateway := provider.NewGateway(registry, store, provider.WithLogger(log))
	adapters := provider.DefaultAdapterSet()

	// Application services
	flowService := appconnect.NewFlowService(registry, store, gateway,
		appconnect.WithLogger(log),
	)
	syncService := appwellness.NewSyncService(gateway, adapters,
		appwellness.WithLogger(log),
	)
	insightService := appwellness.NewInsightService(syncService,
		appwellness.WithInsightLogger(log),
	)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Routes
	r := router.NewRouter(engine)
	r.Register(handler.NewConnectHandler(flowService)).
		Register(handler.NewWellnessHandler(syncService, insightService)).
		Register(handler.NewSystemHandler())
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
