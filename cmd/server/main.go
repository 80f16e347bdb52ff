// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simplesearch/internal/api/handlers"
	"simplesearch/internal/config"
	"simplesearch/internal/database"
	"simplesearch/internal/engine"
	"simplesearch/internal/health"
	"simplesearch/internal/metrics"
	"simplesearch/internal/middleware"
	"simplesearch/internal/repository"
	"simplesearch/internal/search"
	"simplesearch/pkg/utils"
)

func main() {
	// .env must load before the logger reads LOG_LEVEL
	envLoaded := godotenv.Load() == nil

	logger := utils.GetLogger()
	if !envLoaded {
		logger.Debug("No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	metrics.RegisterEngineMetrics()

	provider := engine.NewProvider(cfg.EngineEndpoint(), logger)
	searchService := search.NewService(provider, cfg.Search, logger)

	// Analytics and caching are opt-in: each comes up only when its URL is
	// configured, and the search path works without either.
	var dbManager *database.Manager
	var repoManager *repository.RepositoryManager
	var cache *database.Cache

	if cfg.Database.URL != "" || cfg.Redis.URL != "" {
		dbManager, err = database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to storage")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}

		if dbManager.DB != nil {
			repoManager = repository.NewRepositoryManager(dbManager.DB)
		}
		if dbManager.Redis != nil {
			cache = database.NewCache(dbManager.Redis, logger)
		}
	}

	searchHandler := handlers.NewSearchHandler(searchService, repoManager, cache, cfg.Search, logger)
	healthChecker := health.NewHealthChecker(provider, dbManager, logger)
	healthHandler := handlers.NewHealthHandler(healthChecker, logger)

	if os.Getenv("LOG_LEVEL") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.RequestLogger(logger),
		metrics.Middleware(),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)

	router.GET("/", searchHandler.HandleHome)
	router.POST("/search", rateLimiter.RateLimit(), searchHandler.HandleSearch)
	router.GET("/search/suggestions", searchHandler.HandleSuggestions)
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
		// Write timeout stays above the engine client timeout so a slow
		// engine surfaces as a 502, not a dropped connection.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}

	logger.Info("Server exited")
}
