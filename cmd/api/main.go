package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"universe-backtest/internal/api/handlers"
	"universe-backtest/internal/api/middleware"
	"universe-backtest/internal/backtest"
	"universe-backtest/internal/metrics"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	ttl := backtest.DefaultResultTTL
	if v := os.Getenv("RESULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatal().Err(err).Str("RESULT_TTL", v).Msg("RESULT_TTL must be a positive duration")
		}
		ttl = d
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger := log.Logger

	store := backtest.NewResultStore(ttl, 0)
	defer store.Close()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRegistry(promRegistry)

	router := gin.New()
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))

	scenarioHandler := handlers.NewScenarioHandler("", logger)
	runHandler := handlers.NewRunHandler(store, scenarioHandler, recorder, logger)
	filterHandler := handlers.NewFilterHandler()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stored_runs": store.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(router, runHandler, scenarioHandler, filterHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           middleware.CORS(router, os.Getenv("CORS_ORIGINS")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Dur("result_ttl", ttl).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
