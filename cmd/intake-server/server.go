package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/config"
	"github.com/ehr/intake/internal/domain/catalog"
	"github.com/ehr/intake/internal/domain/intake"
	"github.com/ehr/intake/internal/domain/queue"
	"github.com/ehr/intake/internal/platform/binding"
	"github.com/ehr/intake/internal/platform/db"
	"github.com/ehr/intake/internal/platform/metrics"
	"github.com/ehr/intake/internal/platform/middleware"
	"github.com/ehr/intake/internal/platform/websocket"
)

type app struct {
	echo    *echo.Echo
	intakes *intake.Service
	queue   *queue.Queue
	metrics *metrics.Collector
}

// newApp wires the HTTP surface. pinger is nil when the catalogue is served
// from memory.
func newApp(cfg *config.Config, logger zerolog.Logger, repo catalog.Repository, pinger db.Pinger) *app {
	collector := metrics.New()
	q := queue.New(queue.WithMetrics(collector))
	catalogSvc := catalog.NewService(repo)
	intakeSvc := intake.NewService(
		intake.NewSessions(cfg.SessionTTL),
		catalogSvc,
		intake.WithSink(intake.MultiSubmitter{intake.LogSubmitter{Logger: logger}, q}),
		intake.WithMetrics(collector),
		intake.WithLogger(logger),
	)

	websocket.SetOriginCheck(websocket.OriginChecker(cfg.CORSOrigins))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = binding.JSONSerializer{}

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics(collector))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pinger))
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	intake.NewHandler(intakeSvc).RegisterRoutes(apiV1)
	queue.NewHandler(q).RegisterRoutes(apiV1)

	return &app{echo: e, intakes: intakeSvc, queue: q, metrics: collector}
}

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return interval
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	var (
		repo   = catalog.NewMemoryRepo(nil)
		pinger db.Pinger
	)
	if cfg.HasDatabase() {
		pool, err := openPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		repo, pinger = catalog.NewPGRepo(pool), pool
		logger.Info().Msg("connected to database")
	} else {
		logger.Info().Msg("serving the built-in catalogue from memory")
	}

	a := newApp(cfg, logger, repo, pinger)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.intakes.RunSweeper(sweepCtx, sweepInterval(cfg.SessionTTL))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := a.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
