package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-catalog/internal/config"
	"github.com/stemsi/course-catalog/internal/database"
	"github.com/stemsi/course-catalog/internal/events"
	"github.com/stemsi/course-catalog/internal/handler"
	"github.com/stemsi/course-catalog/internal/logger"
	"github.com/stemsi/course-catalog/internal/middleware"
	"github.com/stemsi/course-catalog/internal/repository"
	"github.com/stemsi/course-catalog/internal/router"
	"github.com/stemsi/course-catalog/internal/service"
	"github.com/stemsi/course-catalog/internal/validator"
	"github.com/stemsi/course-catalog/internal/websocket"
	"github.com/stemsi/course-catalog/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("catalog_file", cfg.CatalogFile).
		Msg("Starting Course Catalog")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Event Sinks ───────────────────────────────────────────────────
	// Sinks and workers stop in separate stages: the Redis sink flushes its
	// buffer before the worker starts its final drain of the queue.
	sinkStage, workerStage := newStage(), newStage()

	hub := websocket.NewHub(cfg.EventBufferSize, log)
	sinkStage.Go(hub.Run)

	sinks := events.Multi{events.NewLogSink(log), hub}
	if rdb != nil {
		redisSink := events.NewRedisSink(rdb, config.WorkerKey.CatalogEventsQueue, cfg.EventBufferSize, log)
		sinks = append(sinks, redisSink)
		sinkStage.Go(redisSink.Run)
	}

	// ─── Initialize Store & Service ────────────────────────────────────
	courseRepo, err := repository.NewCourseRepository(cfg.CatalogFile,
		repository.WithSink(sinks),
		repository.WithCaseSensitiveLookup(cfg.CaseSensitiveLookup),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open course catalog")
	}
	if n, err := courseRepo.Count(ctx); err != nil {
		log.Warn().Err(err).Msg("Course catalog is not readable yet")
	} else {
		log.Info().Str("path", courseRepo.Path()).Int("courses", n).Msg("Course catalog loaded")
	}

	courseService := service.NewCourseService(courseRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Course: handler.NewCourseHandler(courseService),
		Page:   handler.NewPageHandler(courseService, log),
		Stats:  handler.NewStatsHandler(rdb),
		WS:     handler.NewWSHandler(hub, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	if rdb != nil {
		workerStage.Go(worker.NewCatalogEventWorker(rdb, log).Start)
	}

	var submitLimiter *middleware.RateLimiter
	if cfg.SubmitRateLimit > 0 {
		submitLimiter = middleware.NewRateLimiter(workerStage.ctx, cfg.SubmitRateLimit, time.Minute)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, log, submitLimiter)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Flush the event sinks, then stop the worker so it drains what they pushed.
	sinkStage.Stop()
	workerStage.Stop()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
