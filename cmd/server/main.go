package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/JayBeez180/booking-system/internal/api"
	"github.com/JayBeez180/booking-system/internal/booking"
	"github.com/JayBeez180/booking-system/internal/cache"
	"github.com/JayBeez180/booking-system/internal/config"
	"github.com/JayBeez180/booking-system/internal/database"
	"github.com/JayBeez180/booking-system/internal/metrics"
	"github.com/JayBeez180/booking-system/internal/slots"
	"github.com/JayBeez180/booking-system/internal/sweep"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BOOKING_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var slotCache booking.SlotCache
	if cfg.Redis.Address != "" && cfg.SlotCacheTTL() > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		slotCache = cache.New(rdb, cfg.SlotCacheTTL(), &logger)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("slot cache enabled")
	}

	gen := slots.NewGenerator(db, cfg.Booking.SlotStrideMinutes)
	svc := booking.NewService(db, db, gen, slotCache, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusAddr, &logger)
	}

	scheduler := sweep.NewScheduler(cfg.SweepInterval(), svc, &logger)
	go scheduler.Start(ctx)

	limiter := api.NewClientLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	handler := api.NewServer(svc, &logger).Router(limiter)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("booking server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	scheduler.Stop()
}

func startMetricsServer(ctx context.Context, addr string, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("prometheus metrics server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server failed")
	}
}
