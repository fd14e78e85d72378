package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/pochita-booking/internal/api/router"
	"github.com/wolfman30/pochita-booking/internal/app/bootstrap"
	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/booking"
	appconfig "github.com/wolfman30/pochita-booking/internal/config"
	"github.com/wolfman30/pochita-booking/internal/holidays"
	"github.com/wolfman30/pochita-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/pochita-booking/internal/http/middleware"
	"github.com/wolfman30/pochita-booking/internal/observability/metrics"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting pochita booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsHandler, bookingMetrics := setupMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil && cfg.IsProduction() {
		logger.Error("redis is required in production", "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessions := session.NewManager(bootstrap.BuildSessionStore(redisClient, cfg, logger), cfg.SessionTTL, logger)
	bookingService := booking.NewService(bootstrap.BuildBookingStore(redisClient, cfg), bookingMetrics, logger)
	clinicStore := bootstrap.BuildClinicStore(ctx, redisClient, cfg, logger)

	deps := handlers.Deps{
		Backend:   backend.New(cfg.BackendBaseURL, cfg.BackendTimeout, logger, backend.WithRecorder(bookingMetrics)),
		Sessions:  sessions,
		Clinic:    clinicStore,
		ClinicID:  cfg.ClinicID,
		Holidays:  holidays.NewCalendar(),
		Location:  cfg.Location(),
		LoginPath: cfg.LoginPath,
		Logger:    logger,
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	go limiter.Run(ctx.Done(), time.Minute)

	routerCfg := &router.Config{
		Logger:   logger,
		Sessions: sessions,
		Cookie: httpmiddleware.CookieOptions{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionSecure || cfg.IsProduction(),
			MaxAge: cfg.SessionTTL,
		},
		Auth:               handlers.NewAuthHandler(deps),
		Calendar:           handlers.NewCalendarHandler(deps),
		Booking:            handlers.NewBookingHandler(deps, bookingService),
		Appointments:       handlers.NewAppointmentsHandler(deps),
		Pets:               handlers.NewPetsHandler(deps),
		Dashboard:          handlers.NewDashboardHandler(deps),
		LoginPath:          cfg.LoginPath,
		RateLimiter:        limiter,
		Recorder:           bookingMetrics,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = metricsHandler
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics builds a dedicated registry with the booking collectors and
// the Go runtime collectors.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewBookingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), m
}
