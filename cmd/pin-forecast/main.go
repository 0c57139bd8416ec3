package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/pin-forecast/internal/api/http"
	"github.com/i474232898/pin-forecast/internal/config"
	"github.com/i474232898/pin-forecast/internal/distance"
	distanceproviders "github.com/i474232898/pin-forecast/internal/distance/providers"
	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/scheduler"
	"github.com/i474232898/pin-forecast/internal/weather"
	weatherproviders "github.com/i474232898/pin-forecast/internal/weather/providers"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	weatherUpstream, err := weatherproviders.NewUpstream(weatherproviders.ProviderConfig{
		Type:       weatherproviders.ProviderType(cfg.WeatherProvider),
		APIKey:     cfg.WeatherAPIKey,
		BaseURL:    cfg.WeatherBaseURL,
		HTTPClient: httpClient,
		Metrics:    appMetrics,
	})
	if err != nil {
		log.Fatalf("failed to create weather provider: %v", err)
	}

	fetcher, err := distanceproviders.NewFetcher(distanceproviders.ProviderConfig{
		Type:          distanceproviders.ProviderType(cfg.RoutingProvider),
		APIKey:        cfg.GoogleMapsAPIKey,
		SigningSecret: cfg.GoogleMapsSecret,
		BaseURL:       cfg.RoutingBaseURL,
		HTTPClient:    httpClient,
		Metrics:       appMetrics,
	})
	if err != nil {
		log.Fatalf("failed to create routing provider: %v", err)
	}

	weatherService := weather.NewService(logger, weatherUpstream, cfg.WeatherAPIKey, appMetrics)
	distanceService := distance.NewService(logger, fetcher, cfg.GoogleMapsAPIKey, appMetrics)

	// Periodic upstream probe, disabled unless PROBE_INTERVAL is set.
	sched := scheduler.New(logger, cfg.ProbeInterval, appMetrics, weatherService, distanceService)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Deps{
		Log:         logger,
		Weather:     weatherService,
		Distance:    distanceService,
		Metrics:     appMetrics,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSAllowOrigins,
	})

	go func() {
		logger.Info("starting server",
			"port", cfg.Port,
			"weather_provider", weatherService.ProviderName(),
			"routing_provider", distanceService.ProviderName(),
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		log.Error(
			"APP_ENV was not specified or was invalid, logging errors only",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
