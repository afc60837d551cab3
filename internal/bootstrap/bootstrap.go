package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JoeLimewire/weather-app/config"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/infrastructure/api"
	"github.com/JoeLimewire/weather-app/internal/infrastructure/excel"
	owmhttp "github.com/JoeLimewire/weather-app/internal/infrastructure/http"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
	"github.com/JoeLimewire/weather-app/internal/scheduler"
	"github.com/JoeLimewire/weather-app/internal/services"
)

type Bootstrap struct {
	config *config.Config
	logger logger.Logger
}

func NewBootstrap() (*Bootstrap, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", cfg.App.Name)

	return NewBootstrapWithConfig(cfg, log), nil
}

func NewBootstrapWithConfig(cfg *config.Config, log logger.Logger) *Bootstrap {
	return &Bootstrap{
		config: cfg,
		logger: log,
	}
}

type dependencies struct {
	service   ports.ForecastService
	scheduler ports.Scheduler
	server    *api.APIServer
}

// Run blocks until SIGINT or SIGTERM.
func (b *Bootstrap) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	go func() {
		select {
		case sig := <-signalChan:
			b.logger.Infof("Received signal: %v. Shutting down...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return b.run(ctx)
}

func (b *Bootstrap) run(ctx context.Context) error {
	b.logger.Info("Starting forecast-viewer service")
	b.PrintConfigInfo()

	deps := b.initDependencies()

	if b.config.OpenWeather.APIKey == "" {
		b.logger.Warn("OpenWeatherMap API key is empty, forecast requests will be rejected upstream")
	}

	b.logger.Info("Performing initial upstream health check...")
	healthChecker := NewHealthChecker(
		deps.service.ProbeUpstream,
		b.config.HealthCheck.Timeout,
		b.config.HealthCheck.RetryInterval,
		b.config.HealthCheck.MaxRetries,
		b.logger,
	)
	if err := healthChecker.CheckUpstream(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warnf("Upstream unavailable at startup, serving anyway: %v", err)
	}

	if err := deps.scheduler.Schedule(ctx, b.config.HealthCheck.Interval, deps.service.ProbeUpstream); err != nil {
		return fmt.Errorf("failed to schedule upstream probe: %w", err)
	}
	defer deps.scheduler.Stop()

	if err := deps.server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-deps.server.Errors():
	}

	b.logger.Info("Stopping service...")
	if err := deps.server.Stop(context.Background()); err != nil {
		b.logger.Errorf("Failed to stop API server: %v", err)
	}

	if serveErr != nil {
		return fmt.Errorf("API server failed: %w", serveErr)
	}

	b.logger.Info("Service stopped gracefully")
	return nil
}

func (b *Bootstrap) initDependencies() dependencies {
	b.logger.Info("Initializing dependencies...")

	client := owmhttp.NewOpenWeatherClient(
		b.config.OpenWeather.BaseURL,
		b.config.OpenWeather.APIKey,
		b.config.HealthCheck.City,
		b.logger,
	)
	b.logger.Info("OpenWeatherMap client initialized")

	service := services.NewForecastService(client, b.logger)
	exporter := excel.NewWorkbookExporter(b.logger)
	cronScheduler := scheduler.NewCronScheduler(b.config.HealthCheck.Timeout, b.logger)

	middleware := api.NewMiddleware(b.config.API.RateLimit, b.config.API.RateLimitWindow, b.logger)
	server := api.NewAPIServer(service, exporter, middleware, b.config, b.logger)

	return dependencies{
		service:   service,
		scheduler: cronScheduler,
		server:    server,
	}
}

func (b *Bootstrap) PrintConfigInfo() {
	b.logger.Infof("Service Name: %s", b.config.App.Name)
	b.logger.Infof("Environment: %s", b.config.App.Env)
	b.logger.Infof("Log level: %s", b.config.App.LogLevel)
	b.logger.Infof("Listen address: %s", b.config.ServerAddr())
	b.logger.Infof("OpenWeatherMap Base URL: %s", b.config.OpenWeather.BaseURL)
	b.logger.Infof("Default units: %s, default days: %d", b.config.DefaultUnits(), b.config.OpenWeather.DefaultDays)
	b.logger.Infof("Upstream probe: %s every %v", b.config.HealthCheck.City, b.config.HealthCheck.Interval)
}
