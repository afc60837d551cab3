package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

type HealthChecker struct {
	probe         ports.Task
	timeout       time.Duration
	retryInterval time.Duration
	maxRetries    int
	logger        logger.Logger
}

func NewHealthChecker(probe ports.Task, timeout, retryInterval time.Duration, maxRetries int, log logger.Logger) *HealthChecker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &HealthChecker{
		probe:         probe,
		timeout:       timeout,
		retryInterval: retryInterval,
		maxRetries:    maxRetries,
		logger:        log.WithField("component", "health_checker"),
	}
}

// CheckUpstream runs the probe up to maxRetries times, each with its own timeout.
func (h *HealthChecker) CheckUpstream(ctx context.Context) error {
	return h.checkWithRetry(ctx, h.probe, "OpenWeatherMap")
}

func (h *HealthChecker) checkWithRetry(ctx context.Context, checkFunc ports.Task, serviceName string) error {
	var lastErr error

	for i := 0; i < h.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		h.logger.Debugf("Checking %s (attempt %d/%d)", serviceName, i+1, h.maxRetries)

		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := checkFunc(checkCtx)
		cancel()

		if err == nil {
			h.logger.Infof("%s health check passed", serviceName)
			return nil
		}

		lastErr = err
		h.logger.Warnf("%s health check failed (attempt %d/%d): %v", serviceName, i+1, h.maxRetries, err)

		if i < h.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryInterval):
			}
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", h.maxRetries, lastErr)
}
