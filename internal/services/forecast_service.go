package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

type ForecastService struct {
	client ports.ForecastClient
	logger logger.Logger
	now    func() time.Time

	mu     sync.RWMutex
	status ports.UpstreamStatus
}

var _ ports.ForecastService = (*ForecastService)(nil)

func NewForecastService(client ports.ForecastClient, log logger.Logger) *ForecastService {
	return &ForecastService{
		client: client,
		logger: log.WithField("component", "forecast_service"),
		now:    time.Now,
	}
}

// GetForecast passes domain errors through untouched so callers can classify
// them with errors.As.
func (s *ForecastService) GetForecast(ctx context.Context, query entities.ForecastQuery) (*entities.ForecastResult, error) {
	startTime := s.now()

	result, err := s.client.FetchForecast(ctx, query)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"city":  query.City,
			"units": query.Units.String(),
			"days":  query.Days,
		}).Warnf("Forecast request failed: %v", err)
		return nil, err
	}

	s.logger.Infof("Forecast for %s (%d days, %s) served in %v",
		result.Title(), len(result.Days), query.Units, s.now().Sub(startTime))
	return result, nil
}

// ProbeUpstream checks the upstream and records the outcome for UpstreamStatus.
func (s *ForecastService) ProbeUpstream(ctx context.Context) error {
	err := s.client.HealthCheck(ctx)

	status := ports.UpstreamStatus{
		Healthy:   err == nil,
		CheckedAt: s.now(),
	}
	if err != nil {
		status.Error = entities.UserMessage(err)
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	if err != nil {
		s.logger.Warnf("Upstream probe failed: %v", err)
		return fmt.Errorf("upstream probe: %w", err)
	}

	s.logger.Debug("Upstream probe passed")
	return nil
}

// UpstreamStatus has a zero CheckedAt until the first probe has run.
func (s *ForecastService) UpstreamStatus() ports.UpstreamStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
