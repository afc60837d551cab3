package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
	"github.com/JoeLimewire/weather-app/internal/testutils"
)

func TestForecastService_GetForecast(t *testing.T) {
	query := entities.NewForecastQuery("London", entities.UnitsMetric, 3)

	t.Run("successful fetch", func(t *testing.T) {
		mockClient := &testutils.MockForecastClient{}
		expected := testutils.SampleResult(3, 1700006400)
		mockClient.On("FetchForecast", mock.Anything, query).Return(expected, nil).Once()

		service := NewForecastService(mockClient, logger.NewNop())
		result, err := service.GetForecast(context.Background(), query)

		require.NoError(t, err)
		assert.Same(t, expected, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("domain errors pass through unchanged", func(t *testing.T) {
		upstreamErr := &entities.UpstreamError{StatusCode: 404, StatusText: "Not Found", Message: "city not found"}

		testCases := []struct {
			name string
			err  error
		}{
			{"validation", entities.ErrCityRequired},
			{"upstream", upstreamErr},
			{"network", &entities.NetworkError{Err: errors.New("dial tcp: refused")}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				mockClient := &testutils.MockForecastClient{}
				mockClient.On("FetchForecast", mock.Anything, query).Return(nil, tc.err).Once()

				service := NewForecastService(mockClient, logger.NewNop())
				result, err := service.GetForecast(context.Background(), query)

				assert.Nil(t, result)
				assert.Equal(t, tc.err, err)
				mockClient.AssertExpectations(t)
			})
		}
	})
}

func TestForecastService_ProbeUpstream(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no probe yet", func(t *testing.T) {
		service := NewForecastService(&testutils.MockForecastClient{}, logger.NewNop())
		status := service.UpstreamStatus()
		assert.False(t, status.Healthy)
		assert.True(t, status.CheckedAt.IsZero())
	})

	t.Run("healthy probe", func(t *testing.T) {
		mockClient := &testutils.MockForecastClient{}
		mockClient.On("HealthCheck", mock.Anything).Return(nil).Once()

		service := NewForecastService(mockClient, logger.NewNop())
		service.now = func() time.Time { return fixed }

		require.NoError(t, service.ProbeUpstream(context.Background()))

		status := service.UpstreamStatus()
		assert.True(t, status.Healthy)
		assert.Empty(t, status.Error)
		assert.Equal(t, fixed, status.CheckedAt)
		mockClient.AssertExpectations(t)
	})

	t.Run("failed probe records the message", func(t *testing.T) {
		mockClient := &testutils.MockForecastClient{}
		mockClient.On("HealthCheck", mock.Anything).
			Return(&entities.UpstreamError{StatusCode: 401, StatusText: "Unauthorized", Message: "Invalid API key."}).Once()

		service := NewForecastService(mockClient, logger.NewNop())
		service.now = func() time.Time { return fixed }

		err := service.ProbeUpstream(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream probe")
		assert.True(t, entities.IsUpstreamError(err))

		status := service.UpstreamStatus()
		assert.False(t, status.Healthy)
		assert.Equal(t, "Unauthorized: Invalid API key.", status.Error)
		assert.Equal(t, fixed, status.CheckedAt)
	})

	t.Run("status is safe under concurrent probes", func(t *testing.T) {
		mockClient := &testutils.MockForecastClient{}
		mockClient.On("HealthCheck", mock.Anything).Return(nil)

		service := NewForecastService(mockClient, logger.NewNop())

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = service.ProbeUpstream(context.Background())
			}()
			go func() {
				defer wg.Done()
				_ = service.UpstreamStatus()
			}()
		}
		wg.Wait()

		assert.True(t, service.UpstreamStatus().Healthy)
	})
}
