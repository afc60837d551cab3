package testutils

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
)

type MockForecastClient struct {
	mock.Mock
}

func (m *MockForecastClient) FetchForecast(ctx context.Context, query entities.ForecastQuery) (*entities.ForecastResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ForecastResult), args.Error(1)
}

func (m *MockForecastClient) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockForecastService struct {
	mock.Mock
}

func (m *MockForecastService) GetForecast(ctx context.Context, query entities.ForecastQuery) (*entities.ForecastResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ForecastResult), args.Error(1)
}

func (m *MockForecastService) ProbeUpstream(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockForecastService) UpstreamStatus() ports.UpstreamStatus {
	args := m.Called()
	return args.Get(0).(ports.UpstreamStatus)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, interval time.Duration, task ports.Task) error {
	args := m.Called(ctx, interval, task)
	return args.Error(0)
}

func (m *MockScheduler) Stop() {
	m.Called()
}

type MockWorkbookExporter struct {
	mock.Mock
}

func (m *MockWorkbookExporter) Export(result *entities.ForecastResult, w io.Writer) error {
	args := m.Called(result, w)
	return args.Error(0)
}

func (m *MockWorkbookExporter) FileName(result *entities.ForecastResult) string {
	args := m.Called(result)
	return args.String(0)
}

// SampleResult builds a result with n daily entries starting at ts.
func SampleResult(n int, ts int64) *entities.ForecastResult {
	days := make([]entities.DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		point := entities.ForecastPoint{
			Timestamp:       ts + int64(i*entities.HoursPerDay*3600),
			DateText:        time.Unix(ts+int64(i*entities.HoursPerDay*3600), 0).UTC().Format("2006-01-02 15:04:05"),
			Temperature:     12.5 + float64(i),
			FeelsLike:       11.0 + float64(i),
			PressureHPa:     1012,
			Description:     "light rain",
			IconID:          "10d",
			WindSpeed:       4.1,
			HumidityPercent: 81,
		}
		days = append(days, entities.DailyForecast{
			ForecastPoint: point,
			SampleIndex:   i * entities.SamplesPerDay,
			Weekday:       entities.DayOfWeek(point.Timestamp),
		})
	}

	return &entities.ForecastResult{
		LocationName: "London",
		CountryCode:  "GB",
		Units:        entities.UnitsMetric,
		Days:         days,
	}
}
