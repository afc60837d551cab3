package ports

import (
	"context"
	"io"
	"time"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
)

type ForecastClient interface {
	FetchForecast(ctx context.Context, query entities.ForecastQuery) (*entities.ForecastResult, error)
	HealthCheck(ctx context.Context) error
}

type ForecastService interface {
	GetForecast(ctx context.Context, query entities.ForecastQuery) (*entities.ForecastResult, error)
	ProbeUpstream(ctx context.Context) error
	UpstreamStatus() UpstreamStatus
}

// UpstreamStatus is the outcome of the most recent upstream probe.
type UpstreamStatus struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type WorkbookExporter interface {
	Export(result *entities.ForecastResult, w io.Writer) error
	FileName(result *entities.ForecastResult) string
}
