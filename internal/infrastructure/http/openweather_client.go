package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

// API Docs: https://openweathermap.org/forecast5
// Sample request: https://api.openweathermap.org/data/2.5/forecast?q=London&appid=KEY&units=metric&cnt=40
const (
	DefaultBaseURL   = "https://api.openweathermap.org/data/2.5"
	forecastPath     = "/forecast"
	maxErrorBodySize = 64 << 10
)

type OpenWeatherClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	healthCity string
	logger     logger.Logger
}

var _ ports.ForecastClient = (*OpenWeatherClient)(nil)

// NewOpenWeatherClient builds a client without a client-side timeout; the
// transport defaults and the caller's context bound each request.
func NewOpenWeatherClient(baseURL, apiKey, healthCity string, log logger.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenWeatherClient{
		client:     &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		healthCity: healthCity,
		logger:     log.WithField("component", "openweather_client"),
	}
}

type forecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Dt    int64  `json:"dt"`
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *OpenWeatherClient) FetchForecast(ctx context.Context, query entities.ForecastQuery) (*entities.ForecastResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	requestURL, err := c.forecastURL(query.City, query.Units, query.SampleCount())
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"city":  query.City,
		"units": query.Units.String(),
		"cnt":   query.SampleCount(),
	}).Debug("Fetching forecast")

	apiResp, err := c.get(ctx, requestURL)
	if err != nil {
		if entities.IsUpstreamError(err) && strings.TrimSpace(query.City) == "" {
			c.logger.Debugf("Upstream rejected blank city: %v", err)
			return nil, entities.ErrInvalidCity
		}
		c.logger.Warnf("Forecast request for %q failed: %v", query.City, err)
		return nil, err
	}

	result := &entities.ForecastResult{
		LocationName: apiResp.City.Name,
		CountryCode:  apiResp.City.Country,
		Units:        query.Units,
		Days:         entities.SelectDailySamples(toForecastPoints(apiResp.List)),
	}

	c.logger.Debugf("Fetched %d samples for %s, kept %d days", len(apiResp.List), result.Title(), len(result.Days))
	return result, nil
}

// HealthCheck requests a single sample for the probe city.
func (c *OpenWeatherClient) HealthCheck(ctx context.Context) error {
	requestURL, err := c.forecastURL(c.healthCity, entities.UnitsKelvin, 1)
	if err != nil {
		return err
	}

	if _, err := c.get(ctx, requestURL); err != nil {
		return fmt.Errorf("OpenWeatherMap health check failed: %w", err)
	}

	c.logger.Debug("OpenWeatherMap API health check passed")
	return nil
}

func (c *OpenWeatherClient) forecastURL(city string, units entities.UnitSystem, count int) (string, error) {
	u, err := url.Parse(c.baseURL + forecastPath)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	if units := units.UpstreamValue(); units != "" {
		q.Set("units", units)
	}
	q.Set("cnt", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *OpenWeatherClient) get(ctx context.Context, requestURL string) (*forecastResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &entities.NetworkError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, newUpstreamError(resp, body)
	}

	var apiResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &entities.UpstreamError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Message:    fmt.Sprintf("failed to decode response: %v", err),
		}
	}

	return &apiResp, nil
}

func newUpstreamError(resp *http.Response, body []byte) *entities.UpstreamError {
	message := strings.TrimSpace(string(body))

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	return &entities.UpstreamError{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Message:    message,
	}
}

// statusText prefers the reason phrase the upstream sent over the canonical one.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func toForecastPoints(items []forecastItem) []entities.ForecastPoint {
	points := make([]entities.ForecastPoint, 0, len(items))
	for _, item := range items {
		point := entities.ForecastPoint{
			Timestamp:       item.Dt,
			DateText:        item.DtTxt,
			Temperature:     item.Main.Temp,
			FeelsLike:       item.Main.FeelsLike,
			PressureHPa:     item.Main.Pressure,
			WindSpeed:       item.Wind.Speed,
			HumidityPercent: item.Main.Humidity,
		}
		if len(item.Weather) > 0 {
			point.Description = item.Weather[0].Description
			point.IconID = item.Weather[0].Icon
		}
		points = append(points, point)
	}
	return points
}
