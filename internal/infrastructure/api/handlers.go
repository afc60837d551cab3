package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

const (
	version  = "1.0.0"
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// QueryDefaults fills in the parameters a request leaves out.
type QueryDefaults struct {
	Units entities.UnitSystem
	Days  int
}

type APIHandler struct {
	service  ports.ForecastService
	exporter ports.WorkbookExporter
	defaults QueryDefaults
	logger   logger.Logger
}

func NewAPIHandler(service ports.ForecastService, exporter ports.WorkbookExporter, defaults QueryDefaults, log logger.Logger) *APIHandler {
	return &APIHandler{
		service:  service,
		exporter: exporter,
		defaults: defaults,
		logger:   log.WithField("component", "api_handler"),
	}
}

// GetForecast godoc
// @Summary Daily forecast for a city
// @Description Fetches the 3-hour forecast and keeps one sample per day
// @Tags forecast
// @Accept json
// @Produce json
// @Param city query string true "City name"
// @Param units query string false "kelvin, metric or imperial"
// @Param days query int false "Number of days (1-5)"
// @Success 200 {object} ForecastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /forecast [get]
func (h *APIHandler) GetForecast(c *gin.Context) {
	query, err := parseQuery(c.Query("city"), c.Query("units"), c.Query("days"), h.defaults)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	result, err := h.service.GetForecast(c.Request.Context(), query)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newForecastResponse(result))
}

// ExportForecast godoc
// @Summary Download a forecast as a workbook
// @Description Same parameters as /forecast, rendered as an xlsx file
// @Tags forecast
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param city query string true "City name"
// @Param units query string false "kelvin, metric or imperial"
// @Param days query int false "Number of days (1-5)"
// @Success 200 {file} file Excel file
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /forecast/export [get]
func (h *APIHandler) ExportForecast(c *gin.Context) {
	query, err := parseQuery(c.Query("city"), c.Query("units"), c.Query("days"), h.defaults)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	result, err := h.service.GetForecast(c.Request.Context(), query)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(result, &buf); err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to export forecast: %v", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", h.exporter.FileName(result)))
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Service status and the outcome of the last upstream probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *APIHandler) HealthCheck(c *gin.Context) {
	upstream := h.service.UpstreamStatus()

	health := HealthResponse{
		Status:  "healthy",
		Version: version,
		Time:    time.Now(),
		Services: map[string]string{
			"api":      "healthy",
			"upstream": "unknown",
		},
		Upstream: upstream,
	}

	switch {
	case upstream.CheckedAt.IsZero():
	case upstream.Healthy:
		health.Services["upstream"] = "healthy"
	default:
		health.Status = "degraded"
		health.Services["upstream"] = fmt.Sprintf("unhealthy: %s", upstream.Error)
	}

	c.JSON(http.StatusOK, health)
}

func (h *APIHandler) respondDomainError(c *gin.Context, err error) {
	h.respondError(c, statusForError(err), entities.UserMessage(err))
}

func (h *APIHandler) respondError(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("HTTP %d: %s", status, message)
	} else {
		h.logger.Warnf("HTTP %d: %s", status, message)
	}
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

func statusForError(err error) int {
	switch {
	case entities.IsValidationError(err):
		return http.StatusBadRequest
	case entities.IsUpstreamError(err):
		return http.StatusBadGateway
	case entities.IsNetworkError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseQuery leaves the city untouched: a blank city must still reach the
// client so the upstream failure can be reported as an invalid city.
func parseQuery(city, units, days string, defaults QueryDefaults) (entities.ForecastQuery, error) {
	unitSystem := defaults.Units
	if units != "" {
		parsed, err := entities.ParseUnitSystem(units)
		if err != nil {
			return entities.ForecastQuery{}, err
		}
		unitSystem = parsed
	}

	dayCount := defaults.Days
	if days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return entities.ForecastQuery{}, entities.ValidationError{Field: "days", Reason: "must be a whole number"}
		}
		dayCount = n
	}

	return entities.NewForecastQuery(city, unitSystem, dayCount), nil
}

type ForecastResponse struct {
	Location   string        `json:"location"`
	Country    string        `json:"country"`
	Units      string        `json:"units"`
	UnitSymbol string        `json:"unit_symbol"`
	Days       []DayResponse `json:"days"`
}

type DayResponse struct {
	Weekday         string    `json:"weekday"`
	DateText        string    `json:"date_text"`
	Time            time.Time `json:"time"`
	Temperature     float64   `json:"temperature"`
	FeelsLike       float64   `json:"feels_like"`
	PressureHPa     float64   `json:"pressure_hpa"`
	Description     string    `json:"description"`
	IconURL         string    `json:"icon_url,omitempty"`
	WindSpeed       float64   `json:"wind_speed"`
	HumidityPercent float64   `json:"humidity_percent"`
}

func newForecastResponse(result *entities.ForecastResult) ForecastResponse {
	days := make([]DayResponse, 0, len(result.Days))
	for _, day := range result.Days {
		days = append(days, DayResponse{
			Weekday:         day.Weekday,
			DateText:        day.DateText,
			Time:            day.Time().UTC(),
			Temperature:     day.Temperature,
			FeelsLike:       day.FeelsLike,
			PressureHPa:     day.PressureHPa,
			Description:     day.Description,
			IconURL:         day.IconURL(),
			WindSpeed:       day.WindSpeed,
			HumidityPercent: day.HumidityPercent,
		})
	}

	return ForecastResponse{
		Location:   result.LocationName,
		Country:    result.CountryCode,
		Units:      result.Units.String(),
		UnitSymbol: result.Units.Symbol(),
		Days:       days,
	}
}

type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type HealthResponse struct {
	Status   string               `json:"status"`
	Version  string               `json:"version"`
	Time     time.Time            `json:"time"`
	Services map[string]string    `json:"services"`
	Upstream ports.UpstreamStatus `json:"upstream"`
}
