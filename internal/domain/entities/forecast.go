package entities

import (
	"fmt"
	"time"
)

const (
	HoursPerDay         = 24
	SampleIntervalHours = 3
	// SamplesPerDay is the number of upstream samples covering one day.
	SamplesPerDay = HoursPerDay / SampleIntervalHours

	MinForecastDays     = 1
	MaxForecastDays     = 5
	DefaultForecastDays = MaxForecastDays
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@4x.png"

type ForecastQuery struct {
	City  string     `json:"city"`
	Units UnitSystem `json:"units"`
	Days  int        `json:"days"`
}

// NewForecastQuery builds a query with days clamped into the supported range.
func NewForecastQuery(city string, units UnitSystem, days int) ForecastQuery {
	return ForecastQuery{
		City:  city,
		Units: units,
		Days:  ClampDays(days),
	}
}

func ClampDays(days int) int {
	if days < MinForecastDays {
		return MinForecastDays
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}

func (q ForecastQuery) Validate() error {
	if q.City == "" {
		return ErrCityRequired
	}
	return nil
}

// SampleCount is the number of raw samples to request for q.Days days.
func (q ForecastQuery) SampleCount() int {
	return ClampDays(q.Days) * SamplesPerDay
}

// ForecastPoint is one 3-hour sample as returned by the upstream.
type ForecastPoint struct {
	Timestamp       int64   `json:"timestamp"`
	DateText        string  `json:"date_text"`
	Temperature     float64 `json:"temperature"`
	FeelsLike       float64 `json:"feels_like"`
	PressureHPa     float64 `json:"pressure_hpa"`
	Description     string  `json:"description"`
	IconID          string  `json:"icon_id"`
	WindSpeed       float64 `json:"wind_speed"`
	HumidityPercent float64 `json:"humidity_percent"`
}

func (p ForecastPoint) Time() time.Time {
	return time.Unix(p.Timestamp, 0)
}

func (p ForecastPoint) IconURL() string {
	if p.IconID == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFormat, p.IconID)
}

// DailyForecast is the sample chosen to represent one day.
type DailyForecast struct {
	ForecastPoint
	SampleIndex int    `json:"sample_index"`
	Weekday     string `json:"weekday"`
}

type ForecastResult struct {
	LocationName string          `json:"location_name"`
	CountryCode  string          `json:"country_code"`
	Units        UnitSystem      `json:"units"`
	Days         []DailyForecast `json:"days"`
}

func (r *ForecastResult) Title() string {
	if r.CountryCode == "" {
		return r.LocationName
	}
	return r.LocationName + ", " + r.CountryCode
}
