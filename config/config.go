package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
)

type Config struct {
	App         AppConfig
	OpenWeather OpenWeatherConfig
	API         APIConfig
	HealthCheck HealthCheckConfig
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type OpenWeatherConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultUnits string `mapstructure:"default_units"`
	DefaultDays  int    `mapstructure:"default_days"`
}

type APIConfig struct {
	BasePath        string        `mapstructure:"base_path"`
	EnableSwagger   bool          `mapstructure:"enable_swagger"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// HealthCheckConfig drives the upstream probe run at startup and on a schedule.
type HealthCheckConfig struct {
	City          string        `mapstructure:"city"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/forecast-viewer/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "forecast-viewer")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "15s")

	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.default_units", string(entities.UnitsKelvin))
	v.SetDefault("openweather.default_days", entities.DefaultForecastDays)

	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.enable_swagger", true)
	v.SetDefault("api.rate_limit", 60)
	v.SetDefault("api.rate_limit_window", "1s")

	v.SetDefault("healthcheck.city", "London")
	v.SetDefault("healthcheck.interval", "10m")
	v.SetDefault("healthcheck.timeout", "10s")
	v.SetDefault("healthcheck.retry_interval", "2s")
	v.SetDefault("healthcheck.max_retries", 3)
}

func overrideFromEnv(v *viper.Viper) {
	// WEATHER_API_KEY is the older name and loses to OPENWEATHER_API_KEY.
	if apiKey := os.Getenv("WEATHER_API_KEY"); apiKey != "" {
		v.Set("openweather.api_key", apiKey)
	}
	if apiKey := os.Getenv("OPENWEATHER_API_KEY"); apiKey != "" {
		v.Set("openweather.api_key", apiKey)
	}
	if baseURL := os.Getenv("OPENWEATHER_BASE_URL"); baseURL != "" {
		v.Set("openweather.base_url", baseURL)
	}
	if units := os.Getenv("OPENWEATHER_UNITS"); units != "" {
		v.Set("openweather.default_units", units)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.Set("app.env", env)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("app.log_level", logLevel)
	}
	if port := os.Getenv("APP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("app.port", p)
		}
	}
}

// validateConfig deliberately accepts an empty API key: the upstream rejects
// the first request instead.
func validateConfig(cfg *Config) error {
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535, got %d", cfg.App.Port)
	}

	if cfg.OpenWeather.BaseURL == "" {
		return fmt.Errorf("OpenWeather base URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(cfg.OpenWeather.BaseURL); err != nil {
		return fmt.Errorf("OpenWeather base URL is invalid: %w", err)
	}
	if _, err := entities.ParseUnitSystem(cfg.OpenWeather.DefaultUnits); err != nil {
		return fmt.Errorf("OpenWeather default units: %w", err)
	}
	if cfg.OpenWeather.DefaultDays < entities.MinForecastDays || cfg.OpenWeather.DefaultDays > entities.MaxForecastDays {
		return fmt.Errorf("OpenWeather default days must be between %d and %d",
			entities.MinForecastDays, entities.MaxForecastDays)
	}

	if cfg.API.RateLimit <= 0 {
		return fmt.Errorf("API rate limit must be positive")
	}
	if cfg.API.RateLimitWindow <= 0 {
		return fmt.Errorf("API rate limit window must be positive")
	}

	if cfg.HealthCheck.Interval <= 0 {
		return fmt.Errorf("health check interval must be positive")
	}
	if cfg.HealthCheck.MaxRetries < 1 {
		return fmt.Errorf("health check max retries must be at least 1")
	}

	return nil
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// DefaultUnits is only called on validated configs.
func (c *Config) DefaultUnits() entities.UnitSystem {
	units, err := entities.ParseUnitSystem(c.OpenWeather.DefaultUnits)
	if err != nil {
		return entities.UnitsKelvin
	}
	return units
}
