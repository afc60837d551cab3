package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
)

var envKeys = []string{
	"WEATHER_API_KEY",
	"OPENWEATHER_API_KEY",
	"OPENWEATHER_BASE_URL",
	"OPENWEATHER_UNITS",
	"APP_ENV",
	"LOG_LEVEL",
	"APP_PORT",
}

// inTempDir clears the environment overrides and runs Load from a directory
// containing the given config.yaml (or none when content is empty).
func inTempDir(t *testing.T, content string) {
	t.Helper()

	for _, key := range envKeys {
		t.Setenv(key, "")
	}

	tmpDir := t.TempDir()
	if content != "" {
		err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(content), 0644)
		require.NoError(t, err)
	}

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "forecast-viewer", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 15*time.Second, cfg.App.ShutdownTimeout)

	assert.Equal(t, "", cfg.OpenWeather.APIKey)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeather.BaseURL)
	assert.Equal(t, entities.UnitsKelvin, cfg.DefaultUnits())
	assert.Equal(t, 5, cfg.OpenWeather.DefaultDays)

	assert.Equal(t, "/api/v1", cfg.API.BasePath)
	assert.True(t, cfg.API.EnableSwagger)
	assert.Equal(t, 60, cfg.API.RateLimit)
	assert.Equal(t, time.Second, cfg.API.RateLimitWindow)

	assert.Equal(t, "London", cfg.HealthCheck.City)
	assert.Equal(t, 10*time.Minute, cfg.HealthCheck.Interval)
	assert.Equal(t, 3, cfg.HealthCheck.MaxRetries)

	assert.Equal(t, ":8080", cfg.ServerAddr())
}

func TestLoad_FromFile(t *testing.T) {
	inTempDir(t, `
app:
  name: "forecast-viewer-test"
  env: "test"
  log_level: "debug"
  port: 9090
  shutdown_timeout: "5s"

openweather:
  api_key: "file-key"
  base_url: "http://localhost:9999/data/2.5"
  default_units: "metric"
  default_days: 3

api:
  base_path: "/api"
  enable_swagger: false
  rate_limit: 10
  rate_limit_window: "2s"

healthcheck:
  city: "Paris"
  interval: "1m"
  timeout: "3s"
  retry_interval: "100ms"
  max_retries: 2
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "forecast-viewer-test", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)

	assert.Equal(t, "file-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, "http://localhost:9999/data/2.5", cfg.OpenWeather.BaseURL)
	assert.Equal(t, entities.UnitsMetric, cfg.DefaultUnits())
	assert.Equal(t, 3, cfg.OpenWeather.DefaultDays)

	assert.Equal(t, "/api", cfg.API.BasePath)
	assert.False(t, cfg.API.EnableSwagger)
	assert.Equal(t, 10, cfg.API.RateLimit)
	assert.Equal(t, 2*time.Second, cfg.API.RateLimitWindow)

	assert.Equal(t, "Paris", cfg.HealthCheck.City)
	assert.Equal(t, time.Minute, cfg.HealthCheck.Interval)
	assert.Equal(t, 3*time.Second, cfg.HealthCheck.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.HealthCheck.RetryInterval)
	assert.Equal(t, 2, cfg.HealthCheck.MaxRetries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	inTempDir(t, `
openweather:
  api_key: "file-key"
`)

	t.Setenv("OPENWEATHER_API_KEY", "env-key")
	t.Setenv("OPENWEATHER_BASE_URL", "https://env.example.com/data/2.5")
	t.Setenv("OPENWEATHER_UNITS", "imperial")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("APP_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, "https://env.example.com/data/2.5", cfg.OpenWeather.BaseURL)
	assert.Equal(t, entities.UnitsImperial, cfg.DefaultUnits())
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, 7070, cfg.App.Port)
}

func TestLoad_LegacyAPIKeyVariable(t *testing.T) {
	inTempDir(t, "")
	t.Setenv("WEATHER_API_KEY", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.OpenWeather.APIKey)
}

func TestLoad_InvalidFile(t *testing.T) {
	inTempDir(t, "app: [unterminated")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App: AppConfig{Port: 8080},
			OpenWeather: OpenWeatherConfig{
				BaseURL:      "https://api.openweathermap.org/data/2.5",
				DefaultUnits: "kelvin",
				DefaultDays:  5,
			},
			API: APIConfig{RateLimit: 10, RateLimitWindow: time.Second},
			HealthCheck: HealthCheckConfig{
				Interval:   time.Minute,
				MaxRetries: 1,
			},
		}
	}

	t.Run("valid config without api key", func(t *testing.T) {
		assert.NoError(t, validateConfig(valid()))
	})

	testCases := []struct {
		name     string
		mutate   func(*Config)
		contains string
	}{
		{"bad port", func(c *Config) { c.App.Port = 0 }, "port"},
		{"empty base url", func(c *Config) { c.OpenWeather.BaseURL = "" }, "base URL cannot be empty"},
		{"relative base url", func(c *Config) { c.OpenWeather.BaseURL = "api/data" }, "base URL is invalid"},
		{"unknown units", func(c *Config) { c.OpenWeather.DefaultUnits = "rankine" }, "default units"},
		{"too many days", func(c *Config) { c.OpenWeather.DefaultDays = 6 }, "default days"},
		{"no days", func(c *Config) { c.OpenWeather.DefaultDays = 0 }, "default days"},
		{"zero rate limit", func(c *Config) { c.API.RateLimit = 0 }, "rate limit must be positive"},
		{"zero rate window", func(c *Config) { c.API.RateLimitWindow = 0 }, "rate limit window"},
		{"zero probe interval", func(c *Config) { c.HealthCheck.Interval = 0 }, "interval"},
		{"zero retries", func(c *Config) { c.HealthCheck.MaxRetries = 0 }, "max retries"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}
