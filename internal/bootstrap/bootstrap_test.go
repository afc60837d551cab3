package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeLimewire/weather-app/config"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:            "forecast-viewer",
			Env:             "test",
			LogLevel:        "panic",
			Port:            0,
			ShutdownTimeout: time.Second,
		},
		OpenWeather: config.OpenWeatherConfig{
			APIKey:       "test-key",
			BaseURL:      baseURL,
			DefaultUnits: "kelvin",
			DefaultDays:  5,
		},
		API: config.APIConfig{
			BasePath:        "/api/v1",
			RateLimit:       10,
			RateLimitWindow: time.Second,
		},
		HealthCheck: config.HealthCheckConfig{
			City:          "London",
			Interval:      time.Hour,
			Timeout:       time.Second,
			RetryInterval: time.Millisecond,
			MaxRetries:    2,
		},
	}
}

func runUntilProbed(t *testing.T, upstream http.HandlerFunc, expectedProbes int32) {
	t.Helper()

	var probes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("cnt"))
		probes.Add(1)
		upstream(w, r)
	}))
	defer server.Close()

	app := NewBootstrapWithConfig(testConfig(server.URL), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.run(ctx)
	}()

	assert.Eventually(t, func() bool { return probes.Load() >= expectedProbes }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestBootstrap_Run(t *testing.T) {
	t.Run("healthy upstream", func(t *testing.T) {
		runUntilProbed(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"list":[],"city":{"name":"London","country":"GB"}}`))
		}, 1)
	})

	t.Run("failing upstream does not stop startup", func(t *testing.T) {
		runUntilProbed(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
		}, 2)
	})
}

func TestBootstrap_PrintConfigInfo(t *testing.T) {
	app := NewBootstrapWithConfig(testConfig("http://localhost"), logger.NewNop())
	assert.NotPanics(t, app.PrintConfigInfo)
}

func TestNewBootstrap_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: [broken"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = NewBootstrap()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
