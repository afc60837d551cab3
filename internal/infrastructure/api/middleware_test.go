package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return router
}

func doRequest(router http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_RequestID(t *testing.T) {
	m := NewMiddleware(10, time.Second, logger.NewNop())
	router := newTestRouter(m.RequestID())

	t.Run("generated", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/ping", nil)

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/ping", http.Header{RequestIDHeader: {"abc-123"}})

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestMiddleware_CORS(t *testing.T) {
	m := NewMiddleware(10, time.Second, logger.NewNop())
	router := newTestRouter(m.CORS())

	w := doRequest(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	w = doRequest(router, http.MethodOptions, "/ping", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_RateLimit(t *testing.T) {
	m := NewMiddleware(2, time.Hour, logger.NewNop())
	router := newTestRouter(m.RateLimit())

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/ping", nil).Code)

	w := doRequest(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Rate limit exceeded", decodeError(t, w.Body).Message)
}

func TestMiddleware_Recovery(t *testing.T) {
	m := NewMiddleware(10, time.Second, logger.NewNop())
	router := newTestRouter(m.Recovery(), m.RequestID(), m.Logging())

	var w *httptest.ResponseRecorder
	assert.NotPanics(t, func() {
		w = doRequest(router, http.MethodGet, "/panic", nil)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred", decodeError(t, w.Body).Message)
}

func TestMiddleware_NoCache(t *testing.T) {
	m := NewMiddleware(10, time.Second, logger.NewNop())
	router := newTestRouter(m.NoCache())

	w := doRequest(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
