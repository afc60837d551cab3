package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/JoeLimewire/weather-app/config"
	_ "github.com/JoeLimewire/weather-app/docs"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

type APIServer struct {
	server      *http.Server
	router      *gin.Engine
	handler     *APIHandler
	pageHandler *PageHandler
	middleware  *Middleware
	config      *config.Config
	logger      logger.Logger
	errCh       chan error
}

func NewAPIServer(service ports.ForecastService, exporter ports.WorkbookExporter, middleware *Middleware, cfg *config.Config, log logger.Logger) *APIServer {
	gin.SetMode(gin.ReleaseMode)
	if cfg.App.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	defaults := QueryDefaults{
		Units: cfg.DefaultUnits(),
		Days:  cfg.OpenWeather.DefaultDays,
	}

	s := &APIServer{
		router:      gin.New(),
		handler:     NewAPIHandler(service, exporter, defaults, log),
		pageHandler: NewPageHandler(service, defaults, log),
		middleware:  middleware,
		config:      cfg,
		logger:      log.WithField("component", "api_server"),
		errCh:       make(chan error, 1),
	}
	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.SetHTMLTemplate(loadTemplates())

	s.router.Use(s.middleware.Recovery())
	s.router.Use(s.middleware.RequestID())
	s.router.Use(s.middleware.Logging())

	s.router.GET("/", s.middleware.NoCache(), s.pageHandler.Index)

	api := s.router.Group(s.config.API.BasePath)

	api.Use(s.middleware.CORS())
	api.Use(s.middleware.RateLimit())

	api.GET("/health", s.handler.HealthCheck)

	forecast := api.Group("/forecast", s.middleware.NoCache())
	{
		forecast.GET("", s.handler.GetForecast)
		forecast.GET("/export", s.handler.ExportForecast)
	}

	if s.config.API.EnableSwagger {
		url := ginSwagger.URL("/swagger/doc.json")
		s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))
		s.logger.Info("Swagger documentation enabled at /swagger/index.html")
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   http.StatusText(http.StatusNotFound),
			Message: fmt.Sprintf("Route %s not found", c.Request.URL.Path),
			Time:    time.Now(),
		})
	})
}

func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start binds the listener before returning so address errors surface here.
// Later serve failures are delivered on Errors.
func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         s.config.ServerAddr(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	go func() {
		s.logger.Infof("Starting API server on %s", listener.Addr())
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("API server failed: %v", err)
			s.errCh <- err
		}
	}()

	return nil
}

func (s *APIServer) Errors() <-chan error {
	return s.errCh
}

func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.App.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
