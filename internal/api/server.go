// Package api exposes the case dashboard over HTTP and websocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/dashboard"
	"github.com/case-dashboard/internal/domain"
	"github.com/case-dashboard/internal/middleware"
	"github.com/case-dashboard/internal/render"
)

// ChartRenderer turns a chart request into a figure document
type ChartRenderer interface {
	Render(req domain.ChartRequest) (render.Figure, error)
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	session       *dashboard.Session
	renderer      ChartRenderer
	router        *gin.Engine
	server        *http.Server
	upgrader      websocket.Upgrader
	log           *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, session *dashboard.Session, renderer ChartRenderer, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	server := &Server{
		configManager: configManager,
		session:       session,
		renderer:      renderer,
		router:        router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger,
	}

	server.setupRoutes()

	return server
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	// Long-lived; not subject to the request timeout
	v1.GET("/stream", s.handleStream)

	timed := v1.Group("", middleware.RequestTimeout(s.configManager.GetServerConfig().RequestTimeout))
	{
		timed.GET("/roster", s.handleRoster)
		timed.GET("/dashboard", s.handleDashboard)
		timed.GET("/charts", s.handleCharts)
		timed.GET("/counts/:attribute", s.handleCounts)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"version":    s.configManager.GetConfig().MCP.ServerVersion,
		"session_id": s.session.ID(),
		"records":    s.session.Dataset().Len(),
		"clinicians": s.session.Roster().Len() - 1,
		"loaded_at":  s.session.LoadedAt(),
	})
}

// abortWithError writes the standard error envelope
func abortWithError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, domain.NewDashboardError(code, message, details, c.GetString(middleware.CorrelationIDKey)))
}
