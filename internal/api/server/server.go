package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/api/middleware"
	"github.com/feral-file/ff-agent-registry/internal/api/rest"
	"github.com/feral-file/ff-agent-registry/internal/api/shared/executor"
	"github.com/feral-file/ff-agent-registry/internal/logger"
)

// Config holds the server configuration
type Config struct {
	Debug              bool
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	executor   executor.Executor
	authCfg    middleware.AuthConfig
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, exec executor.Executor, authCfg middleware.AuthConfig) *Server {
	return &Server{
		config:   cfg,
		executor: exec,
		authCfg:  authCfg,
	}
}

// Router builds the gin engine with middleware and routes attached
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.CORSAllowedOrigins))

	rest.SetupRoutes(router, rest.NewHandler(s.executor), s.authCfg)

	return router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server", zap.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
