package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/config"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/handler"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/metrics"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/middleware"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	cfg     *config.Config
	reports report.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
	http    *http.Server
}

// NewServer wires the routes. m may be nil when metrics are disabled.
func NewServer(cfg *config.Config, reports report.Service, m *metrics.Metrics, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	// Recovery runs inside the access log so panicking requests are still logged and counted.
	router.Use(middleware.RequestID(), middleware.AccessLog(logger, m), gin.Recovery(), middleware.CORS())

	s := &Server{
		router:  router,
		cfg:     cfg,
		reports: reports,
		metrics: m,
		logger:  logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	reportHandler := handler.NewReportHandler(s.reports, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.GET("/relatorios", reportHandler.GetReport)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("address", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server exited")
	return nil
}
