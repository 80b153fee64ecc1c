package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/handlers"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

func New(
	cfg *config.Config,
	h *handlers.Handlers,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		Logger(logger),
		Metrics(m),
		CORS(cfg.Server.CORSOrigin),
	)

	s := &Server{
		config: cfg,
		router: router,
		logger: logger,
	}
	s.setupRoutes(h, gatherer)

	s.httpServer = &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	return s
}

func (s *Server) setupRoutes(h *handlers.Handlers, gatherer prometheus.Gatherer) {
	s.router.GET("/ready", h.Ready)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	api := s.router.Group("/api")
	api.Use(Timeout(s.config.Server.RequestTimeout))

	admin := []gin.HandlerFunc{}
	if s.config.Auth.Enabled() {
		api.Use(auth.Authenticate(s.config.Auth.Secret))
		admin = append(admin, auth.RequireAdmin())
	}

	api.GET("/health", h.Health)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	api.GET("/orders", append(admin, h.ListOrders)...)
	api.DELETE("/orders/:id", append(admin, h.DeleteOrder)...)
	api.GET("/stats", append(admin, h.GetStats)...)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer.ListenAndServe: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpServer.Shutdown: %w", err)
	}
	return nil
}
