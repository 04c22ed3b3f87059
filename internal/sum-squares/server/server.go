// Package server exposes the decomposition engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	sumsquares "github.com/chemandante/sum-squares/pkg/sum-squares"
)

const shutdownTimeout = 5 * time.Second

// Server serves decomposition queries and Prometheus metrics.
type Server struct {
	config   *sumsquares.Config
	handlers *Handlers
	router   *gin.Engine
	logger   *zap.Logger
}

// New builds the router. gatherer backs /metrics; nil uses the default
// Prometheus registry.
func New(config *sumsquares.Config, engine *sumsquares.Engine, gatherer prometheus.Gatherer, logger *zap.Logger) (*Server, error) {
	if config == nil {
		config = sumsquares.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	maxNumber, err := config.MaxNumber()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		config:   config,
		handlers: NewHandlers(engine, maxNumber, logger),
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	v1 := router.Group("/v1")
	v1.GET("/health", s.handlers.HandleHealth)
	v1.GET("/decompositions/:arity/:n", s.handlers.HandleDecompose)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Listen)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.Server.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadTimeout(),
		ReadTimeout:       s.config.ReadTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("serving", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
