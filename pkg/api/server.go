// Package api serves the coordinator's REST surface: quotes, order
// submission, secret submission, and order status polling.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/config"
	"github.com/manus-ai/fusion-coordinator/pkg/manager"
	"github.com/manus-ai/fusion-coordinator/pkg/metrics"
	"github.com/manus-ai/fusion-coordinator/pkg/quoter"
)

// Server is the REST front of the coordinator.
type Server struct {
	cfg     config.APIConfig
	manager *manager.Manager
	quoter  *quoter.Client
	metrics *metrics.Metrics
	logger  *zap.Logger

	srv *http.Server
}

// NewServer wires the REST server against its collaborators.
func NewServer(cfg config.APIConfig, mgr *manager.Manager, q *quoter.Client, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		manager: mgr,
		quoter:  q,
		metrics: m,
		logger:  logger,
	}
}

// Router builds the route table. Exposed separately so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/quoter/v1.0/quote/receive", s.handleQuote).Methods(http.MethodGet)
	r.HandleFunc("/relayer/v1.0/submit", s.handleSubmitOrder).Methods(http.MethodPost)
	r.HandleFunc("/relayer/v1.0/submit/secret", s.handleSubmitSecret).Methods(http.MethodPost)
	r.HandleFunc("/orders/v1.0/order/status/{orderHash}", s.handleOrderStatus).Methods(http.MethodGet)
	r.HandleFunc("/orders/v1.0/order/ready-to-accept-secret-fills/{orderHash}", s.handleReadyFills).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// Makers and resolver dashboards call from arbitrary origins.
	return cors.AllowAll().Handler(r)
}

// Start listens until the context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("REST server listening", zap.Int("port", s.cfg.Port))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("rest server failed: %w", err)
	}
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
