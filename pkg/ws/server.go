// Package ws serves the resolver WebSocket feed. Each connection gets a
// bounded outbox registered with the broadcaster; a resolver that cannot keep
// up loses frames rather than stalling the rest.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/config"
	"github.com/manus-ai/fusion-coordinator/pkg/manager"
	"github.com/manus-ai/fusion-coordinator/pkg/metrics"
)

// Server owns the WebSocket listener and the per-connection pumps.
type Server struct {
	cfg     config.WSConfig
	manager *manager.Manager
	metrics *metrics.Metrics
	logger  *zap.Logger

	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer builds the WebSocket server. Origin checks are disabled;
// resolvers are programs, not browsers.
func NewServer(cfg config.WSConfig, mgr *manager.Manager, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		manager: mgr,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start listens until the context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("WebSocket server listening", zap.Int("port", s.cfg.Port))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("websocket server failed: %w", err)
	}
}

// Shutdown closes the listener. Live connections are torn down by the
// broadcaster closing their outboxes.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	outbox := make(chan []byte, s.cfg.OutboxCapacity)
	id := s.manager.Broadcaster().Register(outbox)
	s.metrics.Subscribers.Inc()
	s.logger.Info("Resolver connected",
		zap.Uint64("subscriber_id", id),
		zap.String("remote", r.RemoteAddr))

	// Either pump ending tears the subscription down exactly once.
	// Unregister closes the outbox, which ends the write pump's range.
	var once sync.Once
	teardown := func() {
		once.Do(func() {
			s.manager.Broadcaster().Unregister(id)
			s.metrics.Subscribers.Dec()
			conn.Close()
			s.logger.Info("Resolver disconnected", zap.Uint64("subscriber_id", id))
		})
	}

	go s.writePump(id, conn, outbox, teardown)
	go s.readPump(id, conn, teardown)
}

// writePump drains the outbox onto the wire. A write that misses the deadline
// marks the resolver as gone; the broadcaster then drops its frames.
func (s *Server) writePump(id uint64, conn *websocket.Conn, outbox <-chan []byte, teardown func()) {
	defer teardown()

	for frame := range outbox {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteDeadline)); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.logger.Warn("Dropping slow resolver connection",
				zap.Uint64("subscriber_id", id),
				zap.Error(err))
			return
		}
	}
}

// readPump feeds inbound frames to the manager. Malformed frames are logged
// there and discarded; only transport errors end the loop.
func (s *Server) readPump(id uint64, conn *websocket.Conn, teardown func()) {
	defer teardown()
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Resolver read failed",
					zap.Uint64("subscriber_id", id),
					zap.Error(err))
			}
			return
		}
		// Errors are per-frame; the connection stays up.
		_ = s.manager.HandleReceiveEvent(frame)
	}
}
