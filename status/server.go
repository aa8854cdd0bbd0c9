// SPDX-License-Identifier: MIT

package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/logging"
	"github.com/katalvlaran/parmatrix/metrics"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	shutdownWait = 5 * time.Second
)

// Server exposes the snapshot stream over HTTP:
//
//	GET /status   websocket, one JSON Snapshot per message
//	GET /metrics  Prometheus exposition (when metrics are configured)
//	GET /healthz  {"status":"ok","subscribers":N,"dropped":N}
type Server struct {
	b        *Broadcaster
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	buffer   int
	router   *mux.Router
	upgrader websocket.Upgrader
}

// NewServer wires routes. m and log may be nil.
func NewServer(b *Broadcaster, m *metrics.Metrics, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{
		b:       b,
		metrics: m,
		log:     log.WithField("component", "status-server"),
		buffer:  DefaultBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // read-only local feed
			},
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	s.router = r

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"subscribers": s.b.Subscribers(),
		"dropped":     s.b.Dropped(),
	})
}

// handleStatus streams snapshots to one websocket client until it leaves or
// the broadcaster closes.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch, cancel := s.b.Subscribe(s.buffer)
	defer cancel()
	log := s.log.WithField("remote", conn.RemoteAddr().String())
	log.Debug("status subscriber connected")

	// Reader: only control frames matter; any error means the client left.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			log.Debug("status subscriber left")
			return
		case snap, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream closed"))
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				log.WithError(err).Debug("status write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
