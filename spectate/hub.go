// Package spectate streams frame snapshots to WebSocket viewers.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/telemetry"
)

const (
	writeWait    = 5 * time.Second
	readWait     = 60 * time.Second
	shutdownWait = 2 * time.Second
)

// Hub fans snapshots out to connected viewers. Broadcast never blocks the
// simulation: a viewer whose queue is full misses the frame.
type Hub struct {
	logger   *slog.Logger
	queue    int
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]*client
	latest  []byte

	nextID  atomic.Uint64
	sent    atomic.Uint64
	dropped atomic.Uint64
}

type client struct {
	id   uint64
	conn *websocket.Conn
	out  chan []byte
}

// NewHub creates a hub with per-viewer queues of cfg.ClientQueue frames.
func NewHub(cfg config.SpectateConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	queue := cfg.ClientQueue
	if queue < 1 {
		queue = 1
	}
	return &Hub{
		logger:  logger,
		queue:   queue,
		clients: make(map[uint64]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast encodes s once and queues it for every viewer.
func (h *Hub) Broadcast(s *telemetry.Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		h.logger.Error("failed to encode snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	for _, c := range h.clients {
		select {
		case c.out <- data:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Sent returns the number of frames queued to viewers.
func (h *Hub) Sent() uint64 { return h.sent.Load() }

// Dropped returns the number of frames skipped for slow viewers.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Handler serves the WebSocket stream on /ws and the latest frame as JSON on /latest.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/latest", h.serveLatest)
	return mux
}

func (h *Hub) serveLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	data := h.latest
	h.mu.Unlock()
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   h.nextID.Add(1),
		conn: conn,
		out:  make(chan []byte, h.queue),
	}
	h.add(c)
	h.logger.Info("spectator connected", "id", c.id, "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()

	// Viewers only listen; reading detects the close.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	<-done
	_ = conn.Close()
	h.logger.Info("spectator disconnected", "id", c.id)
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.out {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("write failed", "id", c.id, "error", err)
			// Unblock the reader so the client is removed.
			_ = c.conn.Close()
			for range c.out {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// remove unregisters c and closes its queue. The queue is only closed under
// the lock so Broadcast never sends on a closed channel.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.out)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	h.logger.Info("spectator stream listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
