package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps every live websocket client.
type ConnectionHub struct {
	clients map[string]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup

	// OnChange receives the client count after every add or delete.
	OnChange func(n int)
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[string]*Conn),
		l:       l,
	}
}

// Add registers a connection. An existing connection with the same id is closed.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.id]; ok {
		h.l.Warn(ctx, "replacing existing connection", "conn_id", existing.id)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "conn_id", existing.id, "err", err.Error())
		}
		h.wg.Done()
	}

	h.clients[newConn.id] = newConn
	h.wg.Add(1)
	h.changed()

	return nil
}

// Delete closes and forgets a connection.
func (h *ConnectionHub) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[id]
	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Debug(wrap.WithAction(context.Background(), "ws_connection_delete"), "failed to close conn", "conn_id", id, "err", err.Error())
	}

	delete(h.clients, id)
	h.wg.Done()
	h.changed()

	return nil
}

// Broadcast sends msg to every client. Clients that fail the write are dropped.
func (h *ConnectionHub) Broadcast(ctx context.Context, msg any) int {
	var failed []string
	sent := 0
	for id, conn := range h.Clients() {
		if err := conn.Send(msg); err != nil {
			h.l.Debug(ctx, "dropping websocket client", "conn_id", id, "err", err.Error())
			failed = append(failed, id)
			continue
		}
		sent++
	}

	for _, id := range failed {
		_ = h.Delete(id)
	}
	return sent
}

// Close closes every connection and waits until all are released.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	for id := range h.Clients() {
		_ = h.Delete(id)
	}

	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

// Clients returns a copy of the client map.
func (h *ConnectionHub) Clients() map[string]*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	copyMap := make(map[string]*Conn, len(h.clients))
	for id, conn := range h.clients {
		copyMap[id] = conn
	}
	return copyMap
}

func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *ConnectionHub) changed() {
	if h.OnChange != nil {
		h.OnChange(len(h.clients))
	}
}
