package httpapi

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arogyaline/arogyaline/internal/observability"
	"github.com/arogyaline/arogyaline/internal/store"
)

const (
	feedWriteWait = 10 * time.Second
	feedReadWait  = 120 * time.Second
)

// FeedHub broadcasts newly persisted consultations to dashboard websocket
// clients. It satisfies the pipeline's Publisher.
type FeedHub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	metrics   *observability.Metrics
	writeWait time.Duration
}

func NewFeedHub(metrics *observability.Metrics) *FeedHub {
	return &FeedHub{
		clients:   make(map[*websocket.Conn]struct{}),
		metrics:   metrics,
		writeWait: feedWriteWait,
	}
}

// Publish fans one consultation out to every connected client. Publish runs
// inside the call pipeline, so each write carries a deadline: a dashboard
// that stops reading times out and is dropped instead of stalling the call.
func (h *FeedHub) Publish(c store.Consultation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteJSON(c); err != nil {
			log.Printf("feed: dropping client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
	h.metrics.ActiveFeedClients.Set(float64(len(h.clients)))
}

func (h *FeedHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	h.metrics.ActiveFeedClients.Set(float64(len(h.clients)))
}

func (h *FeedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.metrics.ActiveFeedClients.Set(float64(len(h.clients)))
}

// ClientCount returns the number of connected feed clients.
func (h *FeedHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
