package ingest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mvaleriani/elysia/internal/observability"
)

const (
	wsWriteTimeout = 5 * time.Second

	// observerBacklog bounds how far an observer may fall behind before
	// it is dropped.
	observerBacklog = 16
)

// Hub broadcasts batch summaries to connected UI observers. Observers are
// read-only; a slow or dead connection is dropped rather than allowed to
// stall ingestion.
//
// Writes never touch a connection directly: gorilla/websocket allows one
// concurrent writer per connection, and batches arrive on concurrent
// handler goroutines, so every observer gets a buffered outbound channel
// drained by a single writer goroutine.
type Hub struct {
	metrics  *observability.Metrics
	upgrader websocket.Upgrader

	mu        sync.Mutex
	observers map[*observer]struct{}
}

type observer struct {
	conn     *websocket.Conn
	outbound chan BatchSummary
	done     chan struct{}
	stop     sync.Once
}

func (o *observer) close() {
	o.stop.Do(func() {
		close(o.done)
		_ = o.conn.Close()
	})
}

func NewHub(metrics *observability.Metrics) *Hub {
	return &Hub{
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The sync server is already protected by the shared secret on
			// the write path; the event feed carries only counts.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		observers: make(map[*observer]struct{}),
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	o := &observer{
		conn:     conn,
		outbound: make(chan BatchSummary, observerBacklog),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	h.observers[o] = struct{}{}
	n := len(h.observers)
	h.mu.Unlock()
	h.metrics.WSObservers.Set(float64(n))

	go h.writeLoop(o)

	// Reader goroutine exists only to notice the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(o)
				return
			}
		}
	}()
}

// writeLoop is the observer's sole writer.
func (h *Hub) writeLoop(o *observer) {
	for {
		select {
		case <-o.done:
			return
		case summary := <-o.outbound:
			_ = o.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := o.conn.WriteJSON(summary); err != nil {
				h.drop(o)
				return
			}
		}
	}
}

// Broadcast queues a batch summary for every observer. Safe for concurrent
// callers; an observer whose backlog is full is dropped.
func (h *Hub) Broadcast(summary BatchSummary) {
	h.mu.Lock()
	observers := make([]*observer, 0, len(h.observers))
	for o := range h.observers {
		observers = append(observers, o)
	}
	h.mu.Unlock()

	for _, o := range observers {
		select {
		case o.outbound <- summary:
		case <-o.done:
		default:
			h.drop(o)
		}
	}
}

// Close disconnects all observers.
func (h *Hub) Close() {
	h.mu.Lock()
	observers := make([]*observer, 0, len(h.observers))
	for o := range h.observers {
		observers = append(observers, o)
	}
	h.observers = make(map[*observer]struct{})
	h.mu.Unlock()

	for _, o := range observers {
		o.close()
	}
	h.metrics.WSObservers.Set(0)
}

func (h *Hub) drop(o *observer) {
	h.mu.Lock()
	_, ok := h.observers[o]
	delete(h.observers, o)
	n := len(h.observers)
	h.mu.Unlock()
	o.close()
	if ok {
		h.metrics.WSObservers.Set(float64(n))
	}
}
