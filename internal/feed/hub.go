package feed

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

const defaultBuffer = 16

// Event is pushed to every subscriber when a post changes.
type Event struct {
	Type      string    `json:"type"`
	PostID    int64     `json:"post_id,omitempty"`
	Post      any       `json:"post,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// inbound is what clients may send; only pings are answered.
type inbound struct {
	Type string `json:"type"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans post events out to websocket subscribers. Subscribers that fall
// behind by more than the buffer size are disconnected.
type Hub struct {
	logger *logging.Logger
	buffer int

	mu      sync.Mutex
	clients map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:  logger,
		buffer:  defaultBuffer,
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades GET /feed/ws to a websocket subscription.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(h.serve).ServeHTTP(w, r)
}

// Publish queues an event for every subscriber without blocking.
func (h *Hub) Publish(eventType string, postID int64, payload any) {
	ev := Event{Type: eventType, PostID: postID, Post: payload, Timestamp: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.clients {
		select {
		case s.send <- ev:
		default:
			h.logger.Warn("feed: dropping slow subscriber", "event", eventType)
			h.removeLocked(s)
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.clients {
		h.removeLocked(s)
	}
}

func (h *Hub) serve(conn *websocket.Conn) {
	s := &subscriber{conn: conn, send: make(chan Event, h.buffer)}
	s.send <- Event{Type: "hello", Timestamp: time.Now().UTC()}

	h.mu.Lock()
	h.clients[s] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("feed: subscriber connected", "remote", conn.Request().RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range s.send {
			if err := websocket.JSON.Send(conn, ev); err != nil {
				h.logger.Debug("feed: send failed", "error", err)
				break
			}
		}
		conn.Close()
	}()

	for {
		var msg inbound
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			h.mu.Lock()
			if _, ok := h.clients[s]; ok {
				select {
				case s.send <- Event{Type: "pong", Timestamp: time.Now().UTC()}:
				default:
				}
			}
			h.mu.Unlock()
		}
	}

	h.mu.Lock()
	h.removeLocked(s)
	h.mu.Unlock()
	<-done
	h.logger.Debug("feed: subscriber disconnected")
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(s *subscriber) {
	if _, ok := h.clients[s]; !ok {
		return
	}
	delete(h.clients, s)
	close(s.send)
}
