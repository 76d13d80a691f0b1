// Package feed broadcasts committed operation transitions to dashboard
// clients over websockets.
package feed

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Topics clients can subscribe to.
const (
	TopicOperations = "operations"
	TopicRentals    = "rentals"
)

// Event is one committed transition.
type Event struct {
	Topic           string    `json:"topic"`
	Type            string    `json:"type"`
	BusAssignmentID string    `json:"BusAssignmentID"`
	Status          string    `json:"Status"`
	At              time.Time `json:"at"`
}

// Publisher is what services depend on; a nil Publisher is allowed.
type Publisher interface {
	Publish(Event)
}

// Hub fans events out to the connections registered for each topic.
type Hub struct {
	clients   map[string]map[*websocket.Conn]bool
	broadcast chan Event
	mu        sync.Mutex
	done      chan struct{}
}

// NewHub creates a hub and starts its broadcast loop.
func NewHub(buffer int) *Hub {
	h := &Hub{
		clients:   make(map[string]map[*websocket.Conn]bool),
		broadcast: make(chan Event, buffer),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)
	for ev := range h.broadcast {
		h.mu.Lock()
		conns := make([]*websocket.Conn, 0, len(h.clients[ev.Topic]))
		for c := range h.clients[ev.Topic] {
			conns = append(conns, c)
		}
		h.mu.Unlock()

		for _, c := range conns {
			c.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.WriteJSON(ev); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					logrus.WithField("topic", ev.Topic).Info("feed: client closed during broadcast, unregistering")
				} else {
					logrus.WithError(err).WithField("topic", ev.Topic).Warn("feed: failed to send event")
				}
				h.Unregister(ev.Topic, c)
				c.Close()
			}
		}
	}
}

// Publish queues an event without blocking; when the buffer is full the
// event is dropped.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case h.broadcast <- ev:
	default:
		logrus.WithField("topic", ev.Topic).Warn("feed: broadcast channel full, dropping event")
	}
}

func (h *Hub) Register(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[topic]; !ok {
		h.clients[topic] = make(map[*websocket.Conn]bool)
	}
	h.clients[topic][conn] = true
	logrus.WithFields(logrus.Fields{
		"topic":    topic,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("feed: client registered")
}

func (h *Hub) Unregister(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[topic]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.clients, topic)
		}
	}
}

// Subscribers returns the number of connections on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[topic])
}

// Close stops the broadcast loop after draining queued events.
func (h *Hub) Close() {
	close(h.broadcast)
	<-h.done
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the token check, not by the browser header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away. Clients only listen; anything they send is discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.Register(topic, conn)
	defer func() {
		h.Unregister(topic, conn)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
