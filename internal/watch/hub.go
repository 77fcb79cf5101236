package watch

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types sent to clients.
const (
	MessageBuilding = "building"
	MessageSuccess  = "success"
	MessageError    = "error"
)

// Message is a build event.
type Message struct {
	Type      string       `json:"type"`
	Timestamp int64        `json:"timestamp"`
	Services  []string     `json:"services,omitempty"`
	Duration  float64      `json:"duration,omitempty"` // milliseconds
	Errors    []BuildError `json:"errors,omitempty"`
}

// BuildError describes one failed service.
type BuildError struct {
	Service string `json:"service"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ReloadHub fans build events out to websocket clients.
type ReloadHub struct {
	connections map[*websocket.Conn]bool
	broadcast   chan *Message
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

// NewReloadHub creates a hub and starts its event loop.
func NewReloadHub(log *zap.Logger) *ReloadHub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &ReloadHub{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan *Message, 256),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		done:        make(chan struct{}),
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin:     localOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go h.run()
	return h
}

// localOrigin accepts same-origin and loopback requests only.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

func (h *ReloadHub) run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for conn := range h.connections {
				conn.Close()
				delete(h.connections, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.connections[conn] = true
			n := len(h.connections)
			h.mutex.Unlock()
			h.log.Debug("client connected", zap.Int("clients", n))

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				conn.Close()
			}
			n := len(h.connections)
			h.mutex.Unlock()
			h.log.Debug("client disconnected", zap.Int("clients", n))

		case message := <-h.broadcast:
			h.sendToAll(message)
		}
	}
}

func (h *ReloadHub) sendToAll(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mutex.RLock()
	var failed []*websocket.Conn
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("failed to send message", zap.Error(err))
			failed = append(failed, conn)
		}
	}
	h.mutex.RUnlock()

	if len(failed) > 0 {
		h.mutex.Lock()
		for _, conn := range failed {
			if _, ok := h.connections[conn]; ok {
				conn.Close()
				delete(h.connections, conn)
			}
		}
		h.mutex.Unlock()
	}
}

// HandleWebSocket upgrades the request and registers the client.
func (h *ReloadHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	select {
	case h.register <- conn:
		go h.readMessages(conn)
	case <-h.done:
		conn.Close()
	}
}

// readMessages drains the client so pings and closes are processed.
func (h *ReloadHub) readMessages(conn *websocket.Conn) {
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket error", zap.Error(err))
			}
			return
		}
	}
}

func (h *ReloadHub) send(m *Message) {
	m.Timestamp = time.Now().Unix()
	select {
	case h.broadcast <- m:
	case <-h.done:
	}
}

// NotifyBuilding announces that services are being rebuilt.
func (h *ReloadHub) NotifyBuilding(services []string) {
	h.send(&Message{Type: MessageBuilding, Services: services})
}

// NotifySuccess announces a finished rebuild.
func (h *ReloadHub) NotifySuccess(services []string, d time.Duration) {
	h.send(&Message{Type: MessageSuccess, Services: services, Duration: float64(d.Milliseconds())})
}

// NotifyError announces failed services.
func (h *ReloadHub) NotifyError(errs []BuildError) {
	h.send(&Message{Type: MessageError, Errors: errs})
}

// ConnectionCount returns the number of connected clients.
func (h *ReloadHub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections)
}

// Close disconnects every client and stops the hub.
func (h *ReloadHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
