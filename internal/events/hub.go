package events

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Hub pushes bus events to every connected websocket client (kitchen, bar
// and floor views all watch the same stream).
type Hub struct {
	bus        *Bus
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func NewHub(bus *Bus) *Hub {
	return &Hub{
		bus:        bus,
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run drains the bus subscription and keeps the client set current. Meant to
// be started once as a goroutine.
func (h *Hub) Run() {
	events, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case event, ok := <-events:
			if !ok {
				return
			}
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /ws
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	h.register <- conn

	// Reader loop only detects disconnects; clients never send payloads.
	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
