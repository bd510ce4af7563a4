package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Client is one live connection inside a course chat room.
type Client struct {
	CourseID uint
	Conn     *websocket.Conn
}

type ChatMessage struct {
	CourseID  uint      `json:"course_id"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans chat messages out to every connection currently subscribed to a
// course topic. Delivery is best effort; dead connections are evicted on
// the first failed write.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*websocket.Conn]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *ChatMessage
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*websocket.Conn]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *ChatMessage),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.rooms[client.CourseID] == nil {
				h.rooms[client.CourseID] = make(map[*websocket.Conn]bool)
			}
			h.rooms[client.CourseID][client.Conn] = true
			h.mu.Unlock()
			log.Printf("Client joined course %d chat", client.CourseID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.CourseID]; ok {
				delete(room, client.Conn)
				if len(room) == 0 {
					delete(h.rooms, client.CourseID)
				}
			}
			h.mu.Unlock()
			log.Printf("Client left course %d chat", client.CourseID)

		case message := <-h.Broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.rooms[message.CourseID]))
			for conn := range h.rooms[message.CourseID] {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				if err := conn.WriteJSON(message); err != nil {
					log.Printf("Error sending chat message to course %d client: %v", message.CourseID, err)
					conn.Close()
					h.mu.Lock()
					delete(h.rooms[message.CourseID], conn)
					h.mu.Unlock()
				}
			}
		}
	}
}
