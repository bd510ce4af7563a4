package handlers

import (
	"log"
	"time"

	ws "github.com/fairuzullah/edu_lms/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
)

type chatEnvelope struct {
	Type     string `json:"type"`
	CourseID uint   `json:"course_id"`
	User     string `json:"user"`
	Message  string `json:"message"`
}

// ServeChat handles one chat connection: the client first joins a course
// room, then every class-message is fanned out to the room. The channel is
// ephemeral and best effort; nothing here affects grading or enrollment.
func (h *Handler) ServeChat(c *websocketcontrib.Conn) {
	var join chatEnvelope
	if err := c.ReadJSON(&join); err != nil || join.Type != "join-class" || join.CourseID == 0 {
		log.Printf("Chat join failed: invalid join message, error: %v", err)
		_ = c.WriteJSON(map[string]string{"error": "Expected a join-class message with a course_id"})
		c.Close()
		return
	}

	client := &ws.Client{CourseID: join.CourseID, Conn: c}
	h.Hub.Register <- client
	defer func() {
		h.Hub.Unregister <- client
		c.Close()
	}()

	for {
		var msg chatEnvelope
		if err := c.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "class-message" || msg.Message == "" {
			continue
		}

		h.Hub.Broadcast <- &ws.ChatMessage{
			CourseID:  join.CourseID,
			User:      msg.User,
			Message:   msg.Message,
			Timestamp: time.Now(),
		}
	}
}
