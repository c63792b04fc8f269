// interfaces/websocket/client.go
package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/application/chatsession"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192

	// อนุญาต 10 ข้อความต่อ 10 วินาทีต่อ connection
	rateLimit         = 10
	rateLimitInterval = 10 * time.Second
)

// RegisterWebSocketRoutes registers the WebSocket endpoint
func RegisterWebSocketRoutes(app *fiber.App, hub *Hub, authMiddleware fiber.Handler) {
	// Upgrade check ต้องมาก่อน handler
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/chat", authMiddleware, websocket.New(func(conn *websocket.Conn) {
		serveClient(hub, conn)
	}))
}

// serveClient builds a client from the authenticated connection and runs
// its read loop until the connection drops
func serveClient(hub *Hub, conn *websocket.Conn) {
	userID, okUser := conn.Locals("user_id").(uuid.UUID)
	partyID, okParty := conn.Locals("party_id").(uuid.UUID)
	role, okRole := conn.Locals("role").(types.Role)
	if !okUser || !okParty || !okRole {
		log.Println("WebSocket: missing auth locals, closing connection")
		conn.Close()
		return
	}

	client := &Client{
		ID:          uuid.New(),
		UserID:      userID,
		PartyID:     partyID,
		Role:        role,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Hub:         hub,
		IsAlive:     true,
		RateLimiter: NewRateLimiter(rateLimit, rateLimitInterval),
	}
	client.touchPing()

	hub.register <- client

	go client.writePump()
	client.readPump()
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touchPing()
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for client %s: %v", c.ID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Hub.sendToClient(c, WSResponse{
				Type:      TypeError,
				Timestamp: time.Now(),
				Success:   false,
				Error:     "invalid message format",
			})
			continue
		}

		c.touchPing()
		c.Hub.handleMessage(c, &msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// currentSession returns the client's active session, if any
func (c *Client) currentSession() *chatsession.Session {
	c.sessionMux.Lock()
	defer c.sessionMux.Unlock()
	return c.session
}

// switchSession opens a session for the given conversation. An existing
// session for another conversation is disposed first; re-joining the
// current conversation only refreshes it.
func (c *Client) switchSession(conversationID uuid.UUID) {
	c.sessionMux.Lock()
	defer c.sessionMux.Unlock()

	if c.session != nil && c.sessionConvID != nil && *c.sessionConvID == conversationID {
		c.session.Focus()
		return
	}

	if c.session != nil {
		if c.sessionConvID != nil {
			c.Hub.unsubscribeFromConversation(c.ID, *c.sessionConvID)
		}
		c.session.Dispose()
	}

	session := chatsession.NewSession(
		conversationID,
		c.Role,
		c.PartyID,
		c.Hub.chatService,
		c.Hub.feed,
		c.Hub.profileRepo,
		c.Hub.sessionLogger,
	)
	c.session = session
	convID := conversationID
	c.sessionConvID = &convID

	go c.relaySessionEvents(session)
	session.Focus()
}

// leaveSession disposes the session if it matches the given conversation
func (c *Client) leaveSession(conversationID uuid.UUID) {
	c.sessionMux.Lock()
	defer c.sessionMux.Unlock()

	if c.session == nil || c.sessionConvID == nil || *c.sessionConvID != conversationID {
		return
	}
	c.session.Dispose()
	c.session = nil
	c.sessionConvID = nil
}

// closeSession disposes whatever session the client holds
func (c *Client) closeSession() {
	c.sessionMux.Lock()
	defer c.sessionMux.Unlock()

	if c.session != nil {
		c.session.Dispose()
		c.session = nil
		c.sessionConvID = nil
	}
}

// Wire payloads for session events

type sessionStatePayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	State          string    `json:"state"`
	Error          string    `json:"error,omitempty"`
}

type sessionMessagePayload struct {
	LocalID     string     `json:"local_id,omitempty"`
	ID          *uuid.UUID `json:"id,omitempty"`
	SenderID    uuid.UUID  `json:"sender_id"`
	SenderRole  types.Role `json:"sender_role"`
	MessageType string     `json:"message_type"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	Pending     bool       `json:"pending"`
}

type participantPayload struct {
	ID          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	VehicleType string    `json:"vehicle_type,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
}

func toMessagePayloads(messages []chatsession.Message) []sessionMessagePayload {
	out := make([]sessionMessagePayload, 0, len(messages))
	for _, m := range messages {
		p := sessionMessagePayload{
			LocalID:     m.LocalID,
			SenderID:    m.SenderID,
			SenderRole:  m.SenderRole,
			MessageType: m.MessageType,
			Content:     m.Content,
			CreatedAt:   m.CreatedAt,
			Pending:     m.Pending,
		}
		if m.ServerID != uuid.Nil {
			id := m.ServerID
			p.ID = &id
		}
		out = append(out, p)
	}
	return out
}

// relaySessionEvents forwards session events to the client until the
// session's event channel closes
func (c *Client) relaySessionEvents(session *chatsession.Session) {
	convID := session.ConversationID()

	for ev := range session.Events() {
		switch ev.Type {
		case chatsession.EventStateChanged:
			payload := sessionStatePayload{
				ConversationID: convID,
				State:          string(ev.State),
			}
			if ev.Err != nil {
				payload.Error = ev.Err.Error()
			}
			c.Hub.sendToClient(c, WSResponse{
				Type:      TypeSessionState,
				Data:      payload,
				Timestamp: time.Now(),
				Success:   ev.State != chatsession.StateFailed,
			})

		case chatsession.EventMessagesChanged:
			c.Hub.sendToClient(c, WSResponse{
				Type: TypeMessageList,
				Data: map[string]interface{}{
					"conversation_id": convID,
					"messages":        toMessagePayloads(ev.Messages),
				},
				Timestamp: time.Now(),
				Success:   true,
			})

		case chatsession.EventMessageFailed:
			payload := map[string]interface{}{
				"conversation_id": convID,
				"local_id":        ev.LocalID,
				"content":         ev.Content,
			}
			if ev.Err != nil {
				payload["error"] = ev.Err.Error()
			}
			c.Hub.sendToClient(c, WSResponse{
				Type:      TypeMessageFailed,
				Data:      payload,
				Timestamp: time.Now(),
				Success:   false,
			})

		case chatsession.EventParticipantLoaded:
			if ev.Participant == nil {
				continue
			}
			c.Hub.sendToClient(c, WSResponse{
				Type: TypeConversationParticipant,
				Data: participantPayload{
					ID:          ev.Participant.ID,
					Role:        string(ev.Participant.Role),
					DisplayName: ev.Participant.DisplayName,
					AvatarURL:   ev.Participant.AvatarURL,
					Phone:       ev.Participant.Phone,
					VehicleType: ev.Participant.VehicleType,
					Rating:      ev.Participant.Rating,
				},
				Timestamp: time.Now(),
				Success:   true,
			})
		}
	}
}
