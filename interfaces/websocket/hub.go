// interfaces/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/application/chatsession"
	"github.com/RadowanAhmed/mataim-chat-api/domain/repository"
	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Hub manages all WebSocket connections
type Hub struct {
	// Registered clients
	clients    map[uuid.UUID]*Client
	clientsMux sync.RWMutex

	// User connections mapping (userID -> clientIDs)
	userConnections    map[uuid.UUID][]uuid.UUID
	userConnectionsMux sync.RWMutex

	// Conversation subscriptions (conversationID -> clientIDs)
	conversationSubs    map[uuid.UUID][]uuid.UUID
	conversationSubsMux sync.RWMutex

	// Message handlers
	handlers map[string]MessageHandler

	// Core services
	chatService     service.ChatService
	presenceService service.PresenceService
	profileRepo     repository.ProfileRepository
	feed            chatsession.Feed
	sessionLogger   zerolog.Logger

	// Channels
	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	// Statistics
	startTime       time.Time
	totalMessages   int64
	messagesSentMux sync.RWMutex
}

// RateLimiter แบบ token bucket สำหรับจำกัดอัตราการส่งข้อความต่อ client
type RateLimiter struct {
	rate       int
	interval   time.Duration
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:       rate,
		interval:   interval,
		tokens:     rate,
		lastRefill: time.Now(),
	}
}

func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastRefill) > r.interval {
		r.tokens = r.rate
		r.lastRefill = now
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

// Client represents a WebSocket connection
//
// A client owns at most one chat session at a time; joining another
// conversation disposes the previous session first.
type Client struct {
	ID           uuid.UUID
	UserID       uuid.UUID  // บัญชีผู้ใช้ (สำหรับ presence)
	PartyID      uuid.UUID  // โปรไฟล์ตามบทบาท (viewer ของ session)
	Role         types.Role
	Conn         *websocket.Conn
	Send         chan []byte
	Hub          *Hub
	IsAlive      bool
	RateLimiter  *RateLimiter

	pingMux      sync.Mutex
	lastPingTime time.Time

	sessionMux    sync.Mutex
	session       *chatsession.Session
	sessionConvID *uuid.UUID
}

// touchPing บันทึกเวลาที่มีกิจกรรมล่าสุดจาก connection (thread-safe)
func (c *Client) touchPing() {
	c.pingMux.Lock()
	c.lastPingTime = time.Now()
	c.pingMux.Unlock()
}

// lastPing returns the last recorded activity time (thread-safe)
func (c *Client) lastPing() time.Time {
	c.pingMux.Lock()
	defer c.pingMux.Unlock()
	return c.lastPingTime
}

// Message types
type MessageType string

const (
	// Connection management
	TypeConnect    MessageType = "connect"
	TypeDisconnect MessageType = "disconnect"
	TypePing       MessageType = "ping"
	TypePong       MessageType = "pong"
	TypeError      MessageType = "error"

	// Chat messages
	TypeMessageSend    MessageType = "message.send"
	TypeMessageReceive MessageType = "message.receive"
	TypeMessageRead    MessageType = "message.read"
	TypeMessageList    MessageType = "message.list"
	TypeMessageFailed  MessageType = "message.failed"

	// Conversation / session events
	TypeConversationJoin        MessageType = "conversation.join"
	TypeConversationLeave       MessageType = "conversation.leave"
	TypeConversationFocus       MessageType = "conversation.focus"
	TypeConversationUpdate      MessageType = "conversation.update"
	TypeConversationParticipant MessageType = "conversation.participant"
	TypeSessionState            MessageType = "session.state"
)

// WebSocket message structure
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// Response message structure
type WSResponse struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
}

// BroadcastMessage for sending messages to multiple clients
type BroadcastMessage struct {
	Type      MessageType
	Data      interface{}
	UserIDs   []uuid.UUID
	ConvID    *uuid.UUID
	ExcludeID *uuid.UUID // Exclude specific client
}

// MessageHandler interface for handling different message types
type MessageHandler interface {
	Handle(ctx context.Context, client *Client, data json.RawMessage) error
	ValidateData(data json.RawMessage) error
}

// NewHub creates a new WebSocket hub
func NewHub(profileRepo repository.ProfileRepository, sessionLogger zerolog.Logger) *Hub {
	hub := &Hub{
		clients:          make(map[uuid.UUID]*Client),
		userConnections:  make(map[uuid.UUID][]uuid.UUID),
		conversationSubs: make(map[uuid.UUID][]uuid.UUID),
		handlers:         make(map[string]MessageHandler),
		profileRepo:      profileRepo,
		sessionLogger:    sessionLogger,
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		broadcast:        make(chan *BroadcastMessage, 1000), // Buffer size
		startTime:        time.Now(),
	}

	// Register handlers
	hub.registerHandlers()

	return hub
}

// SetChatService ตั้งค่า ChatService (ต้องทำก่อนเริ่ม Hub เพราะสร้างข้าม dependency cycle)
func (h *Hub) SetChatService(chatService service.ChatService) {
	h.chatService = chatService
}

// SetFeed ตั้งค่า realtime feed สำหรับ session
func (h *Hub) SetFeed(feed chatsession.Feed) {
	h.feed = feed
}

// SetPresenceService ตั้งค่า PresenceService
func (h *Hub) SetPresenceService(presenceService service.PresenceService) {
	h.presenceService = presenceService
	log.Println("PresenceService has been set in WebSocket Hub")
}

// Run starts the hub
func (h *Hub) Run(ctx context.Context) {
	log.Println("=== WebSocket Hub Run Started ===")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("WebSocket Hub: Context cancelled, shutting down")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ticker.C:
			h.checkAliveClients()
		}
	}
}

// registerClient registers a new client
func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	h.clients[client.ID] = client
	h.clientsMux.Unlock()

	// Add to user connections
	h.userConnectionsMux.Lock()
	isFirstConnection := len(h.userConnections[client.UserID]) == 0
	h.userConnections[client.UserID] = append(h.userConnections[client.UserID], client.ID)
	h.userConnectionsMux.Unlock()

	// อัปเดตสถานะออนไลน์เมื่อเป็น connection แรกของผู้ใช้
	if isFirstConnection && h.presenceService != nil {
		if err := h.presenceService.SetUserOnline(client.UserID); err != nil {
			log.Printf("Error setting user online: %v", err)
		}
	}

	// Send welcome message
	h.sendToClient(client, WSResponse{
		Type: TypeConnect,
		Data: map[string]interface{}{
			"message":   "Connected successfully",
			"client_id": client.ID.String(),
		},
		Timestamp: time.Now(),
		Success:   true,
	})
}

// unregisterClient unregisters a client and tears down its session
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMux.Unlock()

	// ปิด session ของ client (ละทิ้งผลลัพธ์ที่ค้างอยู่)
	client.closeSession()

	// Remove from user connections and check if this is the last connection
	h.userConnectionsMux.Lock()
	isLastConnection := false
	if connections, exists := h.userConnections[client.UserID]; exists {
		h.removeClientFromSlice(&connections, client.ID)
		if len(connections) == 0 {
			delete(h.userConnections, client.UserID)
			isLastConnection = true
		} else {
			h.userConnections[client.UserID] = connections
		}
	}
	h.userConnectionsMux.Unlock()

	// Remove from conversation subscriptions
	h.removeClientFromAllConversations(client.ID)

	// อัปเดตสถานะออฟไลน์เมื่อเป็น connection สุดท้ายของผู้ใช้
	if isLastConnection && h.presenceService != nil {
		if err := h.presenceService.SetUserOffline(client.UserID); err != nil {
			log.Printf("Error setting user offline: %v", err)
		}
	}
}

// checkAliveClients checks and removes dead connections
func (h *Hub) checkAliveClients() {
	h.clientsMux.RLock()
	clientsCopy := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.clientsMux.RUnlock()

	for _, client := range clientsCopy {
		if time.Since(client.lastPing()) > 90*time.Second {
			// unregister ไม่มี buffer และ loop นี้รันอยู่ใน goroutine เดียวกับ
			// ตัวรับ จึงต้องส่งผ่าน goroutine แยกเพื่อไม่ให้ Run ติดค้าง
			go func(stale *Client) {
				h.unregister <- stale
			}(client)
		}
	}
}

// IncrementMessageCount increments total message count (thread-safe)
func (h *Hub) IncrementMessageCount() {
	h.messagesSentMux.Lock()
	h.totalMessages++
	h.messagesSentMux.Unlock()
}

// GetStats returns WebSocket statistics
func (h *Hub) GetStats() map[string]interface{} {
	h.clientsMux.RLock()
	totalClients := len(h.clients)
	h.clientsMux.RUnlock()

	h.userConnectionsMux.RLock()
	totalUsers := len(h.userConnections)
	h.userConnectionsMux.RUnlock()

	h.conversationSubsMux.RLock()
	totalConversations := len(h.conversationSubs)
	h.conversationSubsMux.RUnlock()

	h.messagesSentMux.RLock()
	messages := h.totalMessages
	h.messagesSentMux.RUnlock()

	return map[string]interface{}{
		"total_connections":    totalClients,
		"unique_users":         totalUsers,
		"active_conversations": totalConversations,
		"total_messages":       messages,
		"uptime":               time.Since(h.startTime).String(),
		"started_at":           h.startTime,
	}
}
