// interfaces/websocket/handlers.go
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// registerHandlers registers all message handlers
func (h *Hub) registerHandlers() {
	h.handlers[string(TypePing)] = &PingHandler{}
	h.handlers[string(TypeConversationJoin)] = &ConversationJoinHandler{hub: h}
	h.handlers[string(TypeConversationLeave)] = &ConversationLeaveHandler{hub: h}
	h.handlers[string(TypeConversationFocus)] = &ConversationFocusHandler{hub: h}
	h.handlers[string(TypeMessageSend)] = &MessageSendHandler{hub: h}
	h.handlers[string(TypeMessageRead)] = &MessageReadHandler{hub: h}
}

// handleMessage dispatches an incoming message to its handler
func (h *Hub) handleMessage(client *Client, msg *WSMessage) {
	handler, exists := h.handlers[string(msg.Type)]
	if !exists {
		h.sendToClient(client, WSResponse{
			Type:      TypeError,
			Timestamp: time.Now(),
			RequestID: msg.RequestID,
			Success:   false,
			Error:     fmt.Sprintf("unknown message type: %s", msg.Type),
		})
		return
	}

	if err := handler.ValidateData(msg.Data); err != nil {
		h.sendToClient(client, WSResponse{
			Type:      TypeError,
			Timestamp: time.Now(),
			RequestID: msg.RequestID,
			Success:   false,
			Error:     err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := handler.Handle(ctx, client, msg.Data); err != nil {
		h.sendToClient(client, WSResponse{
			Type:      TypeError,
			Timestamp: time.Now(),
			RequestID: msg.RequestID,
			Success:   false,
			Error:     err.Error(),
		})
	}
}

// ===== Ping =====

type PingHandler struct{}

func (ph *PingHandler) Handle(ctx context.Context, client *Client, data json.RawMessage) error {
	client.touchPing()
	client.Hub.sendToClient(client, WSResponse{
		Type:      TypePong,
		Timestamp: time.Now(),
		Success:   true,
	})
	return nil
}

func (ph *PingHandler) ValidateData(data json.RawMessage) error {
	return nil
}

// ===== Conversation join =====

type ConversationJoinData struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

// ConversationJoinHandler เปิดหน้าจอแชท: สร้าง session ใหม่สำหรับการสนทนานี้
type ConversationJoinHandler struct {
	hub *Hub
}

func (cj *ConversationJoinHandler) Handle(ctx context.Context, client *Client, data json.RawMessage) error {
	var joinData ConversationJoinData
	if err := json.Unmarshal(data, &joinData); err != nil {
		return fmt.Errorf("invalid join data: %w", err)
	}

	client.switchSession(joinData.ConversationID)
	cj.hub.subscribeToConversation(client.ID, joinData.ConversationID)
	return nil
}

func (cj *ConversationJoinHandler) ValidateData(data json.RawMessage) error {
	var joinData ConversationJoinData
	if err := json.Unmarshal(data, &joinData); err != nil {
		return fmt.Errorf("invalid join data format: %w", err)
	}
	if joinData.ConversationID == uuid.Nil {
		return fmt.Errorf("conversation_id is required")
	}
	return nil
}

// ===== Conversation leave =====

type ConversationLeaveData struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

type ConversationLeaveHandler struct {
	hub *Hub
}

func (cl *ConversationLeaveHandler) Handle(ctx context.Context, client *Client, data json.RawMessage) error {
	var leaveData ConversationLeaveData
	if err := json.Unmarshal(data, &leaveData); err != nil {
		return fmt.Errorf("invalid leave data: %w", err)
	}

	client.leaveSession(leaveData.ConversationID)
	cl.hub.unsubscribeFromConversation(client.ID, leaveData.ConversationID)
	return nil
}

func (cl *ConversationLeaveHandler) ValidateData(data json.RawMessage) error {
	var leaveData ConversationLeaveData
	if err := json.Unmarshal(data, &leaveData); err != nil {
		return fmt.Errorf("invalid leave data format: %w", err)
	}
	if leaveData.ConversationID == uuid.Nil {
		return fmt.Errorf("conversation_id is required")
	}
	return nil
}

// ===== Conversation focus =====

// ConversationFocusHandler แอปกลับมา foreground: โหลดประวัติใหม่ทั้งชุด
type ConversationFocusHandler struct {
	hub *Hub
}

func (cf *ConversationFocusHandler) Handle(ctx context.Context, client *Client, data json.RawMessage) error {
	session := client.currentSession()
	if session == nil {
		return fmt.Errorf("no active conversation, join first")
	}
	session.Focus()
	return nil
}

func (cf *ConversationFocusHandler) ValidateData(data json.RawMessage) error {
	return nil
}

// ===== Message send =====

type MessageSendData struct {
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
}

// MessageSendHandler ส่งข้อความผ่าน session (optimistic append + ยิง gateway)
type MessageSendHandler struct {
	hub *Hub
}

func (ms *MessageSendHandler) Handle(ctx context.Context, client *Client, data json.RawMessage) error {
	// Rate limiting
	if !client.RateLimiter.Allow() {
		return fmt.Errorf("rate limit exceeded, please slow down")
	}

	var sendData MessageSendData
	if err := json.Unmarshal(data, &sendData); err != nil {
		return fmt.Errorf("invalid send data: %w", err)
	}

	session := client.currentSession()
	if session == nil {
		return fmt.Errorf("no active conversation, join first")
	}

	session.Send(sendData.MessageType, sendData.Content)
	ms.hub.IncrementMessageCount()
	return nil
}

func (ms *MessageSendHandler) ValidateData(data json.RawMessage) error {
	var sendData MessageSendData
	if err := json.Unmarshal(data, &sendData); err != nil {
		return fmt.Errorf("invalid send data format: %w", err)
	}
	if sendData.Content == "" {
		return fmt.Errorf("content is required")
	}
	if len(sendData.Content) > 4000 {
		return fmt.Errorf("content too long (max 4000 characters)")
	}
	return nil
}

// ===== Message read =====

// MessageReadHandler ผู้ชมอ่านข้อความในการสนทนาปัจจุบันแล้ว
type MessageReadHandler struct {
	hub *Hub
}

func (mr *MessageReadHandler) Handle(ctx context.Context, client *Client, data json.RawMessage) error {
	session := client.currentSession()
	if session == nil {
		return fmt.Errorf("no active conversation, join first")
	}
	session.MarkRead()
	return nil
}

func (mr *MessageReadHandler) ValidateData(data json.RawMessage) error {
	return nil
}
