// interfaces/websocket/broadcast.go
package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// broadcastMessage handles broadcasting messages to clients
func (h *Hub) broadcastMessage(message *BroadcastMessage) {
	response := WSResponse{
		Type:      message.Type,
		Data:      message.Data,
		Timestamp: time.Now(),
		Success:   true,
	}

	if message.ConvID != nil {
		// Broadcast to conversation subscribers
		h.broadcastToConversation(*message.ConvID, response, message.ExcludeID)
	} else if len(message.UserIDs) > 0 {
		// Broadcast to specific users
		for _, userID := range message.UserIDs {
			h.sendToUser(userID, response, message.ExcludeID)
		}
	}
}

// sendToUser sends message to all connections of a user
func (h *Hub) sendToUser(userID uuid.UUID, response WSResponse, excludeID *uuid.UUID) {
	h.userConnectionsMux.RLock()
	clientIDs, exists := h.userConnections[userID]
	h.userConnectionsMux.RUnlock()

	if !exists {
		return
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	for _, clientID := range clientIDs {
		if excludeID != nil && clientID == *excludeID {
			continue
		}
		if client, ok := h.clients[clientID]; ok {
			h.sendToClient(client, response)
		}
	}
}

// broadcastToConversation broadcasts to all subscribers of a conversation
func (h *Hub) broadcastToConversation(convID uuid.UUID, response WSResponse, excludeID *uuid.UUID) {
	h.conversationSubsMux.RLock()
	clientIDs, exists := h.conversationSubs[convID]
	h.conversationSubsMux.RUnlock()

	if !exists {
		return
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	for _, clientID := range clientIDs {
		if excludeID != nil && clientID == *excludeID {
			continue
		}
		if client, ok := h.clients[clientID]; ok {
			h.sendToClient(client, response)
		}
	}
}

// sendToClient sends a message to a specific client
func (h *Hub) sendToClient(client *Client, response WSResponse) {
	defer func() {
		if r := recover(); r != nil {
			// ช่อง Send ถูกปิดระหว่าง unregister
			log.Printf("Recovered from send to closed channel for client %s: %v", client.ID, r)
		}
	}()

	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Error marshaling response: %v", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		// Client's send channel is full, disconnect
		go func() {
			h.unregister <- client
		}()
	}
}

// subscribeToConversation adds a client to a conversation's subscriber list
func (h *Hub) subscribeToConversation(clientID, convID uuid.UUID) {
	h.conversationSubsMux.Lock()
	defer h.conversationSubsMux.Unlock()

	for _, id := range h.conversationSubs[convID] {
		if id == clientID {
			return
		}
	}
	h.conversationSubs[convID] = append(h.conversationSubs[convID], clientID)
}

// unsubscribeFromConversation removes a client from a conversation's subscriber list
func (h *Hub) unsubscribeFromConversation(clientID, convID uuid.UUID) {
	h.conversationSubsMux.Lock()
	defer h.conversationSubsMux.Unlock()

	if subs, exists := h.conversationSubs[convID]; exists {
		h.removeClientFromSlice(&subs, clientID)
		if len(subs) == 0 {
			delete(h.conversationSubs, convID)
		} else {
			h.conversationSubs[convID] = subs
		}
	}
}

// removeClientFromSlice removes a client ID from a slice
func (h *Hub) removeClientFromSlice(slice *[]uuid.UUID, clientID uuid.UUID) {
	for i, id := range *slice {
		if id == clientID {
			*slice = append((*slice)[:i], (*slice)[i+1:]...)
			break
		}
	}
}

// removeClientFromAllConversations removes client from all conversation subscriptions
func (h *Hub) removeClientFromAllConversations(clientID uuid.UUID) {
	h.conversationSubsMux.Lock()
	defer h.conversationSubsMux.Unlock()

	for convID, subs := range h.conversationSubs {
		h.removeClientFromSlice(&subs, clientID)
		if len(subs) == 0 {
			delete(h.conversationSubs, convID)
		} else {
			h.conversationSubs[convID] = subs
		}
	}
}

// NotifyBroadcast queues a broadcast without blocking the caller
func (h *Hub) NotifyBroadcast(message *BroadcastMessage) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("Warning: broadcast channel full, dropping message type %s", message.Type)
	}
}

// BroadcastToConversation broadcasts a message to all subscribers of a conversation
func (h *Hub) BroadcastToConversation(convID uuid.UUID, msgType MessageType, data interface{}) {
	h.NotifyBroadcast(&BroadcastMessage{
		Type:   msgType,
		Data:   data,
		ConvID: &convID,
	})
}

// BroadcastToUsers broadcasts a message to specific users
func (h *Hub) BroadcastToUsers(userIDs []uuid.UUID, msgType MessageType, data interface{}) {
	h.NotifyBroadcast(&BroadcastMessage{
		Type:    msgType,
		Data:    data,
		UserIDs: userIDs,
	})
}

// BroadcastToUser broadcasts a message to a single user
func (h *Hub) BroadcastToUser(userID uuid.UUID, msgType MessageType, data interface{}) {
	h.BroadcastToUsers([]uuid.UUID{userID}, msgType, data)
}
