// domain/port/realtime_port.go
package port

import "github.com/google/uuid"

// RealtimePort เป็น interface สำหรับกระจายเหตุการณ์ realtime ไปยังผู้ที่
// subscribe การสนทนา
//
// Delivery is at-least-once; subscribers must deduplicate by message ID.
// The new-message payload is the raw row without the joined sender
// profile (receivers follow up with ChatService.GetMessage).
type RealtimePort interface {
	BroadcastNewMessage(conversationID uuid.UUID, message interface{})
	BroadcastMessageRead(conversationID uuid.UUID, data interface{})
	BroadcastConversationUpdated(conversationID uuid.UUID, update interface{})
}
