// domain/service/push_service.go
package service

import (
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// PushNotification - ข้อมูลแจ้งเตือนข้อความใหม่ที่ส่งไปยังอุปกรณ์ของผู้รับ
type PushNotification struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	SenderRole     types.Role
	RecipientID    uuid.UUID
	RecipientRole  types.Role
	Title          string
	Body           string
}

// PushService เป็น interface สำหรับส่ง push notification
//
// Dispatch is fire-and-forget: failures are logged, never surfaced to
// the sender.
type PushService interface {
	NotifyNewMessage(n *PushNotification)
}
