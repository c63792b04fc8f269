// domain/dto/message_dto.go

package dto

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// SenderInfoDTO - ข้อมูลผู้ส่งที่ join มากับข้อความ
type SenderInfoDTO struct {
	ID        uuid.UUID  `json:"id"`
	Role      types.Role `json:"role"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatar_url,omitempty"`
}

// MessageDTO - ข้อความพร้อมโปรไฟล์ผู้ส่ง สำหรับส่งกลับไปยัง client
//
// This is the confirmed representation: it always carries the
// server-assigned identity plus the joined sender profile, which the raw
// realtime row does not have (clients re-fetch through GetMessage).
type MessageDTO struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID uuid.UUID      `json:"conversation_id"`
	SenderID       uuid.UUID      `json:"sender_id"`
	SenderRole     types.Role     `json:"sender_role"`
	MessageType    string         `json:"message_type"`
	Content        string         `json:"content"`
	IsRead         bool           `json:"is_read"`
	CreatedAt      time.Time      `json:"created_at"`
	Sender         *SenderInfoDTO `json:"sender,omitempty"`
}

// SendMessageRequest - คำขอส่งข้อความ
type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	MessageType    string    `json:"message_type"`
	Content        string    `json:"content"`
}
