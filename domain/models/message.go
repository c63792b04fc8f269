// domain/models/message.go

package models

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// Message - ข้อความในการสนทนา
//
// Immutable once created except for the read flag. Image messages carry
// the uploaded media URL as their content.
type Message struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ConversationID uuid.UUID  `json:"conversation_id" gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null"`
	SenderRole     types.Role `json:"sender_role" gorm:"type:varchar(20);not null"`
	MessageType    string     `json:"message_type" gorm:"type:varchar(20);not null;default:'text'"` // text, image
	Content        string     `json:"content" gorm:"type:text"`

	IsRead bool       `json:"is_read" gorm:"default:false"`
	ReadAt *time.Time `json:"read_at,omitempty" gorm:"type:timestamp with time zone"`

	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`

	// Associations
	Conversation *Conversation `json:"conversation,omitempty" gorm:"foreignkey:ConversationID"`
}

// TableName - ระบุชื่อตารางใน database
func (Message) TableName() string {
	return "messages"
}

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)
