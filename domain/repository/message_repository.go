// domain/repository/message_repository.go
package repository

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/google/uuid"
)

// MessageRepository เป็น interface สำหรับจัดการข้อมูลข้อความ
type MessageRepository interface {
	GetByID(id uuid.UUID) (*models.Message, error)

	// GetByConversationID ดึงข้อความของการสนทนา เรียงตามเวลาสร้างจากเก่าไปใหม่
	GetByConversationID(conversationID uuid.UUID, limit, offset int) ([]*models.Message, int64, error)

	Create(message *models.Message) error

	// MarkAsRead ทำเครื่องหมายว่าอ่านแล้ว
	MarkAsRead(messageID uuid.UUID, readAt time.Time) error

	// MarkConversationRead ทำเครื่องหมายอ่านแล้วทุกข้อความที่ไม่ใช่ของผู้อ่าน
	MarkConversationRead(conversationID, readerID uuid.UUID, readAt time.Time) error

	// CountUnread นับข้อความที่ยังไม่อ่านและไม่ใช่ของผู้อ่าน
	CountUnread(conversationID, readerID uuid.UUID) (int64, error)
}
