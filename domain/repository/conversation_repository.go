// domain/repository/conversation_repository.go
package repository

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// ConversationRepository เป็น interface สำหรับจัดการข้อมูลการสนทนา
type ConversationRepository interface {
	GetByID(id uuid.UUID) (*models.Conversation, error)
	Create(conversation *models.Conversation) error

	// FindByParties หาการสนทนาที่มีคู่สนทนาตรงกับสองฝ่ายที่ระบุ
	// (nil เมื่อไม่พบ ไม่ถือเป็น error)
	FindByParties(roleA types.Role, idA uuid.UUID, roleB types.Role, idB uuid.UUID) (*models.Conversation, error)

	// ListByParty ดึงการสนทนาทั้งหมดของฝ่ายที่ระบุ เรียงตามข้อความล่าสุด
	ListByParty(role types.Role, partyID uuid.UUID, limit, offset int) ([]*models.Conversation, int64, error)

	// UpdateLastMessage อัปเดตสรุปข้อความล่าสุดของการสนทนา
	UpdateLastMessage(conversationID uuid.UUID, lastMessage string, lastMessageAt time.Time) error
}
