// infrastructure/persistence/postgres/conversation_repository.go
package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/repository"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository สร้าง repository ใหม่
func NewConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &conversationRepository{
		db: db,
	}
}

// GetByID ดึงข้อมูลการสนทนาตาม ID
func (r *conversationRepository) GetByID(id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.First(&conversation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// Create สร้างการสนทนาใหม่
func (r *conversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

// FindByParties หาการสนทนาที่มีคู่สนทนาตรงกับสองฝ่ายที่ระบุ
func (r *conversationRepository) FindByParties(roleA types.Role, idA uuid.UUID, roleB types.Role, idB uuid.UUID) (*models.Conversation, error) {
	columnA, err := partyColumn(roleA)
	if err != nil {
		return nil, err
	}
	columnB, err := partyColumn(roleB)
	if err != nil {
		return nil, err
	}

	var conversation models.Conversation
	if err := r.db.
		Where(columnA+" = ? AND "+columnB+" = ?", idA, idB).
		Order("created_at DESC").
		First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// ListByParty ดึงการสนทนาทั้งหมดของฝ่ายที่ระบุ เรียงตามข้อความล่าสุด
func (r *conversationRepository) ListByParty(role types.Role, partyID uuid.UUID, limit, offset int) ([]*models.Conversation, int64, error) {
	column, err := partyColumn(role)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	if err := r.db.Model(&models.Conversation{}).Where(column+" = ?", partyID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var conversations []*models.Conversation
	if err := r.db.Where(column+" = ?", partyID).
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error; err != nil {
		return nil, 0, err
	}

	return conversations, count, nil
}

// UpdateLastMessage อัปเดตสรุปข้อความล่าสุดของการสนทนา
func (r *conversationRepository) UpdateLastMessage(conversationID uuid.UUID, lastMessage string, lastMessageAt time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":    lastMessage,
			"last_message_at": lastMessageAt,
			"updated_at":      time.Now(),
		}).Error
}

// partyColumn แปลงบทบาทเป็นชื่อคอลัมน์ foreign key
func partyColumn(role types.Role) (string, error) {
	switch role {
	case types.RoleCustomer:
		return "customer_id", nil
	case types.RoleRestaurant:
		return "restaurant_id", nil
	case types.RoleDriver:
		return "driver_id", nil
	}
	return "", fmt.Errorf("unknown party role: %q", role)
}
