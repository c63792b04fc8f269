// infrastructure/persistence/postgres/message_repository.go
package postgres

import (
	"errors"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository สร้าง repository ใหม่
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// GetByID ดึงข้อมูลข้อความตาม ID
func (r *messageRepository) GetByID(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// GetByConversationID ดึงข้อความของการสนทนา เรียงตามเวลาสร้างจากเก่าไปใหม่
func (r *messageRepository) GetByConversationID(conversationID uuid.UUID, limit, offset int) ([]*models.Message, int64, error) {
	var count int64
	if err := r.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var messages []*models.Message
	// Fetch ข้อความล่าสุดก่อน (DESC) แล้วค่อย reverse เป็น ASC
	if err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	// Reverse array เพื่อให้เป็น ASC (เก่า → ใหม่) ก่อน return
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, count, nil
}

// Create สร้างข้อความใหม่
func (r *messageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// MarkAsRead ทำเครื่องหมายว่าอ่านแล้ว
func (r *messageRepository) MarkAsRead(messageID uuid.UUID, readAt time.Time) error {
	result := r.db.Model(&models.Message{}).
		Where("id = ? AND is_read = ?", messageID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": readAt,
		})
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// MarkConversationRead ทำเครื่องหมายอ่านแล้วทุกข้อความที่ไม่ใช่ของผู้อ่าน
func (r *messageRepository) MarkConversationRead(conversationID, readerID uuid.UUID, readAt time.Time) error {
	return r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": readAt,
		}).Error
}

// CountUnread นับข้อความที่ยังไม่อ่านและไม่ใช่ของผู้อ่าน
func (r *messageRepository) CountUnread(conversationID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false).
		Count(&count).Error
	return count, err
}
