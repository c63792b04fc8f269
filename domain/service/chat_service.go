// domain/service/chat_service.go
package service

import (
	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// ChatService เป็น interface สำหรับการทำงานหลักของแชท
//
// This is the gateway contract the session core and the transport layers
// share: conversation find-or-create keyed by the party pair, message
// insert returning the confirmed record with joined sender profile,
// ascending message list, and the denormalized summary update.
type ChatService interface {
	// FindOrCreateConversation หาหรือสร้างการสนทนาระหว่างสองฝ่าย
	FindOrCreateConversation(req *dto.FindOrCreateConversationRequest) (*models.Conversation, error)

	GetConversation(id uuid.UUID) (*models.Conversation, error)

	// ListConversations ดึงการสนทนาทั้งหมดของฝ่ายที่ระบุ
	ListConversations(role types.Role, partyID uuid.UUID, limit, offset int) ([]*dto.ConversationDTO, int64, error)

	// ListMessages ดึงข้อความเรียงตามเวลาสร้างจากเก่าไปใหม่
	ListMessages(conversationID uuid.UUID, limit, offset int) ([]*dto.MessageDTO, int64, error)

	// GetMessage ดึงข้อความเดียวพร้อมโปรไฟล์ผู้ส่ง (follow-up fetch ของ realtime push)
	GetMessage(id uuid.UUID) (*dto.MessageDTO, error)

	// SendMessage บันทึกข้อความ อัปเดตสรุปการสนทนา แล้วกระจายผ่าน realtime
	// และ push notification
	SendMessage(senderRole types.Role, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageDTO, error)

	// MarkConversationRead ทำเครื่องหมายอ่านแล้วทุกข้อความของฝ่ายตรงข้าม
	MarkConversationRead(conversationID uuid.UUID, readerID uuid.UUID) error
}
