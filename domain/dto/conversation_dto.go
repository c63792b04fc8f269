// domain/dto/conversation_dto.go

package dto

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// ConversationDTO - การสนทนาพร้อมข้อมูลคู่สนทนาจากมุมมองของผู้เรียก
type ConversationDTO struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	RestaurantID  *uuid.UUID `json:"restaurant_id,omitempty"`
	DriverID      *uuid.UUID `json:"driver_id,omitempty"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	// Counterpart as seen by the requesting role (filled by the handler)
	Participant map[string]interface{} `json:"participant,omitempty"`
	UnreadCount int64                  `json:"unread_count"`
}

// FindOrCreateConversationRequest - คำขอเปิดการสนทนาระหว่างสองฝ่าย
//
// The caller supplies its own role/ID plus the counterpart; exactly two
// of the three party fields end up populated on the row.
type FindOrCreateConversationRequest struct {
	ViewerRole   types.Role `json:"viewer_role"`
	ViewerID     uuid.UUID  `json:"viewer_id"`
	PartnerRole  types.Role `json:"partner_role"`
	PartnerID    uuid.UUID  `json:"partner_id"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
}
