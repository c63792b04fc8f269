// domain/models/conversation.go

package models

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// Conversation - การสนทนาระหว่างคู่สนทนาสองฝ่าย (ลูกค้า/ร้านอาหาร/คนขับ)
//
// A thread is keyed by the pair of party foreign keys that are set. From
// the perspective of any viewer role, exactly one of the two remaining
// FKs is expected to be populated; the resolver enforces that.
type Conversation struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty" gorm:"type:uuid;index"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty" gorm:"type:uuid;index"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index"`
	OrderID      *uuid.UUID `json:"order_id,omitempty" gorm:"type:uuid;index"`

	// Denormalized summary of the latest message
	LastMessage   string     `json:"last_message,omitempty" gorm:"type:text"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" gorm:"type:timestamp with time zone"`

	CreatedAt time.Time   `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`
	UpdatedAt time.Time   `json:"updated_at" gorm:"type:timestamp with time zone;default:now()"`
	Metadata  types.JSONB `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'::jsonb"`

	// Associations
	Customer   *Customer   `json:"customer,omitempty" gorm:"foreignkey:CustomerID"`
	Restaurant *Restaurant `json:"restaurant,omitempty" gorm:"foreignkey:RestaurantID"`
	Driver     *Driver     `json:"driver,omitempty" gorm:"foreignkey:DriverID"`
	Order      *Order      `json:"order,omitempty" gorm:"foreignkey:OrderID"`
	Messages   []*Message  `json:"messages,omitempty" gorm:"foreignkey:ConversationID"`
}

// TableName - ระบุชื่อตารางใน database
func (Conversation) TableName() string {
	return "conversations"
}

// PartyID ดึง foreign key ของบทบาทที่ระบุ (nil ถ้าไม่มี)
func (c *Conversation) PartyID(role types.Role) *uuid.UUID {
	switch role {
	case types.RoleCustomer:
		return c.CustomerID
	case types.RoleRestaurant:
		return c.RestaurantID
	case types.RoleDriver:
		return c.DriverID
	}
	return nil
}
