// domain/models/order.go
package models

import (
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// Order - คำสั่งซื้อที่เป็นบริบทของการสนทนา
//
// Chat threads are opened from an order screen; the order links the three
// parties together. Order workflow itself is out of scope here.
type Order struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CustomerID   uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	RestaurantID uuid.UUID  `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index"`
	AddressID    *uuid.UUID `json:"address_id,omitempty" gorm:"type:uuid"`

	Status    string      `json:"status" gorm:"type:varchar(30);not null;default:'pending'"`
	Total     float64     `json:"total" gorm:"default:0"`
	Items     types.JSONB `json:"items,omitempty" gorm:"type:jsonb;default:'[]'::jsonb"`
	CreatedAt time.Time   `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`
	UpdatedAt time.Time   `json:"updated_at" gorm:"type:timestamp with time zone;default:now()"`

	// Associations
	Customer   *Customer   `json:"customer,omitempty" gorm:"foreignkey:CustomerID"`
	Restaurant *Restaurant `json:"restaurant,omitempty" gorm:"foreignkey:RestaurantID"`
	Driver     *Driver     `json:"driver,omitempty" gorm:"foreignkey:DriverID"`
	Address    *Address    `json:"address,omitempty" gorm:"foreignkey:AddressID"`
}

// TableName - ระบุชื่อตารางใน database
func (Order) TableName() string {
	return "orders"
}

// Address - ที่อยู่จัดส่งของลูกค้า
type Address struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	Label      string    `json:"label,omitempty" gorm:"type:varchar(50)"`
	Line1      string    `json:"line1" gorm:"type:text;not null"`
	City       string    `json:"city,omitempty" gorm:"type:varchar(100)"`
	Latitude   float64   `json:"latitude" gorm:"default:0"`
	Longitude  float64   `json:"longitude" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`
}

// TableName - ระบุชื่อตารางใน database
func (Address) TableName() string {
	return "addresses"
}
