// domain/models/profile.go

package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer - โปรไฟล์ลูกค้า
type Customer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	AvatarURL string    `json:"avatar_url,omitempty" gorm:"type:text"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`

	User *User `json:"user,omitempty" gorm:"foreignkey:UserID"`
}

// TableName - ระบุชื่อตารางใน database
func (Customer) TableName() string {
	return "customers"
}

// Restaurant - โปรไฟล์ร้านอาหาร
//
// The restaurant row itself has no phone column; callers enrich from the
// owning user account.
type Restaurant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	LogoURL   string    `json:"logo_url,omitempty" gorm:"type:text"`
	Cuisine   string    `json:"cuisine,omitempty" gorm:"type:varchar(50)"`
	Rating    float64   `json:"rating" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`

	Owner *User `json:"owner,omitempty" gorm:"foreignkey:OwnerID"`
}

// TableName - ระบุชื่อตารางใน database
func (Restaurant) TableName() string {
	return "restaurants"
}

// Driver - โปรไฟล์คนขับ
type Driver struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	AvatarURL   string    `json:"avatar_url,omitempty" gorm:"type:text"`
	Phone       string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	VehicleType string    `json:"vehicle_type,omitempty" gorm:"type:varchar(30)"`
	Rating      float64   `json:"rating" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`

	User *User `json:"user,omitempty" gorm:"foreignkey:UserID"`
}

// TableName - ระบุชื่อตารางใน database
func (Driver) TableName() string {
	return "drivers"
}
