// domain/models/user.go

package models

import (
	"time"

	"github.com/google/uuid"
)

// User - บัญชีผู้ใช้ที่ล็อกอินเข้าระบบ (เจ้าของร้าน, ลูกค้า, คนขับ)
//
// Restaurants are owned by a user account; the owner's phone number is
// what chat surfaces when a restaurant participant is resolved.
type User struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email         string     `json:"email,omitempty" gorm:"type:varchar(255);unique"`
	Phone         string     `json:"phone,omitempty" gorm:"type:varchar(30)"`
	PasswordHash  string     `json:"-" gorm:"type:text"`
	ExpoPushToken string     `json:"-" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at" gorm:"type:timestamp with time zone;default:now()"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty" gorm:"type:timestamp with time zone"`
}

// TableName - ระบุชื่อตารางใน database
func (User) TableName() string {
	return "users"
}
