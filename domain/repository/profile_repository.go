// domain/repository/profile_repository.go
package repository

import (
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/google/uuid"
)

// ProfileRepository เป็น interface สำหรับดึงโปรไฟล์ของแต่ละบทบาท
type ProfileRepository interface {
	GetCustomer(id uuid.UUID) (*models.Customer, error)
	GetRestaurant(id uuid.UUID) (*models.Restaurant, error)
	GetDriver(id uuid.UUID) (*models.Driver, error)

	// GetUser ดึงบัญชีผู้ใช้ (ใช้หาเบอร์โทรของเจ้าของร้าน และ push token)
	GetUser(id uuid.UUID) (*models.User, error)
}

// OrderRepository เป็น interface สำหรับดึงคำสั่งซื้อที่เป็นบริบทของแชท
type OrderRepository interface {
	GetByID(id uuid.UUID) (*models.Order, error)
}
