// infrastructure/persistence/database/migration.go
package database

import (
	"log"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"gorm.io/gorm"
)

// RunMigration ทำการ migrate โมเดลทั้งหมดไปยังฐานข้อมูล
func RunMigration(db *gorm.DB) error {
	log.Println("กำลังทำ Auto Migration...")

	// สำหรับ uuid_generate_v4()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	// ทำการ migrate โมเดลทั้งหมด
	// การเรียงลำดับมีความสำคัญ - ควรเริ่มจากตารางหลักก่อน แล้วค่อยไปตารางที่มี foreign key
	err := db.AutoMigrate(
		// โมเดลหลัก (ไม่มี FK ไปหาตารางอื่น)
		&models.User{},

		// โปรไฟล์แต่ละบทบาท
		&models.Customer{},
		&models.Restaurant{},
		&models.Driver{},

		// คำสั่งซื้อและที่อยู่
		&models.Address{},
		&models.Order{},

		// การสนทนาและข้อความ
		&models.Conversation{},
		&models.Message{},
	)

	if err != nil {
		log.Printf("Auto Migration ล้มเหลว: %v", err)
		return err
	}

	log.Println("Auto Migration สำเร็จ")
	return nil
}

// CreateIndices สร้าง indices เพื่อเพิ่มประสิทธิภาพในการค้นหา
func CreateIndices(db *gorm.DB) error {
	log.Println("กำลังสร้าง indices...")

	// สร้าง indices สำหรับตารางที่มีการค้นหาบ่อย
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at)").Error; err != nil {
		return err
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(conversation_id, sender_id) WHERE is_read = false").Error; err != nil {
		return err
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_customer_restaurant ON conversations(customer_id, restaurant_id)").Error; err != nil {
		return err
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_customer_driver ON conversations(customer_id, driver_id)").Error; err != nil {
		return err
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_restaurant_driver ON conversations(restaurant_id, driver_id)").Error; err != nil {
		return err
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at ON conversations(last_message_at DESC NULLS LAST)").Error; err != nil {
		return err
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)").Error; err != nil {
		return err
	}

	log.Println("สร้าง indices สำเร็จ")
	return nil
}

// SetupDatabase ตั้งค่าฐานข้อมูลทั้งหมด
func SetupDatabase(db *gorm.DB) error {
	// ทำ migration
	if err := RunMigration(db); err != nil {
		return err
	}

	// สร้าง indices
	if err := CreateIndices(db); err != nil {
		return err
	}

	return nil
}
