// interfaces/api/routes/file_routes.go
package routes

import (
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/handler"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupFileRoutes กำหนดเส้นทาง API สำหรับการอัปโหลดไฟล์
func SetupFileRoutes(router fiber.Router, fileHandler *handler.FileHandler) {
	files := router.Group("/files")
	files.Use(middleware.Protected())

	files.Post("/images", fileHandler.UploadImage) // อัปโหลดรูปภาพสำหรับข้อความแชท
}
