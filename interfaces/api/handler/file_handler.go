// interfaces/api/handler/file_handler.go
package handler

import (
	"strings"

	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/gofiber/fiber/v2"
)

// MaxImageSize จำกัดขนาดรูปภาพแชทที่ 10MB
const MaxImageSize = 10 * 1024 * 1024

// FileHandler จัดการ API endpoints เกี่ยวกับการอัปโหลดไฟล์
type FileHandler struct {
	storageService service.FileStorageService
}

// NewFileHandler สร้าง FileHandler ใหม่
func NewFileHandler(storageService service.FileStorageService) *FileHandler {
	return &FileHandler{
		storageService: storageService,
	}
}

// UploadImage จัดการการอัปโหลดรูปภาพสำหรับข้อความแชท
// client อัปโหลดก่อน แล้วค่อยส่งข้อความ type image ที่มี URL เป็นเนื้อหา
func (h *FileHandler) UploadImage(c *fiber.Ctx) error {
	// รับไฟล์จาก request
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "ไม่พบไฟล์รูปภาพในคำขอ",
		})
	}

	if file.Size > MaxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "ไฟล์รูปภาพใหญ่เกิน 10MB",
		})
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "รองรับเฉพาะไฟล์รูปภาพเท่านั้น",
		})
	}

	// กำหนด folder สำหรับเก็บรูปภาพ (ถ้ามีการส่งมา)
	folder := c.FormValue("folder", "chat-images")

	// อัปโหลดรูปภาพโดยใช้ storage service
	result, err := h.storageService.UploadImage(file, folder)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "ไม่สามารถอัปโหลดรูปภาพได้: " + err.Error(),
		})
	}

	// ส่งผลลัพธ์กลับไป
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "อัปโหลดรูปภาพสำเร็จ",
		"data":    result,
	})
}
