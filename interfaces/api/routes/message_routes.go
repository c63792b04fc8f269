// interfaces/api/routes/message_routes.go
package routes

import (
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/handler"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupMessageRoutes กำหนดเส้นทาง API สำหรับข้อความ
func SetupMessageRoutes(router fiber.Router, messageHandler *handler.MessageHandler) {
	// เส้นทางข้อความใต้การสนทนา
	conversations := router.Group("/conversations")
	conversations.Use(middleware.Protected())

	conversations.Post("/:conversationId/messages", messageHandler.SendMessage) // ส่งข้อความ text/image
	conversations.Get("/:conversationId/messages", messageHandler.ListMessages) // ประวัติเรียงจากเก่าไปใหม่

	// เส้นทางข้อความเดี่ยว
	messages := router.Group("/messages")
	messages.Use(middleware.Protected())

	messages.Get("/:messageId", messageHandler.GetMessage) // follow-up fetch ของ realtime push
}
