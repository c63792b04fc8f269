// interfaces/api/routes/conversation_routes.go
package routes

import (
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/handler"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupConversationRoutes กำหนดเส้นทาง API สำหรับการสนทนา
func SetupConversationRoutes(router fiber.Router, conversationHandler *handler.ConversationHandler) {
	// สร้างกลุ่มเส้นทางการสนทนา
	conversations := router.Group("/conversations")
	conversations.Use(middleware.Protected())

	conversations.Post("/", conversationHandler.FindOrCreateConversation) // เปิดการสนทนา (find-or-create)
	conversations.Get("/", conversationHandler.ListConversations)         // รายการการสนทนาของผู้เรียก
	conversations.Get("/:conversationId", conversationHandler.GetConversation)
	conversations.Put("/:conversationId/read", conversationHandler.MarkConversationRead) // อ่านแล้วทั้งหมด
}
