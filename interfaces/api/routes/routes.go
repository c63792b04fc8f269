// interfaces/api/routes/routes.go
package routes

import (
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/handler"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes กำหนดเส้นทาง API ทั้งหมดของแอปพลิเคชัน
func SetupRoutes(
	app *fiber.App,
	conversationHandler *handler.ConversationHandler,
	messageHandler *handler.MessageHandler,
	fileHandler *handler.FileHandler,
) {
	// สร้าง API group
	api := app.Group("/api/v1")

	// Health check route
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "API is running",
		})
	})

	// กำหนดเส้นทางต่างๆ
	SetupConversationRoutes(api, conversationHandler)
	SetupMessageRoutes(api, messageHandler)
	SetupFileRoutes(api, fileHandler)
}
