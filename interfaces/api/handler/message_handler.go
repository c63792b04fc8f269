// interfaces/api/handler/message_handler.go
package handler

import (
	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/middleware"
	"github.com/RadowanAhmed/mataim-chat-api/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler โครงสร้างของ Handler สำหรับจัดการข้อความ
type MessageHandler struct {
	chatService service.ChatService
}

// NewMessageHandler สร้าง Handler ใหม่
func NewMessageHandler(chatService service.ChatService) *MessageHandler {
	return &MessageHandler{
		chatService: chatService,
	}
}

// SendMessage จัดการคำขอส่งข้อความ (text หรือ image)
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	partyID, err := middleware.GetPartyUUID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}
	role, err := middleware.GetRole(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}

	conversationID, err := utils.ParseUUIDParam(c, "conversationId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input struct {
		MessageType string `json:"message_type"`
		Content     string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body: "+err.Error())
	}

	messageType := input.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	message, err := h.chatService.SendMessage(role, partyID, &dto.SendMessageRequest{
		ConversationID: conversationID,
		MessageType:    messageType,
		Content:        input.Content,
	})
	if err != nil {
		statusCode := fiber.StatusInternalServerError
		// ตรวจสอบประเภทข้อผิดพลาดเพื่อกำหนด status code ที่เหมาะสม
		if err.Error() == "sender is not a party of this conversation" {
			statusCode = fiber.StatusForbidden
		} else if err.Error() == "message content cannot be empty" ||
			err.Error() == "unsupported message type" {
			statusCode = fiber.StatusBadRequest
		} else if err.Error() == "conversation not found" {
			statusCode = fiber.StatusNotFound
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Message sent successfully",
		"data":    message,
	})
}

// ListMessages ดึงข้อความในการสนทนา เรียงจากเก่าไปใหม่
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	partyID, err := middleware.GetPartyUUID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}
	role, err := middleware.GetRole(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}

	conversationID, err := utils.ParseUUIDParam(c, "conversationId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	// ผู้เรียกต้องเป็นฝ่ายหนึ่งของการสนทนา
	conversation, err := h.chatService.GetConversation(conversationID)
	if err != nil {
		statusCode := fiber.StatusInternalServerError
		if err.Error() == "conversation not found" {
			statusCode = fiber.StatusNotFound
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	party := conversation.PartyID(role)
	if party == nil || *party != partyID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "you are not a party of this conversation",
		})
	}

	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}
	offset := c.QueryInt("offset", 0)

	messages, total, err := h.chatService.ListMessages(conversationID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages": messages,
			"pagination": fiber.Map{
				"total":  total,
				"limit":  limit,
				"offset": offset,
			},
		},
	})
}

// GetMessage ดึงข้อความเดียวพร้อมโปรไฟล์ผู้ส่ง
func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	if _, err := middleware.GetPartyUUID(c); err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}

	messageID, err := utils.ParseUUIDParam(c, "messageId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	message, err := h.chatService.GetMessage(messageID)
	if err != nil {
		statusCode := fiber.StatusInternalServerError
		if err.Error() == "message not found" {
			statusCode = fiber.StatusNotFound
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}
