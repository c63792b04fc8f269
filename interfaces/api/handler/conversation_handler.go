// interfaces/api/handler/conversation_handler.go
package handler

import (
	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/middleware"
	"github.com/RadowanAhmed/mataim-chat-api/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ConversationHandler โครงสร้างของ Handler สำหรับจัดการการสนทนา
type ConversationHandler struct {
	chatService service.ChatService
}

// NewConversationHandler สร้าง Handler ใหม่
func NewConversationHandler(chatService service.ChatService) *ConversationHandler {
	return &ConversationHandler{
		chatService: chatService,
	}
}

// FindOrCreateConversation เปิดการสนทนากับอีกฝ่าย (คืนของเดิมถ้ามีอยู่แล้ว)
func (h *ConversationHandler) FindOrCreateConversation(c *fiber.Ctx) error {
	partyID, err := middleware.GetPartyUUID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}
	role, err := middleware.GetRole(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}

	var input struct {
		PartnerRole string     `json:"partner_role"`
		PartnerID   uuid.UUID  `json:"partner_id"`
		OrderID     *uuid.UUID `json:"order_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body: "+err.Error())
	}

	partnerRole, err := types.ParseRole(input.PartnerRole)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if input.PartnerID == uuid.Nil {
		return utils.BadRequest(c, "partner_id is required")
	}

	conversation, err := h.chatService.FindOrCreateConversation(&dto.FindOrCreateConversationRequest{
		ViewerRole:  role,
		ViewerID:    partyID,
		PartnerRole: partnerRole,
		PartnerID:   input.PartnerID,
		OrderID:     input.OrderID,
	})
	if err != nil {
		statusCode := fiber.StatusInternalServerError
		if err.Error() == "conversation parties must have different roles" ||
			err.Error() == "order not found" {
			statusCode = fiber.StatusBadRequest
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Conversation ready",
		"data":    conversation,
	})
}

// ListConversations ดึงรายการการสนทนาของผู้เรียก พร้อมข้อมูลคู่สนทนา
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	partyID, err := middleware.GetPartyUUID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}
	role, err := middleware.GetRole(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}

	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	offset := c.QueryInt("offset", 0)

	conversations, total, err := h.chatService.ListConversations(role, partyID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"conversations": conversations,
			"pagination": fiber.Map{
				"total":  total,
				"limit":  limit,
				"offset": offset,
			},
		},
	})
}

// GetConversation ดึงการสนทนาเดียว
func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
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

	// ผู้เรียกต้องเป็นฝ่ายหนึ่งของการสนทนา
	party := conversation.PartyID(role)
	if party == nil || *party != partyID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "you are not a party of this conversation",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    conversation,
	})
}

// MarkConversationRead ทำเครื่องหมายอ่านแล้วทุกข้อความของฝ่ายตรงข้าม
func (h *ConversationHandler) MarkConversationRead(c *fiber.Ctx) error {
	partyID, err := middleware.GetPartyUUID(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: "+err.Error())
	}

	conversationID, err := utils.ParseUUIDParam(c, "conversationId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := h.chatService.MarkConversationRead(conversationID, partyID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Conversation marked as read",
	})
}
