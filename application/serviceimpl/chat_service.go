// application/serviceimpl/chat_service.go
package serviceimpl

import (
	"fmt"
	"strings"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/application/chatsession"
	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/port"
	"github.com/RadowanAhmed/mataim-chat-api/domain/repository"
	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

type chatService struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	profileRepo      repository.ProfileRepository
	orderRepo        repository.OrderRepository
	resolver         *chatsession.Resolver
	realtime         port.RealtimePort
	push             service.PushService
}

// NewChatService สร้าง service ใหม่
func NewChatService(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	orderRepo repository.OrderRepository,
	realtime port.RealtimePort,
	push service.PushService,
) service.ChatService {
	return &chatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		profileRepo:      profileRepo,
		orderRepo:        orderRepo,
		resolver:         chatsession.NewResolver(profileRepo),
		realtime:         realtime,
		push:             push,
	}
}

// FindOrCreateConversation หาหรือสร้างการสนทนาระหว่างสองฝ่าย
func (s *chatService) FindOrCreateConversation(req *dto.FindOrCreateConversationRequest) (*models.Conversation, error) {
	// ตรวจสอบบทบาทของทั้งสองฝ่าย
	if !req.ViewerRole.Valid() {
		return nil, fmt.Errorf("invalid viewer role: %q", req.ViewerRole)
	}
	if !req.PartnerRole.Valid() {
		return nil, fmt.Errorf("invalid partner role: %q", req.PartnerRole)
	}
	if req.ViewerRole == req.PartnerRole {
		return nil, fmt.Errorf("conversation parties must have different roles")
	}

	// หาการสนทนาเดิมก่อน
	existing, err := s.conversationRepo.FindByParties(req.ViewerRole, req.ViewerID, req.PartnerRole, req.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("error finding conversation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	// ตรวจสอบคำสั่งซื้อที่อ้างถึง (ถ้ามี)
	if req.OrderID != nil {
		order, err := s.orderRepo.GetByID(*req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("error fetching order: %w", err)
		}
		if order == nil {
			return nil, fmt.Errorf("order not found")
		}
	}

	conversation := &models.Conversation{
		ID:        uuid.New(),
		OrderID:   req.OrderID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	setParty(conversation, req.ViewerRole, req.ViewerID)
	setParty(conversation, req.PartnerRole, req.PartnerID)

	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	return conversation, nil
}

// GetConversation ดึงข้อมูลการสนทนาตาม ID
func (s *chatService) GetConversation(id uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("error fetching conversation: %w", err)
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation not found")
	}
	return conversation, nil
}

// ListConversations ดึงการสนทนาทั้งหมดของฝ่ายที่ระบุ พร้อมข้อมูลคู่สนทนา
func (s *chatService) ListConversations(role types.Role, partyID uuid.UUID, limit, offset int) ([]*dto.ConversationDTO, int64, error) {
	if !role.Valid() {
		return nil, 0, fmt.Errorf("invalid role: %q", role)
	}

	conversations, total, err := s.conversationRepo.ListByParty(role, partyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing conversations: %w", err)
	}

	dtos := make([]*dto.ConversationDTO, 0, len(conversations))
	for _, conv := range conversations {
		item := &dto.ConversationDTO{
			ID:            conv.ID,
			CustomerID:    conv.CustomerID,
			RestaurantID:  conv.RestaurantID,
			DriverID:      conv.DriverID,
			OrderID:       conv.OrderID,
			LastMessage:   conv.LastMessage,
			LastMessageAt: conv.LastMessageAt,
			CreatedAt:     conv.CreatedAt,
		}

		// คู่สนทนาจากมุมมองของผู้เรียก (soft-fail: รายการยังแสดงได้แม้
		// โปรไฟล์หาย)
		if participant, err := s.resolver.Resolve(conv, role); err == nil {
			item.Participant = participantMap(participant)
		} else {
			fmt.Printf("Error resolving participant: %v, conversationID: %s\n", err, conv.ID)
		}

		if unread, err := s.messageRepo.CountUnread(conv.ID, partyID); err == nil {
			item.UnreadCount = unread
		} else {
			fmt.Printf("Error counting unread: %v, conversationID: %s\n", err, conv.ID)
		}

		dtos = append(dtos, item)
	}

	return dtos, total, nil
}

// ListMessages ดึงข้อความเรียงตามเวลาสร้างจากเก่าไปใหม่ พร้อมโปรไฟล์ผู้ส่ง
func (s *chatService) ListMessages(conversationID uuid.UUID, limit, offset int) ([]*dto.MessageDTO, int64, error) {
	messages, total, err := s.messageRepo.GetByConversationID(conversationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching messages: %w", err)
	}

	// cache โปรไฟล์ผู้ส่ง เพื่อไม่ต้องดึงซ้ำทุกข้อความ
	senders := make(map[uuid.UUID]*dto.SenderInfoDTO)
	dtos := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		sender, ok := senders[m.SenderID]
		if !ok {
			sender = s.senderInfo(m.SenderID, m.SenderRole)
			senders[m.SenderID] = sender
		}
		dtos = append(dtos, messageToDTO(m, sender))
	}

	return dtos, total, nil
}

// GetMessage ดึงข้อความเดียวพร้อมโปรไฟล์ผู้ส่ง
func (s *chatService) GetMessage(id uuid.UUID) (*dto.MessageDTO, error) {
	message, err := s.messageRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("error fetching message: %w", err)
	}
	if message == nil {
		return nil, fmt.Errorf("message not found")
	}
	return messageToDTO(message, s.senderInfo(message.SenderID, message.SenderRole)), nil
}

// SendMessage บันทึกข้อความ อัปเดตสรุปการสนทนา แล้วกระจายผ่าน realtime และ
// push notification
func (s *chatService) SendMessage(senderRole types.Role, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageDTO, error) {
	if !senderRole.Valid() {
		return nil, fmt.Errorf("invalid sender role: %q", senderRole)
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if messageType != models.MessageTypeText && messageType != models.MessageTypeImage {
		return nil, fmt.Errorf("unsupported message type")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("message content cannot be empty")
	}

	conversation, err := s.conversationRepo.GetByID(req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("error fetching conversation: %w", err)
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation not found")
	}

	// ผู้ส่งต้องเป็นฝ่ายหนึ่งของการสนทนา
	party := conversation.PartyID(senderRole)
	if party == nil || *party != senderID {
		return nil, fmt.Errorf("sender is not a party of this conversation")
	}

	now := time.Now()
	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		SenderID:       senderID,
		SenderRole:     senderRole,
		MessageType:    messageType,
		Content:        req.Content,
		CreatedAt:      now,
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	// อัปเดตสรุปข้อความล่าสุดของการสนทนา (soft-fail)
	lastMsgText := req.Content
	if messageType == models.MessageTypeImage {
		lastMsgText = "[Image]"
	}
	if err := s.conversationRepo.UpdateLastMessage(conversation.ID, lastMsgText, now); err != nil {
		fmt.Printf("Error updating conversation last message: %v, conversationID: %s\n", err, conversation.ID)
	}

	// กระจายแถวดิบผ่าน realtime (ผู้รับไป fetch ฉบับเต็มเอง)
	s.realtime.BroadcastNewMessage(conversation.ID, message)

	sender := s.senderInfo(senderID, senderRole)
	s.notifyRecipient(conversation, message, sender)

	return messageToDTO(message, sender), nil
}

// MarkConversationRead ทำเครื่องหมายอ่านแล้วทุกข้อความของฝ่ายตรงข้าม
func (s *chatService) MarkConversationRead(conversationID uuid.UUID, readerID uuid.UUID) error {
	now := time.Now()
	if err := s.messageRepo.MarkConversationRead(conversationID, readerID, now); err != nil {
		return fmt.Errorf("error marking conversation read: %w", err)
	}

	s.realtime.BroadcastMessageRead(conversationID, map[string]interface{}{
		"conversation_id": conversationID,
		"reader_id":       readerID,
		"read_at":         now,
	})
	return nil
}

// notifyRecipient ส่ง push notification ไปยังฝ่ายตรงข้าม (fire-and-forget)
func (s *chatService) notifyRecipient(conversation *models.Conversation, message *models.Message, sender *dto.SenderInfoDTO) {
	for _, role := range []types.Role{types.RoleCustomer, types.RoleRestaurant, types.RoleDriver} {
		if role == message.SenderRole {
			continue
		}
		recipientID := conversation.PartyID(role)
		if recipientID == nil {
			continue
		}

		title := "New message"
		if sender != nil && sender.Name != "" {
			title = "New message from " + sender.Name
		}
		body := message.Content
		if message.MessageType == models.MessageTypeImage {
			body = "[Image]"
		}

		s.push.NotifyNewMessage(&service.PushNotification{
			ConversationID: conversation.ID,
			SenderID:       message.SenderID,
			SenderRole:     message.SenderRole,
			RecipientID:    *recipientID,
			RecipientRole:  role,
			Title:          title,
			Body:           body,
		})
	}
}

// senderInfo ดึงโปรไฟล์ผู้ส่งตามบทบาท (nil เมื่อหาไม่พบ)
func (s *chatService) senderInfo(senderID uuid.UUID, role types.Role) *dto.SenderInfoDTO {
	switch role {
	case types.RoleCustomer:
		customer, err := s.profileRepo.GetCustomer(senderID)
		if err != nil || customer == nil {
			fmt.Printf("Error fetching customer sender: %v, senderID: %s\n", err, senderID)
			return nil
		}
		return &dto.SenderInfoDTO{ID: customer.ID, Role: role, Name: customer.Name, AvatarURL: customer.AvatarURL}

	case types.RoleRestaurant:
		restaurant, err := s.profileRepo.GetRestaurant(senderID)
		if err != nil || restaurant == nil {
			fmt.Printf("Error fetching restaurant sender: %v, senderID: %s\n", err, senderID)
			return nil
		}
		return &dto.SenderInfoDTO{ID: restaurant.ID, Role: role, Name: restaurant.Name, AvatarURL: restaurant.LogoURL}

	case types.RoleDriver:
		driver, err := s.profileRepo.GetDriver(senderID)
		if err != nil || driver == nil {
			fmt.Printf("Error fetching driver sender: %v, senderID: %s\n", err, senderID)
			return nil
		}
		return &dto.SenderInfoDTO{ID: driver.ID, Role: role, Name: driver.Name, AvatarURL: driver.AvatarURL}
	}
	return nil
}

func messageToDTO(m *models.Message, sender *dto.SenderInfoDTO) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderRole:     m.SenderRole,
		MessageType:    m.MessageType,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
		Sender:         sender,
	}
}

func participantMap(p *chatsession.Participant) map[string]interface{} {
	out := map[string]interface{}{
		"id":           p.ID,
		"role":         string(p.Role),
		"display_name": p.DisplayName,
	}
	if p.AvatarURL != "" {
		out["avatar_url"] = p.AvatarURL
	}
	if p.Phone != "" {
		out["phone"] = p.Phone
	}
	if p.VehicleType != "" {
		out["vehicle_type"] = p.VehicleType
	}
	if p.Rating > 0 {
		out["rating"] = p.Rating
	}
	return out
}

func setParty(conversation *models.Conversation, role types.Role, id uuid.UUID) {
	partyID := id
	switch role {
	case types.RoleCustomer:
		conversation.CustomerID = &partyID
	case types.RoleRestaurant:
		conversation.RestaurantID = &partyID
	case types.RoleDriver:
		conversation.DriverID = &partyID
	}
}
