// infrastructure/push/expo/expo_push.go
package expo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/repository"
	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultPushURL = "https://exp.host/--/api/v2/push/send"

// pushMessage payload ตามรูปแบบของ Expo push API
type pushMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Sound string                 `json:"sound,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type expoPushService struct {
	client      *http.Client
	pushURL     string
	profileRepo repository.ProfileRepository
	log         zerolog.Logger
}

// NewExpoPushService สร้าง PushService ที่ส่งผ่าน Expo
func NewExpoPushService(profileRepo repository.ProfileRepository, logger zerolog.Logger) service.PushService {
	return &expoPushService{
		client:      &http.Client{Timeout: 10 * time.Second},
		pushURL:     defaultPushURL,
		profileRepo: profileRepo,
		log:         logger.With().Str("component", "expo_push").Logger(),
	}
}

// NotifyNewMessage ส่งแจ้งเตือนข้อความใหม่ (fire-and-forget)
func (s *expoPushService) NotifyNewMessage(n *service.PushNotification) {
	go func() {
		token, err := s.recipientToken(n.RecipientRole, n.RecipientID)
		if err != nil {
			s.log.Warn().Err(err).
				Str("recipient_id", n.RecipientID.String()).
				Msg("push token lookup failed")
			return
		}
		if token == "" {
			// ผู้รับไม่ได้ลงทะเบียนอุปกรณ์
			return
		}

		msg := &pushMessage{
			To:    token,
			Title: n.Title,
			Body:  n.Body,
			Sound: "default",
			Data: map[string]interface{}{
				"type":            "chat_message",
				"conversation_id": n.ConversationID.String(),
				"sender_id":       n.SenderID.String(),
				"sender_role":     string(n.SenderRole),
			},
		}

		if err := s.send(msg); err != nil {
			s.log.Warn().Err(err).
				Str("conversation_id", n.ConversationID.String()).
				Msg("push dispatch failed")
		}
	}()
}

// recipientToken หา Expo push token ของผู้รับผ่านบัญชีผู้ใช้ที่ผูกกับโปรไฟล์
func (s *expoPushService) recipientToken(role types.Role, recipientID uuid.UUID) (string, error) {
	var userID uuid.UUID

	switch role {
	case types.RoleCustomer:
		customer, err := s.profileRepo.GetCustomer(recipientID)
		if err != nil {
			return "", fmt.Errorf("error fetching customer: %w", err)
		}
		if customer == nil {
			return "", fmt.Errorf("customer not found: %s", recipientID)
		}
		userID = customer.UserID

	case types.RoleRestaurant:
		restaurant, err := s.profileRepo.GetRestaurant(recipientID)
		if err != nil {
			return "", fmt.Errorf("error fetching restaurant: %w", err)
		}
		if restaurant == nil {
			return "", fmt.Errorf("restaurant not found: %s", recipientID)
		}
		userID = restaurant.OwnerID

	case types.RoleDriver:
		driver, err := s.profileRepo.GetDriver(recipientID)
		if err != nil {
			return "", fmt.Errorf("error fetching driver: %w", err)
		}
		if driver == nil {
			return "", fmt.Errorf("driver not found: %s", recipientID)
		}
		userID = driver.UserID

	default:
		return "", fmt.Errorf("unknown recipient role: %q", role)
	}

	user, err := s.profileRepo.GetUser(userID)
	if err != nil {
		return "", fmt.Errorf("error fetching user account: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("user account not found: %s", userID)
	}
	return user.ExpoPushToken, nil
}

func (s *expoPushService) send(msg *pushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error encoding push message: %w", err)
	}

	resp, err := s.client.Post(s.pushURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error posting to expo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("expo push returned status %d", resp.StatusCode)
	}
	return nil
}
