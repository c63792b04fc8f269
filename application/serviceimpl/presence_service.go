// application/serviceimpl/presence_service.go
package serviceimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// presenceTTL กันสถานะค้างเมื่อ process ตายโดยไม่ได้ SetUserOffline
const presenceTTL = 5 * time.Minute

type presenceService struct {
	redisClient *redis.Client
	ctx         context.Context
}

// NewPresenceService สร้าง service ใหม่
func NewPresenceService(redisClient *redis.Client) service.PresenceService {
	return &presenceService{
		redisClient: redisClient,
		ctx:         context.Background(),
	}
}

func presenceKey(userID uuid.UUID) string {
	return "presence:user:" + userID.String()
}

// SetUserOnline ตั้งสถานะออนไลน์ (ต่ออายุ TTL ทุกครั้งที่เรียก)
func (s *presenceService) SetUserOnline(userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	if err := s.redisClient.Set(ctx, presenceKey(userID), time.Now().Unix(), presenceTTL).Err(); err != nil {
		return fmt.Errorf("error setting user online: %w", err)
	}
	return nil
}

// SetUserOffline ลบสถานะออนไลน์
func (s *presenceService) SetUserOffline(userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	if err := s.redisClient.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("error setting user offline: %w", err)
	}
	return nil
}

// IsUserOnline ตรวจสอบสถานะออนไลน์
func (s *presenceService) IsUserOnline(userID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	count, err := s.redisClient.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("error checking user presence: %w", err)
	}
	return count > 0, nil
}
