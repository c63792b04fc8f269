// domain/service/presence_service.go
package service

import "github.com/google/uuid"

// PresenceService เป็น interface สำหรับติดตามสถานะออนไลน์ของผู้ใช้
type PresenceService interface {
	SetUserOnline(userID uuid.UUID) error
	SetUserOffline(userID uuid.UUID) error
	IsUserOnline(userID uuid.UUID) (bool, error)
}
