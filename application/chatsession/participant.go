// application/chatsession/participant.go
package chatsession

import (
	"errors"
	"fmt"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

var (
	// ErrNoParticipant - การสนทนาไม่มีคู่สนทนาเลยจากมุมมองของผู้เรียก
	ErrNoParticipant = errors.New("conversation has no counterpart for this viewer")

	// ErrAmbiguousParticipant - มีคู่สนทนามากกว่าหนึ่งฝ่าย ซึ่งไม่ควรเกิดขึ้น
	ErrAmbiguousParticipant = errors.New("conversation has more than one counterpart for this viewer")
)

// Participant - คู่สนทนาอีกฝ่ายหนึ่งที่ resolve ได้จากการสนทนา
//
// Identity (ID + Role) is immutable once resolved. Phone may arrive late
// for restaurant participants (owner-account enrichment) and never
// changes identity.
type Participant struct {
	ID          uuid.UUID
	Role        types.Role
	DisplayName string
	AvatarURL   string
	Phone       string

	// Role-specific extras
	VehicleType string
	Rating      float64

	// OwnerUserID ชี้ไปยังบัญชีเจ้าของร้าน สำหรับ enrich เบอร์โทรภายหลัง
	// (restaurant participants only)
	OwnerUserID *uuid.UUID
}

// ProfileGateway is the slice of the data gateway the resolver needs.
type ProfileGateway interface {
	GetCustomer(id uuid.UUID) (*models.Customer, error)
	GetRestaurant(id uuid.UUID) (*models.Restaurant, error)
	GetDriver(id uuid.UUID) (*models.Driver, error)
	GetUser(id uuid.UUID) (*models.User, error)
}

// Resolver determines the single "other party" of a conversation for a
// given viewer role.
type Resolver struct {
	profiles ProfileGateway
}

// NewResolver สร้าง Resolver ใหม่
func NewResolver(profiles ProfileGateway) *Resolver {
	return &Resolver{profiles: profiles}
}

// Resolve inspects the two party foreign keys that do not belong to the
// viewer's own role. Exactly one must be populated; zero or two is an
// explicit error, never a guess.
//
// For restaurant participants the returned Participant carries
// OwnerUserID so the caller can enrich the phone number without blocking
// resolution.
func (r *Resolver) Resolve(conv *models.Conversation, viewerRole types.Role) (*Participant, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is required")
	}
	if !viewerRole.Valid() {
		return nil, fmt.Errorf("invalid viewer role: %q", viewerRole)
	}

	var candidates []types.Role
	for _, role := range []types.Role{types.RoleCustomer, types.RoleRestaurant, types.RoleDriver} {
		if role == viewerRole {
			continue
		}
		if conv.PartyID(role) != nil {
			candidates = append(candidates, role)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, ErrNoParticipant
	case 1:
		// ok
	default:
		return nil, ErrAmbiguousParticipant
	}

	role := candidates[0]
	id := *conv.PartyID(role)

	switch role {
	case types.RoleCustomer:
		customer, err := r.profiles.GetCustomer(id)
		if err != nil {
			return nil, fmt.Errorf("error fetching customer profile: %w", err)
		}
		if customer == nil {
			return nil, fmt.Errorf("customer profile not found: %s", id)
		}
		return &Participant{
			ID:          customer.ID,
			Role:        types.RoleCustomer,
			DisplayName: customer.Name,
			AvatarURL:   customer.AvatarURL,
			Phone:       customer.Phone,
		}, nil

	case types.RoleRestaurant:
		restaurant, err := r.profiles.GetRestaurant(id)
		if err != nil {
			return nil, fmt.Errorf("error fetching restaurant profile: %w", err)
		}
		if restaurant == nil {
			return nil, fmt.Errorf("restaurant profile not found: %s", id)
		}
		ownerID := restaurant.OwnerID
		return &Participant{
			ID:          restaurant.ID,
			Role:        types.RoleRestaurant,
			DisplayName: restaurant.Name,
			AvatarURL:   restaurant.LogoURL,
			Rating:      restaurant.Rating,
			OwnerUserID: &ownerID,
		}, nil

	default:
		driver, err := r.profiles.GetDriver(id)
		if err != nil {
			return nil, fmt.Errorf("error fetching driver profile: %w", err)
		}
		if driver == nil {
			return nil, fmt.Errorf("driver profile not found: %s", id)
		}
		return &Participant{
			ID:          driver.ID,
			Role:        types.RoleDriver,
			DisplayName: driver.Name,
			AvatarURL:   driver.AvatarURL,
			Phone:       driver.Phone,
			VehicleType: driver.VehicleType,
			Rating:      driver.Rating,
		}, nil
	}
}

// OwnerPhone ดึงเบอร์โทรของบัญชีเจ้าของร้าน (ขั้น enrich แยกจาก Resolve)
func (r *Resolver) OwnerPhone(ownerUserID uuid.UUID) (string, error) {
	user, err := r.profiles.GetUser(ownerUserID)
	if err != nil {
		return "", fmt.Errorf("error fetching owner account: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("owner account not found: %s", ownerUserID)
	}
	return user.Phone, nil
}
