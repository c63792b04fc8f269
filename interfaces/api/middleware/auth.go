// interfaces/api/middleware/auth.go
package middleware

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// Claims - ข้อมูลตัวตนใน JWT token
//
// PartyID is the role-scoped profile ID (customer, restaurant, or driver
// record), distinct from the account UserID.
type Claims struct {
	UserID  string `json:"user_id"`
	PartyID string `json:"party_id"`
	Role    string `json:"role"`
	jwt.StandardClaims
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// ParseToken แยกและตรวจสอบ JWT token
func ParseToken(token string) (*Claims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})

	if tokenClaims != nil {
		if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid {
			return claims, nil
		}
	}

	return nil, err
}

// Protected ตรวจสอบ Bearer token แล้วเก็บตัวตนลงใน context locals
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// รองรับ token ผ่าน query string สำหรับ WebSocket upgrade
			authHeader = c.Query("token")
			if authHeader == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Missing authorization token",
				})
			}
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Invalid authorization header format",
				})
			}
			authHeader = parts[1]
		}

		claims, err := ParseToken(authHeader)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid user identity in token",
			})
		}

		partyID, err := uuid.Parse(claims.PartyID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid party identity in token",
			})
		}

		role := types.Role(claims.Role)
		if !role.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid role in token",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("party_id", partyID)
		c.Locals("role", role)

		return c.Next()
	}
}

// GetUserUUID ดึงบัญชีผู้ใช้จาก context
func GetUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user identity not found in context")
	}
	return userID, nil
}

// GetPartyUUID ดึงโปรไฟล์ตามบทบาทจาก context
func GetPartyUUID(c *fiber.Ctx) (uuid.UUID, error) {
	partyID, ok := c.Locals("party_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("party identity not found in context")
	}
	return partyID, nil
}

// GetRole ดึงบทบาทจาก context
func GetRole(c *fiber.Ctx) (types.Role, error) {
	role, ok := c.Locals("role").(types.Role)
	if !ok {
		return "", errors.New("role not found in context")
	}
	return role, nil
}
