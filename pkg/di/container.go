// pkg/di/container.go
package di

import (
	"log"
	"os"

	"github.com/RadowanAhmed/mataim-chat-api/application/serviceimpl"
	"github.com/RadowanAhmed/mataim-chat-api/domain/repository"
	"github.com/RadowanAhmed/mataim-chat-api/domain/service"
	"github.com/RadowanAhmed/mataim-chat-api/infrastructure/adapter"
	"github.com/RadowanAhmed/mataim-chat-api/infrastructure/persistence/postgres"
	"github.com/RadowanAhmed/mataim-chat-api/infrastructure/push/expo"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/api/handler"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/websocket"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"gorm.io/gorm"
)

// Container เก็บ dependencies ทั้งหมดของแอปพลิเคชัน
type Container struct {
	// Repositories
	ConversationRepo repository.ConversationRepository
	MessageRepo      repository.MessageRepository
	ProfileRepo      repository.ProfileRepository
	OrderRepo        repository.OrderRepository

	// WebSocket Components
	WebSocketHub    *websocket.Hub
	RealtimeAdapter *adapter.RealtimeAdapter

	// Services
	StorageService  service.FileStorageService
	ChatService     service.ChatService
	PresenceService service.PresenceService
	PushService     service.PushService

	// Handlers
	ConversationHandler *handler.ConversationHandler
	MessageHandler      *handler.MessageHandler
	FileHandler         *handler.FileHandler

	RedisClient *redis.Client
	Logger      zerolog.Logger
}

// NewContainer สร้าง container ใหม่พร้อมกับ dependencies ทั้งหมด
func NewContainer(db *gorm.DB, storageService service.FileStorageService, redisClient *redis.Client) (*Container, error) {
	container := &Container{
		StorageService: storageService,
		RedisClient:    redisClient,
		Logger:         zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}

	// สร้าง repositories
	container.ConversationRepo = postgres.NewConversationRepository(db)
	container.MessageRepo = postgres.NewMessageRepository(db)
	container.ProfileRepo = postgres.NewProfileRepository(db)
	container.OrderRepo = postgres.NewOrderRepository(db)

	// สร้าง basic services
	container.PresenceService = serviceimpl.NewPresenceService(redisClient)
	container.PushService = expo.NewExpoPushService(container.ProfileRepo, container.Logger)

	// สร้าง WebSocket Hub ก่อน (ChatService กับ Feed จะถูกตั้งค่าภายหลัง
	// เพราะสร้างข้าม dependency cycle: hub -> chat service -> adapter -> hub)
	container.WebSocketHub = websocket.NewHub(container.ProfileRepo, container.Logger)

	// สร้าง RealtimeAdapter บน hub
	container.RealtimeAdapter = adapter.NewRealtimeAdapter(container.WebSocketHub)

	// สร้าง ChatService (ต้องสร้างหลัง RealtimeAdapter)
	container.ChatService = serviceimpl.NewChatService(
		container.ConversationRepo,
		container.MessageRepo,
		container.ProfileRepo,
		container.OrderRepo,
		container.RealtimeAdapter,
		container.PushService,
	)

	// ปิดวงจร: ตั้งค่า ChatService และ Feed กลับเข้า Hub
	container.WebSocketHub.SetChatService(container.ChatService)
	container.WebSocketHub.SetFeed(container.RealtimeAdapter)
	container.WebSocketHub.SetPresenceService(container.PresenceService)

	// สร้าง handlers
	container.ConversationHandler = handler.NewConversationHandler(container.ChatService)
	container.MessageHandler = handler.NewMessageHandler(container.ChatService)
	container.FileHandler = handler.NewFileHandler(container.StorageService)

	log.Println("DI container initialized")

	return container, nil
}
