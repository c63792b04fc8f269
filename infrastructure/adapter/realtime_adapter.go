// infrastructure/adapter/realtime_adapter.go
package adapter

import (
	"log"
	"sync"

	"github.com/RadowanAhmed/mataim-chat-api/application/chatsession"
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/port"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/websocket"
	"github.com/google/uuid"
)

// feedBufferSize ต่อ subscriber; ช่องเต็มหมายถึง session ตามไม่ทัน
// จึงปิด subscription ให้ไป resubscribe แล้วโหลดประวัติใหม่แทน
const feedBufferSize = 32

// RealtimeAdapter เชื่อม ChatService เข้ากับ WebSocket Hub และส่งต่อ
// ข้อความใหม่ให้ chat session ที่ subscribe การสนทนาเดียวกันอยู่
//
// Fan-out is at-least-once: every subscriber of the conversation gets the
// raw inserted row and deduplicates by message ID on its own side.
type RealtimeAdapter struct {
	hub *websocket.Hub

	mu     sync.Mutex
	feeds  map[uuid.UUID]map[int64]*feedSubscription
	nextID int64
}

// NewRealtimeAdapter สร้าง adapter ใหม่บน hub ที่ระบุ
func NewRealtimeAdapter(hub *websocket.Hub) *RealtimeAdapter {
	return &RealtimeAdapter{
		hub:   hub,
		feeds: make(map[uuid.UUID]map[int64]*feedSubscription),
	}
}

var (
	_ port.RealtimePort = (*RealtimeAdapter)(nil)
	_ chatsession.Feed  = (*RealtimeAdapter)(nil)
)

// feedSubscription - การ subscribe หนึ่งรายการของ session หนึ่งตัว
type feedSubscription struct {
	adapter        *RealtimeAdapter
	conversationID uuid.UUID
	id             int64
	ch             chan *models.Message
	once           sync.Once
}

func (s *feedSubscription) Events() <-chan *models.Message {
	return s.ch
}

func (s *feedSubscription) Close() {
	s.adapter.remove(s)
}

// Subscribe ลงทะเบียนรับข้อความใหม่ของการสนทนาหนึ่งรายการ
func (a *RealtimeAdapter) Subscribe(conversationID uuid.UUID) (chatsession.FeedSubscription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	sub := &feedSubscription{
		adapter:        a,
		conversationID: conversationID,
		id:             a.nextID,
		ch:             make(chan *models.Message, feedBufferSize),
	}

	subs, ok := a.feeds[conversationID]
	if !ok {
		subs = make(map[int64]*feedSubscription)
		a.feeds[conversationID] = subs
	}
	subs[sub.id] = sub

	return sub, nil
}

// remove takes a subscription out of the registry and closes its channel
// exactly once
func (a *RealtimeAdapter) remove(sub *feedSubscription) {
	a.mu.Lock()
	if subs, ok := a.feeds[sub.conversationID]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(a.feeds, sub.conversationID)
		}
	}
	a.mu.Unlock()

	sub.once.Do(func() { close(sub.ch) })
}

// BroadcastNewMessage กระจายข้อความใหม่ไปยัง WebSocket subscriber และ
// feed ของ chat session
func (a *RealtimeAdapter) BroadcastNewMessage(conversationID uuid.UUID, message interface{}) {
	a.hub.BroadcastToConversation(conversationID, websocket.TypeMessageReceive, message)

	row, ok := message.(*models.Message)
	if !ok {
		return
	}

	a.mu.Lock()
	stale := make([]*feedSubscription, 0)
	for _, sub := range a.feeds[conversationID] {
		select {
		case sub.ch <- row:
		default:
			// Subscriber ตามไม่ทัน ปิดให้ไป reload แทน
			stale = append(stale, sub)
		}
	}
	a.mu.Unlock()

	for _, sub := range stale {
		log.Printf("Realtime feed subscriber lagging on conversation %s, dropping subscription", conversationID)
		a.remove(sub)
	}
}

// BroadcastMessageRead กระจายเหตุการณ์อ่านแล้ว
func (a *RealtimeAdapter) BroadcastMessageRead(conversationID uuid.UUID, data interface{}) {
	a.hub.BroadcastToConversation(conversationID, websocket.TypeMessageRead, data)
}

// BroadcastConversationUpdated กระจายการเปลี่ยนแปลงสรุปการสนทนา
func (a *RealtimeAdapter) BroadcastConversationUpdated(conversationID uuid.UUID, update interface{}) {
	a.hub.BroadcastToConversation(conversationID, websocket.TypeConversationUpdate, update)
}
