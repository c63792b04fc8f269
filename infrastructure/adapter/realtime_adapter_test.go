// infrastructure/adapter/realtime_adapter_test.go
package adapter

import (
	"os"
	"testing"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/RadowanAhmed/mataim-chat-api/interfaces/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestAdapter() *RealtimeAdapter {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	hub := websocket.NewHub(nil, logger)
	return NewRealtimeAdapter(hub)
}

func testMessage(convID uuid.UUID) *models.Message {
	return &models.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       uuid.New(),
		SenderRole:     types.RoleCustomer,
		MessageType:    models.MessageTypeText,
		Content:        "สวัสดีครับ",
		CreatedAt:      time.Now(),
	}
}

func TestSubscribeReceivesBroadcast(t *testing.T) {
	a := newTestAdapter()
	convID := uuid.New()

	sub, err := a.Subscribe(convID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	msg := testMessage(convID)
	a.BroadcastNewMessage(convID, msg)

	select {
	case got := <-sub.Events():
		if got.ID != msg.ID {
			t.Errorf("got message %s, want %s", got.ID, msg.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered to subscriber")
	}
}

func TestBroadcastOtherConversationNotDelivered(t *testing.T) {
	a := newTestAdapter()
	convID := uuid.New()

	sub, err := a.Subscribe(convID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	a.BroadcastNewMessage(uuid.New(), testMessage(uuid.New()))

	select {
	case got := <-sub.Events():
		t.Errorf("unexpected delivery: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	a := newTestAdapter()
	convID := uuid.New()

	sub, err := a.Subscribe(convID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	sub.Close()

	// ปิดซ้ำต้องไม่ panic
	sub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}

	// Broadcast หลังปิดต้องไม่ panic
	a.BroadcastNewMessage(convID, testMessage(convID))
}

func TestLaggingSubscriberDropped(t *testing.T) {
	a := newTestAdapter()
	convID := uuid.New()

	sub, err := a.Subscribe(convID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// เติมจน buffer เต็ม แล้วส่งเกินหนึ่งรายการ
	for i := 0; i < feedBufferSize+1; i++ {
		a.BroadcastNewMessage(convID, testMessage(convID))
	}

	// Subscriber ที่ตามไม่ทันถูกปิด channel เพื่อบังคับให้ resubscribe
	delivered := 0
	for {
		_, ok := <-sub.Events()
		if !ok {
			break
		}
		delivered++
	}
	if delivered != feedBufferSize {
		t.Errorf("delivered %d messages before drop, want %d", delivered, feedBufferSize)
	}
}

func TestNonMessagePayloadIgnoredByFeed(t *testing.T) {
	a := newTestAdapter()
	convID := uuid.New()

	sub, err := a.Subscribe(convID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// payload ที่ไม่ใช่ *models.Message ไปเฉพาะทาง hub เท่านั้น
	a.BroadcastNewMessage(convID, map[string]string{"note": "not a row"})

	select {
	case got := <-sub.Events():
		t.Errorf("unexpected delivery: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}
