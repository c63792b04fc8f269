// interfaces/websocket/hub_test.go
package websocket

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestRateLimiterAllowsUpToRate(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if rl.Allow() {
		t.Error("call over the rate should be rejected")
	}
}

func TestRateLimiterRefillsAfterInterval(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow() {
		t.Fatal("first call should be allowed")
	}
	if rl.Allow() {
		t.Fatal("second call should be rejected")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow() {
		t.Error("call after refill interval should be allowed")
	}
}

func TestCheckAliveClientsDoesNotBlockHubLoop(t *testing.T) {
	hub := NewHub(nil, testLogger())

	stale := &Client{ID: uuid.New(), UserID: uuid.New()}
	stale.pingMux.Lock()
	stale.lastPingTime = time.Now().Add(-2 * time.Minute)
	stale.pingMux.Unlock()

	hub.clientsMux.Lock()
	hub.clients[stale.ID] = stale
	hub.clientsMux.Unlock()

	// ทำงานเหมือนอยู่ใน Run loop: ไม่มีใครอ่าน unregister อยู่ ณ ตอนนี้
	// ถ้าส่งตรงจะติดค้างทันที
	done := make(chan struct{})
	go func() {
		hub.checkAliveClients()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checkAliveClients blocked on unregister channel")
	}

	select {
	case got := <-hub.unregister:
		if got.ID != stale.ID {
			t.Errorf("unregistered client = %s, want %s", got.ID, stale.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("stale client was never queued for unregister")
	}
}

func TestClientPingTimeConcurrentAccess(t *testing.T) {
	client := &Client{ID: uuid.New()}
	client.touchPing()
	before := client.lastPing()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				client.touchPing()
				_ = client.lastPing()
			}
		}()
	}
	wg.Wait()

	if client.lastPing().Before(before) {
		t.Error("last ping time went backwards")
	}
}

func TestConversationSubscriptionBookkeeping(t *testing.T) {
	hub := NewHub(nil, testLogger())
	convID := uuid.New()
	clientA := uuid.New()
	clientB := uuid.New()

	hub.subscribeToConversation(clientA, convID)
	hub.subscribeToConversation(clientB, convID)
	// Subscribe ซ้ำต้องไม่เพิ่มรายการ
	hub.subscribeToConversation(clientA, convID)

	hub.conversationSubsMux.RLock()
	n := len(hub.conversationSubs[convID])
	hub.conversationSubsMux.RUnlock()
	if n != 2 {
		t.Fatalf("got %d subscribers, want 2", n)
	}

	hub.unsubscribeFromConversation(clientA, convID)
	hub.removeClientFromAllConversations(clientB)

	hub.conversationSubsMux.RLock()
	_, exists := hub.conversationSubs[convID]
	hub.conversationSubsMux.RUnlock()
	if exists {
		t.Error("empty subscriber list should be removed from the map")
	}
}
