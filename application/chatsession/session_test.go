// application/chatsession/session_test.go
package chatsession

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeGateway struct {
	mu      sync.Mutex
	conv    *models.Conversation
	convErr error
	history []*dto.MessageDTO
	full    map[uuid.UUID]*dto.MessageDTO
	sendErr error
	sent    []*dto.MessageDTO
}

func (g *fakeGateway) GetConversation(id uuid.UUID) (*models.Conversation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.convErr != nil {
		return nil, g.convErr
	}
	return g.conv, nil
}

func (g *fakeGateway) ListMessages(conversationID uuid.UUID, limit, offset int) ([]*dto.MessageDTO, int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history, int64(len(g.history)), nil
}

func (g *fakeGateway) GetMessage(id uuid.UUID) (*dto.MessageDTO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.full[id]; ok {
		return m, nil
	}
	return nil, errors.New("message not found")
}

func (g *fakeGateway) SendMessage(senderRole types.Role, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageDTO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	m := &dto.MessageDTO{
		ID:             uuid.New(),
		ConversationID: req.ConversationID,
		SenderID:       senderID,
		SenderRole:     senderRole,
		MessageType:    req.MessageType,
		Content:        req.Content,
		CreatedAt:      time.Now(),
	}
	g.sent = append(g.sent, m)
	return m, nil
}

func (g *fakeGateway) MarkConversationRead(conversationID uuid.UUID, readerID uuid.UUID) error {
	return nil
}

type fakeFeed struct {
	mu    sync.Mutex
	failN int
	calls int
	subs  []*fakeSub
}

func (f *fakeFeed) Subscribe(conversationID uuid.UUID) (FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failN {
		return nil, errors.New("feed unavailable")
	}
	sub := &fakeSub{ch: make(chan *models.Message, 8)}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFeed) lastSub() *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

type fakeSub struct {
	ch   chan *models.Message
	once sync.Once
}

func (s *fakeSub) Events() <-chan *models.Message { return s.ch }

func (s *fakeSub) Close() { s.once.Do(func() { close(s.ch) }) }

func (s *fakeSub) push(m *models.Message) { s.ch <- m }

// customerDriverFixture sets up a conversation between customer c and
// driver d, viewed as the customer.
func customerDriverFixture() (*fakeGateway, *fakeProfiles, *fakeFeed, uuid.UUID, uuid.UUID, uuid.UUID) {
	convID := uuid.New()
	customerID := uuid.New()
	driverID := uuid.New()

	gateway := &fakeGateway{
		conv: &models.Conversation{ID: convID, CustomerID: &customerID, DriverID: &driverID},
		full: make(map[uuid.UUID]*dto.MessageDTO),
	}
	profiles := &fakeProfiles{
		drivers: map[uuid.UUID]*models.Driver{
			driverID: {ID: driverID, Name: "Somchai", Phone: "0812345678"},
		},
	}
	return gateway, profiles, &fakeFeed{}, convID, customerID, driverID
}

func waitEvent(t *testing.T, s *Session, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatal("events channel closed before expected event")
			}
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func waitState(t *testing.T, s *Session, want State) {
	t.Helper()
	waitEvent(t, s, func(ev Event) bool {
		return ev.Type == EventStateChanged && ev.State == want
	})
}

func TestSession_HappyPath(t *testing.T) {
	gateway, profiles, feed, convID, customerID, driverID := customerDriverFixture()

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	waitState(t, s, StateSubscribed)

	p := s.Participant()
	if p == nil || p.ID != driverID {
		t.Fatalf("participant = %+v, want driver %s", p, driverID)
	}

	// Optimistic send confirms in place.
	s.Send("text", "on my way?")
	ev := waitEvent(t, s, func(ev Event) bool {
		if ev.Type != EventMessagesChanged {
			return false
		}
		for _, m := range ev.Messages {
			if m.Content == "on my way?" && !m.Pending && m.ServerID != uuid.Nil {
				return true
			}
		}
		return false
	})
	if len(ev.Messages) != 1 {
		t.Errorf("message list has %d entries after confirm, want 1", len(ev.Messages))
	}

	// Realtime push from the driver arrives as a raw row; the session
	// fetches the full record and merges it.
	pushID := uuid.New()
	gateway.mu.Lock()
	gateway.full[pushID] = &dto.MessageDTO{
		ID:             pushID,
		ConversationID: convID,
		SenderID:       driverID,
		SenderRole:     types.RoleDriver,
		MessageType:    "text",
		Content:        "yes, 5 minutes",
		CreatedAt:      time.Now(),
	}
	gateway.mu.Unlock()

	feed.lastSub().push(&models.Message{
		ID:             pushID,
		ConversationID: convID,
		SenderID:       driverID,
		SenderRole:     types.RoleDriver,
		MessageType:    "text",
		Content:        "yes, 5 minutes",
		CreatedAt:      time.Now(),
	})
	waitEvent(t, s, func(ev Event) bool {
		if ev.Type != EventMessagesChanged {
			return false
		}
		for _, m := range ev.Messages {
			if m.ServerID == pushID {
				return true
			}
		}
		return false
	})
}

func TestSession_SendFailureRollsBack(t *testing.T) {
	gateway, profiles, feed, convID, customerID, _ := customerDriverFixture()
	gateway.sendErr = errors.New("insert rejected")

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	waitState(t, s, StateSubscribed)

	s.Send("text", "hello?")
	failed := waitEvent(t, s, func(ev Event) bool { return ev.Type == EventMessageFailed })
	if failed.Content != "hello?" {
		t.Errorf("restored content = %q, want %q", failed.Content, "hello?")
	}
	if failed.LocalID == "" {
		t.Error("failure event missing the rejected local ID")
	}
	if failed.Err == nil {
		t.Error("failure event missing the cause")
	}

	// The pending entry is gone from the next snapshot.
	ev := waitEvent(t, s, func(ev Event) bool { return ev.Type == EventMessagesChanged })
	if len(ev.Messages) != 0 {
		t.Errorf("message list has %d entries after rollback, want 0", len(ev.Messages))
	}
}

func TestSession_ResolveFailureIsExplicit(t *testing.T) {
	convID := uuid.New()
	customerID := uuid.New()
	gateway := &fakeGateway{
		conv: &models.Conversation{ID: convID, CustomerID: &customerID},
	}
	feed := &fakeFeed{}

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, &fakeProfiles{}, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	ev := waitEvent(t, s, func(ev Event) bool {
		return ev.Type == EventStateChanged && ev.State == StateFailed
	})
	if !errors.Is(ev.Err, ErrNoParticipant) {
		t.Errorf("failure cause = %v, want ErrNoParticipant", ev.Err)
	}
	if feed.callCount() != 0 {
		t.Error("session subscribed despite failed initialization")
	}
}

func TestSession_SubscribeRetriesThenDegrades(t *testing.T) {
	gateway, profiles, feed, convID, customerID, _ := customerDriverFixture()
	feed.failN = 100

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	// Shrink the backoff before the pipeline runs; commands execute in
	// posted order.
	s.post(func() { s.backoffBase = time.Millisecond })
	s.Focus()

	waitState(t, s, StateReconnecting)
	waitState(t, s, StateOffline)

	if got := feed.callCount(); got != 3 {
		t.Errorf("subscribe attempts = %d, want 3", got)
	}
}

func TestSession_FeedDropResubscribes(t *testing.T) {
	gateway, profiles, feed, convID, customerID, _ := customerDriverFixture()

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	waitState(t, s, StateSubscribed)

	feed.lastSub().Close()
	waitState(t, s, StateReconnecting)
	waitState(t, s, StateSubscribed)

	if got := feed.callCount(); got != 2 {
		t.Errorf("subscribe calls = %d, want 2", got)
	}
}

func TestSession_FeedDropReloadsMissedHistory(t *testing.T) {
	gateway, profiles, feed, convID, customerID, driverID := customerDriverFixture()

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	waitState(t, s, StateSubscribed)

	// A message lands while the subscription is wedged, so it is never
	// pushed; only the history knows about it.
	gapID := uuid.New()
	gateway.mu.Lock()
	gateway.history = append(gateway.history, &dto.MessageDTO{
		ID:             gapID,
		ConversationID: convID,
		SenderID:       driverID,
		SenderRole:     types.RoleDriver,
		MessageType:    "text",
		Content:        "arrived at the restaurant",
		CreatedAt:      time.Now(),
	})
	gateway.mu.Unlock()

	feed.lastSub().Close()
	waitState(t, s, StateReconnecting)

	// The drop triggers a full reload, which backfills the gap message.
	ev := waitEvent(t, s, func(ev Event) bool {
		if ev.Type != EventMessagesChanged {
			return false
		}
		for _, m := range ev.Messages {
			if m.ServerID == gapID {
				return true
			}
		}
		return false
	})
	if len(ev.Messages) != 1 {
		t.Errorf("messages after reload = %d, want only the gap message", len(ev.Messages))
	}
	waitState(t, s, StateSubscribed)

	if got := feed.callCount(); got != 2 {
		t.Errorf("subscribe calls = %d, want 2", got)
	}
}

func TestSession_RefocusKeepsSubscription(t *testing.T) {
	gateway, profiles, feed, convID, customerID, _ := customerDriverFixture()

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	waitState(t, s, StateSubscribed)

	// Refocus reloads the history but must not tear down the existing
	// subscription when the counterpart is unchanged.
	s.Focus()
	waitState(t, s, StateSubscribed)

	if got := feed.callCount(); got != 1 {
		t.Errorf("subscribe calls = %d after refocus, want 1", got)
	}
}

func TestSession_RestaurantPhoneEnrichment(t *testing.T) {
	convID := uuid.New()
	customerID := uuid.New()
	restaurantID := uuid.New()
	ownerID := uuid.New()

	gateway := &fakeGateway{
		conv: &models.Conversation{ID: convID, CustomerID: &customerID, RestaurantID: &restaurantID},
	}
	profiles := &fakeProfiles{
		restaurants: map[uuid.UUID]*models.Restaurant{
			restaurantID: {ID: restaurantID, OwnerID: ownerID, Name: "Krua Thai"},
		},
		users: map[uuid.UUID]*models.User{
			ownerID: {ID: ownerID, Phone: "027771234"},
		},
	}
	feed := &fakeFeed{}

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	defer s.Dispose()

	s.Focus()
	ev := waitEvent(t, s, func(ev Event) bool {
		return ev.Type == EventParticipantLoaded && ev.Participant.Phone != ""
	})
	if ev.Participant.Phone != "027771234" {
		t.Errorf("enriched phone = %q, want %q", ev.Participant.Phone, "027771234")
	}
	if ev.Participant.ID != restaurantID {
		t.Error("enrichment changed the participant identity")
	}
	if got := feed.callCount(); got != 1 {
		t.Errorf("subscribe calls = %d after enrichment, want 1", got)
	}
}

func TestSession_DisposeClosesAndDropsLateWork(t *testing.T) {
	gateway, profiles, feed, convID, customerID, _ := customerDriverFixture()

	s := NewSession(convID, types.RoleCustomer, customerID, gateway, feed, profiles, zerolog.Nop())
	s.Focus()
	waitState(t, s, StateSubscribed)

	s.Dispose()
	s.Dispose() // idempotent

	sawDisposed := false
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				if !sawDisposed {
					t.Fatal("events closed without a disposed state change")
				}
				// Calls after dispose are silent no-ops.
				s.Send("text", "too late")
				s.Focus()
				if p := s.Participant(); p != nil {
					t.Errorf("participant after dispose = %+v, want nil", p)
				}
				return
			}
			if ev.Type == EventStateChanged && ev.State == StateDisposed {
				sawDisposed = true
			}
		case <-deadline:
			t.Fatal("events channel never closed after dispose")
		}
	}
}
