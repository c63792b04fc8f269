// application/chatsession/session.go
package chatsession

import (
	"fmt"
	"sync"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State - สถานะของ session หนึ่งหน้าจอแชท
type State string

const (
	StateUninitialized         State = "uninitialized"
	StateResolvingConversation State = "resolving_conversation"
	StateResolvingParticipant  State = "resolving_participant"
	StateLoadingMessages       State = "loading_messages"
	StateSubscribed            State = "subscribed"
	StateReconnecting          State = "reconnecting"
	StateOffline               State = "offline" // realtime exhausted, manual refresh only
	StateFailed                State = "failed"  // initial load failed, nothing to render
	StateDisposed              State = "disposed"
)

// EventType - ชนิดเหตุการณ์ที่ session ส่งออกไปยังหน้าจอ
type EventType string

const (
	EventStateChanged      EventType = "state_changed"
	EventMessagesChanged   EventType = "messages_changed"
	EventMessageFailed     EventType = "message_failed"
	EventParticipantLoaded EventType = "participant_loaded"
)

// Event - เหตุการณ์หนึ่งรายการจาก session
type Event struct {
	Type        EventType
	State       State
	Messages    []Message
	Participant *Participant

	// Send failure details: the rejected temp identity plus the body so
	// the input text can be restored.
	LocalID string
	Content string
	Err     error
}

// Gateway is the slice of ChatService the session depends on.
type Gateway interface {
	GetConversation(id uuid.UUID) (*models.Conversation, error)
	ListMessages(conversationID uuid.UUID, limit, offset int) ([]*dto.MessageDTO, int64, error)
	GetMessage(id uuid.UUID) (*dto.MessageDTO, error)
	SendMessage(senderRole types.Role, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageDTO, error)
	MarkConversationRead(conversationID uuid.UUID, readerID uuid.UUID) error
}

// Feed delivers realtime inserts for one conversation. Delivery is
// at-least-once; the payload is the raw row without the joined sender
// profile.
type Feed interface {
	Subscribe(conversationID uuid.UUID) (FeedSubscription, error)
}

// FeedSubscription - การ subscribe หนึ่งรายการต่อหนึ่งการสนทนา
type FeedSubscription interface {
	// Events is closed when the subscription drops; the session then
	// re-subscribes with bounded retry.
	Events() <-chan *models.Message
	Close()
}

const (
	maxSubscribeAttempts = 3
	historyPageSize      = 200
	eventBufferSize      = 64
)

// Session - ตัวควบคุมหน้าจอแชทหนึ่งหน้าจอ (ทุกบทบาทใช้ตัวเดียวกัน)
//
// One goroutine owns all state; gateway calls run on side goroutines and
// post their results back into the loop, so callbacks can interleave in
// any order without locking. After Dispose, late results and pushes are
// dropped silently.
type Session struct {
	conversationID uuid.UUID
	viewerID       uuid.UUID
	viewerRole     types.Role

	gateway  Gateway
	feed     Feed
	resolver *Resolver
	store    *Store
	log      zerolog.Logger

	backoffBase time.Duration

	state        State
	participant  *Participant
	conversation *models.Conversation
	sub          FeedSubscription

	cmds     chan func()
	stop     chan struct{}
	stopOnce sync.Once
	events   chan Event
}

// NewSession สร้าง session สำหรับการสนทนาและผู้ชมที่ระบุ
func NewSession(
	conversationID uuid.UUID,
	viewerRole types.Role,
	viewerID uuid.UUID,
	gateway Gateway,
	feed Feed,
	profiles ProfileGateway,
	logger zerolog.Logger,
) *Session {
	s := &Session{
		conversationID: conversationID,
		viewerID:       viewerID,
		viewerRole:     viewerRole,
		gateway:        gateway,
		feed:           feed,
		resolver:       NewResolver(profiles),
		store:          NewStore(viewerID),
		log: logger.With().
			Str("conversation_id", conversationID.String()).
			Str("viewer_role", string(viewerRole)).
			Logger(),
		backoffBase: time.Second,
		state:       StateUninitialized,
		cmds:        make(chan func(), 32),
		stop:        make(chan struct{}),
		events:      make(chan Event, eventBufferSize),
	}

	go s.run()
	return s
}

// ConversationID - การสนทนาที่ session นี้ผูกอยู่
func (s *Session) ConversationID() uuid.UUID {
	return s.conversationID
}

// Events ส่งเหตุการณ์ไปยังหน้าจอ ปิดเมื่อ session ถูก Dispose
func (s *Session) Events() <-chan Event {
	return s.events
}

// Participant returns the resolved counterpart, or nil before
// resolution or after dispose.
func (s *Session) Participant() *Participant {
	done := make(chan *Participant, 1)
	if !s.post(func() { done <- s.participant }) {
		return nil
	}
	select {
	case p := <-done:
		return p
	case <-s.stop:
		return nil
	}
}

// Focus re-runs the full load pipeline. Every focus assumes the screen
// is stale: conversation, participant, and history are all re-fetched,
// and the store reconciles rather than appends.
func (s *Session) Focus() {
	s.post(func() { s.reload() })
}

// Send appends an optimistic entry and starts the remote insert. The
// pending message is visible to the screen before any network round
// trip completes.
func (s *Session) Send(messageType, content string) {
	s.post(func() {
		localID := s.store.AppendOptimistic(messageType, content)
		s.emitMessages()

		go func() {
			serverMsg, err := s.gateway.SendMessage(s.viewerRole, s.viewerID, &dto.SendMessageRequest{
				ConversationID: s.conversationID,
				MessageType:    messageType,
				Content:        content,
			})
			s.post(func() {
				if err != nil {
					s.log.Warn().Err(err).Str("local_id", localID).Msg("send failed, rolling back optimistic entry")
					body, _ := s.store.Reject(localID)
					s.emit(Event{Type: EventMessageFailed, State: s.state, LocalID: localID, Content: body, Err: err})
					s.emitMessages()
					return
				}
				s.store.Confirm(localID, serverMsg)
				s.emitMessages()
			})
		}()
	})
}

// MarkRead ทำเครื่องหมายอ่านแล้วทุกข้อความของฝ่ายตรงข้าม (soft-fail)
func (s *Session) MarkRead() {
	s.post(func() {
		go func() {
			if err := s.gateway.MarkConversationRead(s.conversationID, s.viewerID); err != nil {
				s.log.Warn().Err(err).Msg("mark read failed")
			}
		}()
	})
}

// Dispose tears the session down: the subscription is closed and any
// late pushes or gateway results are dropped.
func (s *Session) Dispose() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// post schedules fn on the session goroutine. Returns false if the
// session is already disposed (the mounted guard).
func (s *Session) post(fn func()) bool {
	select {
	case <-s.stop:
		return false
	case s.cmds <- fn:
		return true
	}
}

func (s *Session) run() {
	defer func() {
		if s.sub != nil {
			s.sub.Close()
			s.sub = nil
		}
		s.state = StateDisposed
		s.emit(Event{Type: EventStateChanged, State: StateDisposed})
		close(s.events)
	}()

	for {
		var feedCh <-chan *models.Message
		if s.sub != nil {
			feedCh = s.sub.Events()
		}

		select {
		case <-s.stop:
			return

		case fn := <-s.cmds:
			fn()

		case raw, ok := <-feedCh:
			if !ok {
				s.onFeedDropped()
				continue
			}
			s.onFeedEvent(raw)
		}
	}
}

// reload runs the full pipeline: conversation -> participant ->
// messages -> subscribe. Called on first focus and every re-focus.
func (s *Session) reload() {
	s.setState(StateResolvingConversation)
	conv, err := s.gateway.GetConversation(s.conversationID)
	if err != nil {
		s.fail(fmt.Errorf("error fetching conversation: %w", err))
		return
	}
	s.conversation = conv

	s.setState(StateResolvingParticipant)
	participant, err := s.resolver.Resolve(conv, s.viewerRole)
	if err != nil {
		// Ambiguous or missing counterpart aborts initialization; the
		// screen shows an explicit error instead of a placeholder chat.
		s.fail(fmt.Errorf("error resolving participant: %w", err))
		return
	}

	identityChanged := s.participant != nil && s.participant.ID != participant.ID
	s.participant = participant
	s.emit(Event{Type: EventParticipantLoaded, State: s.state, Participant: participant})

	// Late phone enrichment for restaurants; must not block the load and
	// must not force a resubscribe.
	if participant.Role == types.RoleRestaurant && participant.OwnerUserID != nil {
		ownerID := *participant.OwnerUserID
		go func() {
			phone, err := s.resolver.OwnerPhone(ownerID)
			if err != nil {
				s.log.Warn().Err(err).Msg("owner phone enrichment failed")
				return
			}
			s.post(func() {
				if s.participant != nil && s.participant.Role == types.RoleRestaurant {
					// Copy so already-emitted events keep a stable snapshot.
					enriched := *s.participant
					enriched.Phone = phone
					s.participant = &enriched
					s.emit(Event{Type: EventParticipantLoaded, State: s.state, Participant: s.participant})
				}
			})
		}()
	}

	s.setState(StateLoadingMessages)
	messages, _, err := s.gateway.ListMessages(s.conversationID, historyPageSize, 0)
	if err != nil {
		s.fail(fmt.Errorf("error loading messages: %w", err))
		return
	}
	s.store.LoadInitial(messages, participant)
	s.emitMessages()

	// One subscription per conversation; only an identity change tears
	// it down.
	if s.sub != nil && identityChanged {
		s.sub.Close()
		s.sub = nil
	}
	if s.sub == nil {
		s.subscribe(1)
		return
	}
	s.setState(StateSubscribed)
}

// subscribe attempts to establish the realtime subscription with
// bounded retry and linear backoff: attempt n waits n*backoffBase.
func (s *Session) subscribe(attempt int) {
	sub, err := s.feed.Subscribe(s.conversationID)
	if err == nil {
		s.sub = sub
		s.setState(StateSubscribed)
		return
	}

	if attempt >= maxSubscribeAttempts {
		s.log.Warn().Err(err).Int("attempts", attempt).Msg("realtime subscription exhausted, degrading to manual refresh")
		s.setState(StateOffline)
		return
	}

	s.setState(StateReconnecting)
	delay := time.Duration(attempt) * s.backoffBase
	s.log.Info().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("realtime subscribe failed, retrying")

	go func() {
		select {
		case <-s.stop:
		case <-time.After(delay):
			s.post(func() { s.subscribe(attempt + 1) })
		}
	}()
}

// onFeedDropped handles a forced close of the subscription. A drop may
// mean pushes were lost while the feed was down, so the history is
// reloaded through the full pipeline instead of just resubscribing.
func (s *Session) onFeedDropped() {
	if s.sub != nil {
		s.sub.Close()
		s.sub = nil
	}
	s.setState(StateReconnecting)
	s.reload()
}

// onFeedEvent handles one realtime push: the raw row has no joined
// sender profile, so a follow-up fetch runs off-loop and the result is
// merged through the store's dedup policy.
func (s *Session) onFeedEvent(raw *models.Message) {
	if raw == nil || raw.ConversationID != s.conversationID {
		return
	}
	// Cheap pre-filter; the store re-checks after the fetch.
	if raw.SenderID == s.viewerID {
		return
	}

	go func() {
		full, err := s.gateway.GetMessage(raw.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("message_id", raw.ID.String()).Msg("follow-up fetch failed, merging raw row")
			full = &dto.MessageDTO{
				ID:             raw.ID,
				ConversationID: raw.ConversationID,
				SenderID:       raw.SenderID,
				SenderRole:     raw.SenderRole,
				MessageType:    raw.MessageType,
				Content:        raw.Content,
				CreatedAt:      raw.CreatedAt,
			}
		}
		s.post(func() {
			if s.store.MergeRemote(full) {
				s.emitMessages()
				s.MarkRead()
			}
		})
	}()
}

func (s *Session) fail(err error) {
	s.log.Error().Err(err).Msg("session load failed")
	s.state = StateFailed
	s.emit(Event{Type: EventStateChanged, State: StateFailed, Err: err})
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.state = state
	s.emit(Event{Type: EventStateChanged, State: state})
}

func (s *Session) emitMessages() {
	s.emit(Event{Type: EventMessagesChanged, State: s.state, Messages: s.store.Messages()})
}

// emit delivers without blocking the loop; a stalled consumer loses
// events rather than wedging the session.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn().Str("event", string(ev.Type)).Msg("event buffer full, dropping")
	}
}
