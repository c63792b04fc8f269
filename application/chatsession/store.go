// application/chatsession/store.go
package chatsession

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

// Message - หนึ่งรายการในลิสต์ข้อความของหน้าจอแชท
//
// A logical message has at most one visible representation at any time:
// either the optimistic entry (LocalID set, Pending true, no server ID)
// or the confirmed entry (server ID set).
type Message struct {
	LocalID     string
	ServerID    uuid.UUID
	SenderID    uuid.UUID
	SenderRole  types.Role
	MessageType string
	Content     string
	CreatedAt   time.Time
	Pending     bool
}

func messageFromDTO(m *dto.MessageDTO) Message {
	return Message{
		ServerID:    m.ID,
		SenderID:    m.SenderID,
		SenderRole:  m.SenderRole,
		MessageType: m.MessageType,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

// Store - ลิสต์ข้อความของการสนทนาเดียว พร้อม optimistic reconciliation
//
// Owned by one session at a time. All reads sort by creation timestamp,
// so out-of-order realtime delivery still displays correctly regardless
// of insert position.
type Store struct {
	mu sync.Mutex

	viewerID    uuid.UUID
	participant *Participant
	loaded      bool

	entries []Message

	// Pushes that arrived before the participant was resolved. Buffered,
	// not applied; the next LoadInitial reconciles them.
	buffered []*dto.MessageDTO

	localSeq int
}

// NewStore สร้าง store เปล่าสำหรับผู้ใช้งานที่ระบุ
func NewStore(viewerID uuid.UUID) *Store {
	return &Store{viewerID: viewerID}
}

// LoadInitial replaces the entire store with the fetched history,
// filtered to messages whose sender is the viewer or the resolved
// participant. Conversations are keyed by coarse party triples, so rows
// from unrelated relationships can share a thread; the filter keeps them
// out. When no participant is resolved yet the filter fails open
// (nothing filtered out).
//
// Any pushes buffered before resolution are reconciled afterwards
// through the normal merge policy, so they cannot duplicate history.
func (s *Store) LoadInitial(messages []*dto.MessageDTO, participant *Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participant = participant
	s.loaded = true

	s.entries = s.entries[:0]
	for _, m := range messages {
		if !s.senderAllowed(m.SenderID) {
			continue
		}
		s.entries = append(s.entries, messageFromDTO(m))
	}

	buffered := s.buffered
	s.buffered = nil
	for _, m := range buffered {
		s.mergeLocked(m)
	}
}

// AppendOptimistic inserts a pending message carrying a store-unique
// temporary identity and returns that identity immediately, before any
// network round trip.
func (s *Store) AppendOptimistic(messageType, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localSeq++
	localID := fmt.Sprintf("local-%s-%d", s.viewerID.String()[:8], s.localSeq)

	s.entries = append(s.entries, Message{
		LocalID:     localID,
		SenderID:    s.viewerID,
		MessageType: messageType,
		Content:     content,
		CreatedAt:   time.Now(),
		Pending:     true,
	})

	return localID
}

// Confirm replaces the pending entry identified by localID with the
// confirmed server record, in place, so the list does not reorder. If
// the entry is gone (the store was reloaded in the interim) it falls
// back to an idempotent append-if-absent by server ID.
func (s *Store) Confirm(localID string, serverMsg *dto.MessageDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].LocalID == localID {
			s.entries[i] = messageFromDTO(serverMsg)
			return
		}
	}

	if !s.hasServerID(serverMsg.ID) {
		s.entries = append(s.entries, messageFromDTO(serverMsg))
	}
}

// Reject removes the pending entry entirely after a failed send and
// returns its body so the caller can restore the input text.
func (s *Store) Reject(localID string) (content string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].LocalID == localID {
			content = s.entries[i].Content
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return content, true
		}
	}
	return "", false
}

// MergeRemote applies a realtime push. Returns true when the store
// changed. Policy, in order:
//
//  1. own sends are discarded (already reflected via Confirm)
//  2. senders other than the resolved participant are discarded
//  3. a server ID already present is discarded (at-least-once delivery)
//  4. otherwise the message is inserted
//
// Before the first LoadInitial the push is buffered instead of applied.
func (s *Store) MergeRemote(serverMsg *dto.MessageDTO) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.buffered = append(s.buffered, serverMsg)
		return false
	}

	return s.mergeLocked(serverMsg)
}

func (s *Store) mergeLocked(serverMsg *dto.MessageDTO) bool {
	if serverMsg.SenderID == s.viewerID {
		return false
	}
	if s.participant != nil && serverMsg.SenderID != s.participant.ID {
		return false
	}
	if s.participant == nil {
		// No resolved counterpart to filter against; refuse rather than
		// let a foreign relationship's message in.
		return false
	}
	if s.hasServerID(serverMsg.ID) {
		return false
	}

	s.entries = append(s.entries, messageFromDTO(serverMsg))
	return true
}

// Messages returns a snapshot ordered by creation timestamp ascending.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len จำนวนข้อความที่มองเห็นได้ในขณะนี้
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) hasServerID(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	for i := range s.entries {
		if s.entries[i].ServerID == id {
			return true
		}
	}
	return false
}

func (s *Store) senderAllowed(senderID uuid.UUID) bool {
	if senderID == s.viewerID {
		return true
	}
	if s.participant == nil {
		// Fail open until resolution completes.
		return true
	}
	return senderID == s.participant.ID
}
