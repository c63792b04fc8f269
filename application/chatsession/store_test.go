// application/chatsession/store_test.go
package chatsession

import (
	"testing"
	"time"

	"github.com/RadowanAhmed/mataim-chat-api/domain/dto"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

var baseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func serverMsg(id, sender uuid.UUID, role types.Role, content string, offset time.Duration) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:             id,
		ConversationID: uuid.New(),
		SenderID:       sender,
		SenderRole:     role,
		MessageType:    "text",
		Content:        content,
		CreatedAt:      baseTime.Add(offset),
	}
}

func driverParticipant(id uuid.UUID) *Participant {
	return &Participant{ID: id, Role: types.RoleDriver, DisplayName: "Driver"}
}

func TestMergeRemote_Idempotent(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial(nil, driverParticipant(other))

	msgID := uuid.New()
	msg := serverMsg(msgID, other, types.RoleDriver, "hello", 0)

	if !store.MergeRemote(msg) {
		t.Fatal("first merge should apply")
	}
	for i := 0; i < 5; i++ {
		if store.MergeRemote(msg) {
			t.Fatal("repeated merge of same server ID should be a no-op")
		}
	}

	count := 0
	for _, m := range store.Messages() {
		if m.ServerID == msgID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("store has %d entries for message, want 1", count)
	}
}

func TestMergeRemote_OwnSenderExcluded(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial(nil, driverParticipant(other))

	localID := store.AppendOptimistic("text", "hi")
	msgID := uuid.New()
	own := serverMsg(msgID, viewer, types.RoleCustomer, "hi", time.Second)

	// Realtime push for the viewer's own send arrives before the insert
	// response.
	if store.MergeRemote(own) {
		t.Fatal("own-sender push must be discarded")
	}
	store.Confirm(localID, own)

	if store.Len() != 1 {
		t.Errorf("store has %d messages, want 1", store.Len())
	}
}

func TestMergeRemote_ForeignSenderIgnored(t *testing.T) {
	viewer := uuid.New()
	participant := uuid.New()
	stranger := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial(nil, driverParticipant(participant))

	if store.MergeRemote(serverMsg(uuid.New(), stranger, types.RoleCustomer, "wrong thread", 0)) {
		t.Fatal("push from a sender outside the relationship must not change the store")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d messages, want 0", store.Len())
	}
}

func TestConfirm_ReplacesInPlace(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial([]*dto.MessageDTO{
		serverMsg(uuid.New(), other, types.RoleDriver, "first", 0),
	}, driverParticipant(other))

	localID := store.AppendOptimistic("text", "hello")
	confirmedID := uuid.New()
	store.Confirm(localID, serverMsg(confirmedID, viewer, types.RoleCustomer, "hello", time.Minute))

	msgs := store.Messages()
	if len(msgs) != 2 {
		t.Fatalf("store has %d messages, want 2", len(msgs))
	}
	got := msgs[1]
	if got.ServerID != confirmedID {
		t.Errorf("confirmed ServerID = %s, want %s", got.ServerID, confirmedID)
	}
	if got.Pending {
		t.Error("confirmed message still marked pending")
	}
	if got.LocalID != "" {
		t.Errorf("confirmed message kept local ID %q", got.LocalID)
	}
	if got.Content != "hello" {
		t.Errorf("content = %q, want %q", got.Content, "hello")
	}
}

func TestConfirm_AfterReload_AppendsIfAbsent(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial(nil, driverParticipant(other))

	localID := store.AppendOptimistic("text", "hi")

	// The screen refocused and reloaded while the insert was in flight;
	// the pending entry is gone.
	store.LoadInitial(nil, driverParticipant(other))

	confirmed := serverMsg(uuid.New(), viewer, types.RoleCustomer, "hi", 0)
	store.Confirm(localID, confirmed)
	store.Confirm(localID, confirmed) // must stay idempotent

	if store.Len() != 1 {
		t.Errorf("store has %d messages, want 1", store.Len())
	}
}

func TestReject_RemovesPendingEntry(t *testing.T) {
	viewer := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial(nil, driverParticipant(uuid.New()))

	localID := store.AppendOptimistic("text", "never sent")
	content, ok := store.Reject(localID)
	if !ok {
		t.Fatal("reject should find the pending entry")
	}
	if content != "never sent" {
		t.Errorf("restored content = %q, want %q", content, "never sent")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d messages, want 0", store.Len())
	}

	if _, ok := store.Reject(localID); ok {
		t.Error("second reject should report missing entry")
	}
}

func TestMessages_TimestampOrdering(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial([]*dto.MessageDTO{
		serverMsg(uuid.New(), other, types.RoleDriver, "b", 2*time.Minute),
	}, driverParticipant(other))

	// Out-of-order realtime delivery: an older message arrives after a
	// newer one is already present.
	store.MergeRemote(serverMsg(uuid.New(), other, types.RoleDriver, "a", time.Minute))
	store.MergeRemote(serverMsg(uuid.New(), other, types.RoleDriver, "c", 3*time.Minute))

	msgs := store.Messages()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("messages out of order at %d: %v after %v", i, msgs[i].CreatedAt, msgs[i-1].CreatedAt)
		}
	}
	if msgs[0].Content != "a" || msgs[1].Content != "b" || msgs[2].Content != "c" {
		t.Errorf("order = %q %q %q, want a b c", msgs[0].Content, msgs[1].Content, msgs[2].Content)
	}
}

func TestLoadInitial_FiltersToRelationship(t *testing.T) {
	// Viewer is driver D1, counterpart customer C1; a message from the
	// unrelated customer C2 shares the conversation row.
	d1 := uuid.New()
	c1 := uuid.New()
	c2 := uuid.New()

	store := NewStore(d1)
	store.LoadInitial([]*dto.MessageDTO{
		serverMsg(uuid.New(), c1, types.RoleCustomer, "from c1", 0),
		serverMsg(uuid.New(), d1, types.RoleDriver, "from d1", time.Minute),
		serverMsg(uuid.New(), c2, types.RoleCustomer, "from c2", 2*time.Minute),
	}, &Participant{ID: c1, Role: types.RoleCustomer})

	msgs := store.Messages()
	if len(msgs) != 2 {
		t.Fatalf("store has %d messages, want 2", len(msgs))
	}
	for _, m := range msgs {
		if m.SenderID == c2 {
			t.Error("message from unrelated sender survived the load filter")
		}
	}
}

func TestLoadInitial_NoParticipantFailsOpen(t *testing.T) {
	viewer := uuid.New()
	store := NewStore(viewer)
	store.LoadInitial([]*dto.MessageDTO{
		serverMsg(uuid.New(), uuid.New(), types.RoleCustomer, "anyone", 0),
	}, nil)

	if store.Len() != 1 {
		t.Errorf("store has %d messages, want 1 (no filtering before resolution)", store.Len())
	}
}

func TestHappyPathScenario(t *testing.T) {
	d1 := uuid.New()
	c1 := uuid.New()
	store := NewStore(d1)
	store.LoadInitial([]*dto.MessageDTO{
		serverMsg(uuid.New(), c1, types.RoleCustomer, "where are you?", 0),
	}, &Participant{ID: c1, Role: types.RoleCustomer})

	localID := store.AppendOptimistic("text", "hello")
	m42 := serverMsg(uuid.New(), d1, types.RoleDriver, "hello", time.Minute)
	store.Confirm(localID, m42)

	// Realtime echo of the driver's own send.
	if store.MergeRemote(m42) {
		t.Error("echo of own confirmed message should be a no-op")
	}
	if store.Len() != 2 {
		t.Errorf("store has %d messages, want 2", store.Len())
	}
}

func TestMergeRemote_BufferedBeforeLoad(t *testing.T) {
	viewer := uuid.New()
	participant := uuid.New()
	store := NewStore(viewer)

	early := serverMsg(uuid.New(), participant, types.RoleDriver, "early push", time.Minute)
	if store.MergeRemote(early) {
		t.Fatal("push before resolution must not be applied")
	}
	if store.Len() != 0 {
		t.Fatal("buffered push leaked into entries")
	}

	// History already contains the pushed row; reconciliation must not
	// duplicate it.
	store.LoadInitial([]*dto.MessageDTO{early}, driverParticipant(participant))
	if store.Len() != 1 {
		t.Errorf("store has %d messages, want 1", store.Len())
	}

	// A buffered push missing from history is applied on load.
	store2 := NewStore(viewer)
	other := serverMsg(uuid.New(), participant, types.RoleDriver, "only via push", time.Minute)
	store2.MergeRemote(other)
	store2.LoadInitial(nil, driverParticipant(participant))
	if store2.Len() != 1 {
		t.Errorf("store2 has %d messages, want 1", store2.Len())
	}
}

func TestAppendOptimistic_UniqueLocalIDs(t *testing.T) {
	store := NewStore(uuid.New())
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.AppendOptimistic("text", "x")
		if seen[id] {
			t.Fatalf("duplicate local ID %q", id)
		}
		seen[id] = true
	}
}
