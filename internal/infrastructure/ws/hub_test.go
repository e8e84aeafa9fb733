package ws

import (
	"testing"
	"time"
)

// Registration and removal go through the hub's channels exactly as the
// presence handler does it; the pumps never run, so a nil conn is safe.
func registerClient(h *Hub, id, roomID, email string) *Client {
	cl := NewClient(nil, id, roomID, email)
	h.Register() <- cl
	return cl
}

func waitEvent(t *testing.T, cl *Client) *Event {
	t.Helper()

	select {
	case ev, ok := <-cl.Send:
		if !ok {
			t.Fatal("send channel closed while waiting for event")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHubPresenceLifecycle(t *testing.T) {
	t.Parallel()

	h := NewHub()
	go h.Run()

	alice := registerClient(h, "c1", "abc123", "alice@x.com")

	if ev := waitEvent(t, alice); ev.Type != MemberJoinedEvent {
		t.Fatalf("expected %s, got %s", MemberJoinedEvent, ev.Type)
	}
	if ev := waitEvent(t, alice); ev.Type != MemberListEvent {
		t.Fatalf("expected %s, got %s", MemberListEvent, ev.Type)
	}

	bob := registerClient(h, "c2", "abc123", "bob@y.com")

	// Alice sees bob arrive.
	ev := waitEvent(t, alice)
	if ev.Type != MemberJoinedEvent {
		t.Fatalf("expected %s, got %s", MemberJoinedEvent, ev.Type)
	}
	member, ok := ev.Data.(MemberPayload)
	if !ok || member.Email != "bob@y.com" {
		t.Errorf("unexpected joined payload: %+v", ev.Data)
	}

	// Bob gets his own joined echo plus the full member list.
	waitEvent(t, bob)
	ev = waitEvent(t, bob)
	if ev.Type != MemberListEvent {
		t.Fatalf("expected %s, got %s", MemberListEvent, ev.Type)
	}
	list, ok := ev.Data.(MemberListPayload)
	if !ok || len(list.Members) != 2 {
		t.Errorf("unexpected member list: %+v", ev.Data)
	}

	if got := len(h.Members("abc123")); got != 2 {
		t.Errorf("expected 2 members, got %d", got)
	}

	h.Unregister() <- bob

	ev = waitEvent(t, alice)
	if ev.Type != MemberLeftEvent {
		t.Fatalf("expected %s, got %s", MemberLeftEvent, ev.Type)
	}
	if got := len(h.Members("abc123")); got != 1 {
		t.Errorf("expected 1 member after leave, got %d", got)
	}

	// The removed client's channel is closed so its write pump exits.
	select {
	case _, ok := <-bob.Send:
		if ok {
			// Drain any event that raced the close.
			if _, ok := <-bob.Send; ok {
				t.Error("send channel still open after unregister")
			}
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed after unregister")
	}
}

func TestHubRoomsAreIsolated(t *testing.T) {
	t.Parallel()

	h := NewHub()
	go h.Run()

	alice := registerClient(h, "c1", "abc123", "alice@x.com")
	waitEvent(t, alice) // own joined
	waitEvent(t, alice) // member list

	bob := registerClient(h, "c2", "xyz789", "bob@y.com")
	waitEvent(t, bob) // own joined
	waitEvent(t, bob) // member list

	if got := len(h.Members("abc123")); got != 1 {
		t.Errorf("expected 1 member in abc123, got %d", got)
	}
	if got := len(h.Members("xyz789")); got != 1 {
		t.Errorf("expected 1 member in xyz789, got %d", got)
	}

	// Nothing from the other room leaks to alice.
	select {
	case ev := <-alice.Send:
		t.Errorf("cross-room event leaked: %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}
