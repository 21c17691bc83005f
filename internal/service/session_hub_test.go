package service

import (
	"net/http/httptest"
	"testing"
	"time"
)

func hubClient(h *SessionHub, userID uint, room string) *SessionClient {
	return &SessionClient{
		Hub:    h,
		Send:   make(chan []byte, 8),
		UserID: userID,
		Room:   room,
	}
}

func waitParticipants(t *testing.T, h *SessionHub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Participants(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("participants = %d, want %d", h.Participants(room), want)
}

func TestSessionOriginGate(t *testing.T) {
	h := NewSessionHub(nil, []string{"https://studio.example.com"})

	cases := []struct {
		origin string
		want   bool
	}{
		{"https://studio.example.com", true},
		{"https://Studio.Example.com/", true}, // case and trailing slash normalized
		{"http://studio.example.com", false},  // scheme is part of the origin
		{"https://evil.example.com", false},
		{"", true}, // non-browser client
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/session/a1/m1", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := h.originAllowed(r); got != tc.want {
			t.Fatalf("originAllowed(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}

func TestSessionRoomKey(t *testing.T) {
	if got := SessionRoomKey("a1", "m1"); got != "a1/m1" {
		t.Fatalf("room key = %q", got)
	}
}

func TestRelaySkipsSender(t *testing.T) {
	h := NewSessionHub(nil, nil)
	go h.Run()
	defer h.Stop()

	room := SessionRoomKey("a1", "m1")
	sender := hubClient(h, 1, room)
	peer := hubClient(h, 2, room)
	h.register <- sender
	h.register <- peer
	waitParticipants(t, h, room, 2)

	payload := []byte(`{"kind":"dirty-state-changed","data":true}`)
	h.Relay(room, sender.UserID, payload)

	select {
	case got := <-peer.Send:
		if string(got) != string(payload) {
			t.Fatalf("peer received %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("peer never received the envelope")
	}
	select {
	case got := <-sender.Send:
		t.Fatalf("sender received its own envelope: %s", got)
	default:
	}
}

func TestRelayScopedToRoom(t *testing.T) {
	h := NewSessionHub(nil, nil)
	go h.Run()
	defer h.Stop()

	roomA := SessionRoomKey("a1", "m1")
	roomB := SessionRoomKey("a1", "m2")
	inA := hubClient(h, 1, roomA)
	inB := hubClient(h, 2, roomB)
	h.register <- inA
	h.register <- inB
	waitParticipants(t, h, roomA, 1)
	waitParticipants(t, h, roomB, 1)

	h.Relay(roomA, 99, []byte(`{"kind":"reload"}`))

	select {
	case <-inA.Send:
	case <-time.After(time.Second):
		t.Fatal("room member never received the envelope")
	}
	select {
	case got := <-inB.Send:
		t.Fatalf("other room received the envelope: %s", got)
	default:
	}

	// relaying into an empty room is a no-op
	h.Relay(SessionRoomKey("a9", "m9"), 99, []byte(`{"kind":"reload"}`))
}

func TestUnregisterTearsDownRoom(t *testing.T) {
	h := NewSessionHub(nil, nil)
	go h.Run()
	defer h.Stop()

	room := SessionRoomKey("a1", "m1")
	client := hubClient(h, 1, room)
	h.register <- client
	waitParticipants(t, h, room, 1)

	h.unregister <- client
	waitParticipants(t, h, room, 0)

	if _, ok := <-client.Send; ok {
		t.Fatal("send channel not closed on unregister")
	}
}
