package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"jig_platform_backend/internal/body"
)

// queueServer records every draft save it receives, optionally gating the
// first request so the test can pile entries up behind it.
type queueServer struct {
	mu       sync.Mutex
	requests []savedDraft
	gate     chan struct{}
}

type savedDraft struct {
	path  string
	pairs int
}

func (s *queueServer) handler(w http.ResponseWriter, r *http.Request) {
	if s.gate != nil {
		<-s.gate
	}
	var payload struct {
		Body *body.Body `json:"body"`
	}
	json.NewDecoder(r.Body).Decode(&payload)
	pairs := 0
	if payload.Body != nil {
		pairs = len(payload.Body.Content.(*body.CardsContent).Pairs)
	}
	s.mu.Lock()
	s.requests = append(s.requests, savedDraft{path: r.URL.Path, pairs: pairs})
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *queueServer) snapshot() []savedDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]savedDraft(nil), s.requests...)
}

func queuedBody(t *testing.T, pairs int) *body.Body {
	t.Helper()
	b, err := body.NewWithMode(body.KindMemory, body.ModeWordsImages)
	if err != nil {
		t.Fatalf("NewWithMode: %v", err)
	}
	c := b.Content.(*body.CardsContent)
	for i := 0; i < pairs; i++ {
		c.Pairs = append(c.Pairs, body.CardPair{A: body.CardSide{Text: "a"}, B: body.CardSide{Text: "b"}})
	}
	return b
}

func waitSettle(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("save never settled")
		return nil
	}
}

func TestQueuePreservesOrder(t *testing.T) {
	qs := &queueServer{}
	srv := httptest.NewServer(http.HandlerFunc(qs.handler))
	t.Cleanup(srv.Close)
	q := NewSaveQueue(NewClient(Config{APIURLBase: srv.URL}))
	t.Cleanup(q.Close)

	first := q.Enqueue("a1", "m1", queuedBody(t, 1))
	second := q.Enqueue("a1", "m2", queuedBody(t, 2))
	if err := waitSettle(t, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := waitSettle(t, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got := qs.snapshot()
	if len(got) != 2 {
		t.Fatalf("requests = %d", len(got))
	}
	if got[0].path != "/v1/module/draft/a1/m1" || got[1].path != "/v1/module/draft/a1/m2" {
		t.Fatalf("order = %+v", got)
	}
}

func TestQueueSupersedesPendingSave(t *testing.T) {
	qs := &queueServer{gate: make(chan struct{})}
	srv := httptest.NewServer(http.HandlerFunc(qs.handler))
	t.Cleanup(srv.Close)
	q := NewSaveQueue(NewClient(Config{APIURLBase: srv.URL}))
	t.Cleanup(q.Close)

	// the worker picks this one up and blocks on the gate
	blocked := q.Enqueue("a1", "m1", queuedBody(t, 1))
	time.Sleep(50 * time.Millisecond)

	// both of these coalesce into one pending entry; only the freshest
	// payload reaches the server
	stale := q.Enqueue("a1", "m2", queuedBody(t, 2))
	fresh := q.Enqueue("a1", "m2", queuedBody(t, 5))

	close(qs.gate)

	for _, ch := range []<-chan error{blocked, stale, fresh} {
		if err := waitSettle(t, ch); err != nil {
			t.Fatalf("settle: %v", err)
		}
	}

	got := qs.snapshot()
	if len(got) != 2 {
		t.Fatalf("requests = %d, want the blocked one plus one coalesced", len(got))
	}
	if got[1].pairs != 5 {
		t.Fatalf("server saw %d pairs, want the superseding payload", got[1].pairs)
	}
}

func TestQueueSettlesWithSaveError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	q := NewSaveQueue(NewClient(Config{APIURLBase: srv.URL}))
	t.Cleanup(q.Close)

	err := waitSettle(t, q.Enqueue("a1", "m1", queuedBody(t, 1)))
	var se *SaveError
	if !errors.As(err, &se) || se.Status != http.StatusInternalServerError {
		t.Fatalf("expected SaveError, got %v", err)
	}
}

func TestQueueCloseDrains(t *testing.T) {
	qs := &queueServer{}
	srv := httptest.NewServer(http.HandlerFunc(qs.handler))
	t.Cleanup(srv.Close)
	q := NewSaveQueue(NewClient(Config{APIURLBase: srv.URL}))

	result := q.Enqueue("a1", "m1", queuedBody(t, 1))
	q.Close()

	if err := waitSettle(t, result); err != nil {
		t.Fatalf("queued save lost on close: %v", err)
	}
	if len(qs.snapshot()) != 1 {
		t.Fatal("close did not drain the queue")
	}

	// the closed queue rejects new work immediately
	if err := waitSettle(t, q.Enqueue("a1", "m1", queuedBody(t, 1))); err != context.Canceled {
		t.Fatalf("enqueue after close: %v", err)
	}
}
