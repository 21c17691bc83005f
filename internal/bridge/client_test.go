package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func draftBody(t *testing.T) *body.Body {
	t.Helper()
	b, err := body.NewWithMode(body.KindMemory, body.ModeWordsImages)
	if err != nil {
		t.Fatalf("NewWithMode: %v", err)
	}
	c := b.Content.(*body.CardsContent)
	c.Pairs = []body.CardPair{
		{A: body.CardSide{Text: "cat"}, B: body.CardSide{Text: "chat"}},
		{A: body.CardSide{Text: "dog"}, B: body.CardSide{Text: "chien"}},
	}
	return b
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIURLBase: srv.URL, Token: "tok"})
}

func TestLoadDraft(t *testing.T) {
	want := draftBody(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/module/draft/a1/m1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"module": map[string]interface{}{
				"id": "m1", "kind": "memory", "is_complete": true, "body": want,
			},
		})
	})

	got, err := client.LoadDraft(context.Background(), "a1", "m1")
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if !got.Equal(want) {
		t.Fatal("loaded body differs from the served one")
	}
}

func TestLoadLiveNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/module/live/a1/m1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		http.Error(w, `{"error":"module not found"}`, http.StatusNotFound)
	})
	if _, err := client.LoadLive(context.Background(), "a1", "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.LoadDraft(context.Background(), "a1", "m1")
	var le *LoadError
	if !errors.As(err, &le) || le.Status != http.StatusBadGateway {
		t.Fatalf("expected LoadError 502, got %v", err)
	}
}

func TestUnauthorizedDemandsReauth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := client.LoadDraft(context.Background(), "a1", "m1"); !errors.Is(err, ErrReauthRequired) {
		t.Fatalf("load: expected ErrReauthRequired, got %v", err)
	}
	if err := client.SaveDraft(context.Background(), "a1", "m1", draftBody(t)); !errors.Is(err, ErrReauthRequired) {
		t.Fatalf("save: expected ErrReauthRequired, got %v", err)
	}
}

func TestSaveDraft(t *testing.T) {
	want := draftBody(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/v1/module/draft/a1/m1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Body *body.Body `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Body == nil || !payload.Body.Equal(want) {
			t.Error("payload body differs")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := client.SaveDraft(context.Background(), "a1", "m1", want); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
}

func TestSaveDraftServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := client.SaveDraft(context.Background(), "a1", "m1", draftBody(t))
	var se *SaveError
	if !errors.As(err, &se) || se.Status != http.StatusInternalServerError {
		t.Fatalf("expected SaveError 500, got %v", err)
	}
}

func TestSaveDraftTimeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	t.Cleanup(func() { close(blocked); srv.Close() })

	client := NewClient(Config{APIURLBase: srv.URL, SaveTimeout: 50 * time.Millisecond})
	err := client.SaveDraft(context.Background(), "a1", "m1", draftBody(t))
	var se *SaveError
	if !errors.As(err, &se) || se.Err == nil {
		t.Fatalf("expected transport SaveError, got %v", err)
	}
}

func TestCreateModule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/module" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			ParentID string     `json:"parent_id"`
			Body     *body.Body `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.ParentID != "a1" || payload.Body == nil {
			t.Errorf("payload = %+v", payload)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "m-new"})
	})

	id, err := client.CreateModule(context.Background(), "a1", draftBody(t))
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	if id != "m-new" {
		t.Fatalf("id = %q", id)
	}
}

func TestPublishDraft(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/activity/a1/draft/publish" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := client.PublishDraft(context.Background(), "activity", "a1"); err != nil {
		t.Fatalf("PublishDraft: %v", err)
	}
}

func TestPublishDraftBlockedCapturesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "activity incomplete", "module_id": "m2"})
	})
	err := client.PublishDraft(context.Background(), "activity", "a1")
	var pe *PublishError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if pe.Status != http.StatusConflict {
		t.Fatalf("status = %d", pe.Status)
	}
	var detail struct {
		ModuleID string `json:"module_id"`
	}
	if err := json.Unmarshal([]byte(pe.Body), &detail); err != nil || detail.ModuleID != "m2" {
		t.Fatalf("captured body = %q", pe.Body)
	}
}

func TestCloneModule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/module/clone" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["source_activity"] != "a1" || payload["source_module"] != "m1" || payload["target_activity"] != "a2" {
			t.Errorf("payload = %v", payload)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "m-copy"})
	})

	id, err := client.CloneModule(context.Background(), "a1", "m1", "a2")
	if err != nil {
		t.Fatalf("CloneModule: %v", err)
	}
	if id != "m-copy" {
		t.Fatalf("id = %q", id)
	}
}
