package player

import (
	"context"
	"errors"
	"os"
	"sync"
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

// fetcherFunc adapts a function to the Fetcher interface.
type fetcherFunc func(ctx context.Context, url string) error

func (f fetcherFunc) Fetch(ctx context.Context, url string) error { return f(ctx, url) }

var okFetcher = fetcherFunc(func(context.Context, string) error { return nil })

func playableBody(t *testing.T) *body.Body {
	t.Helper()
	b, err := body.NewWithMode(body.KindMemory, body.ModeWordsImages)
	if err != nil {
		t.Fatalf("NewWithMode: %v", err)
	}
	c := b.Content.(*body.CardsContent)
	c.Pairs = []body.CardPair{
		{
			A: body.CardSide{Text: "cat", Image: &body.Image{URL: "/uploads/cat.png"}},
			B: body.CardSide{Text: "dog", Image: &body.Image{URL: "/uploads/dog.png"}},
		},
		{
			A: body.CardSide{Text: "sun"},
			B: body.CardSide{Text: "moon", Audio: &body.Audio{URL: "/uploads/moon.mp3"}},
		},
	}
	return b
}

func readyRuntime(t *testing.T, opts Options) *Runtime {
	t.Helper()
	if opts.Fetcher == nil {
		opts.Fetcher = okFetcher
	}
	r := NewRuntime(opts)
	if err := r.IframeReady(); err != nil {
		t.Fatalf("IframeReady: %v", err)
	}
	return r
}

func TestLifecycleHappyPath(t *testing.T) {
	r := readyRuntime(t, Options{})
	if err := r.LoadBody(context.Background(), playableBody(t)); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}
	if got := r.Phase().Kind; got != PhasePlaying {
		t.Fatalf("phase = %s, want playing", got)
	}

	res := r.PreloadResult()
	if res == nil {
		t.Fatal("no preload result")
	}
	for _, url := range []string{"/uploads/cat.png", "/uploads/dog.png", "/uploads/moon.mp3"} {
		if res.Resolved[url] != url {
			t.Fatalf("resolved[%s] = %q", url, res.Resolved[url])
		}
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestPhaseCallbacksDeliveredInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []PhaseKind
	r := NewRuntime(Options{
		Fetcher: okFetcher,
		OnPhase: func(p Phase) {
			mu.Lock()
			seen = append(seen, p.Kind)
			mu.Unlock()
		},
	})

	if err := r.IframeReady(); err != nil {
		t.Fatalf("IframeReady: %v", err)
	}
	if err := r.LoadBody(context.Background(), playableBody(t)); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}
	r.Finish(EndReason{Kind: EndManual})

	want := []PhaseKind{PhaseWaitingIframe, PhasePreload, PhasePlayingModuleAssist, PhasePlaying, PhaseEnding}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n >= len(want) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("observed %d transitions, want %d", n, len(want))
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v", seen)
	}
	for i, kind := range want {
		if seen[i] != kind {
			t.Fatalf("transition[%d] = %s, want %s (all: %v)", i, seen[i], kind, seen)
		}
	}
}

func TestLoadBodyBeforeIframeReady(t *testing.T) {
	r := NewRuntime(Options{Fetcher: okFetcher})
	if err := r.LoadBody(context.Background(), playableBody(t)); err == nil {
		t.Fatal("body accepted before the iframe handshake")
	}
}

func TestEmptyBodyParks(t *testing.T) {
	r := readyRuntime(t, Options{})
	b, err := body.New(body.KindMemory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.LoadBody(context.Background(), b); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}
	if got := r.Phase().Kind; got != PhaseEmpty {
		t.Fatalf("phase = %s, want empty", got)
	}
}

func TestPreloadMissingNeverBlocksPlay(t *testing.T) {
	failing := fetcherFunc(func(_ context.Context, url string) error {
		if url == "/uploads/cat.png" {
			return errors.New("404")
		}
		return nil
	})
	r := readyRuntime(t, Options{Fetcher: failing})
	if err := r.LoadBody(context.Background(), playableBody(t)); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}
	if got := r.Phase().Kind; got != PhasePlaying {
		t.Fatalf("phase = %s, want playing despite missing asset", got)
	}

	res := r.PreloadResult()
	if res.Resolved["/uploads/cat.png"] != PlaceholderURL {
		t.Fatalf("missing asset resolved to %q", res.Resolved["/uploads/cat.png"])
	}
	if res.Resolved["/uploads/dog.png"] != "/uploads/dog.png" {
		t.Fatal("healthy asset was replaced")
	}
	if len(res.Warnings) != 1 || res.Warnings[0].URL != "/uploads/cat.png" {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestAssistPhaseAndReplay(t *testing.T) {
	mixer := NewMixer()
	mixer.SetAvailable(true)
	r := readyRuntime(t, Options{Mixer: mixer})

	b := playableBody(t)
	b.Instructions().Audio = &body.Audio{URL: "/uploads/intro.mp3"}

	if err := r.LoadBody(context.Background(), b); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}
	if got := r.Phase(); got.Kind != PhasePlayingModuleAssist || got.Assist != AssistStarting {
		t.Fatalf("phase = %+v, want starting assist", got)
	}
	if mixer.ActiveCount() != 1 {
		t.Fatalf("assist clip not playing, active = %d", mixer.ActiveCount())
	}

	r.AssistDone()
	if got := r.Phase().Kind; got != PhasePlaying {
		t.Fatalf("phase = %s after assist", got)
	}

	// the one two-way transition: playing → assist → playing
	if err := r.ReplayAssist(); err != nil {
		t.Fatalf("ReplayAssist: %v", err)
	}
	if got := r.Phase().Kind; got != PhasePlayingModuleAssist {
		t.Fatalf("phase = %s after replay", got)
	}
	r.AssistDone()
	if err := r.ReplayAssist(); r.Phase().Kind != PhasePlayingModuleAssist || err != nil {
		t.Fatalf("second replay failed: %v", err)
	}
}

func TestFinishExactlyOnce(t *testing.T) {
	var mu sync.Mutex
	var reasons []EndReason
	r := readyRuntime(t, Options{
		OnEnding: func(reason EndReason) {
			mu.Lock()
			reasons = append(reasons, reason)
			mu.Unlock()
		},
	})
	if err := r.LoadBody(context.Background(), playableBody(t)); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}

	r.Finish(EndReason{Kind: EndScoreReached, Score: 10})
	r.Finish(EndReason{Kind: EndManual})

	mu.Lock()
	defer mu.Unlock()
	if len(reasons) != 1 {
		t.Fatalf("OnEnding fired %d times", len(reasons))
	}
	if reasons[0].Kind != EndScoreReached || reasons[0].Score != 10 {
		t.Fatalf("reason = %+v", reasons[0])
	}
	p := r.Phase()
	if p.Kind != PhaseEnding || p.Reason == nil || p.Reason.Kind != EndScoreReached {
		t.Fatalf("phase = %+v", p)
	}
}

func TestTimeLimitFinishesWithTimeUp(t *testing.T) {
	done := make(chan EndReason, 1)
	r := readyRuntime(t, Options{
		OnEnding: func(reason EndReason) { done <- reason },
	})

	b := playableBody(t)
	limit := 1
	b.PlaySettings().TimeLimitSeconds = &limit

	if err := r.LoadBody(context.Background(), b); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}

	select {
	case reason := <-done:
		if reason.Kind != EndTimeUp {
			t.Fatalf("reason = %+v, want time-up", reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("time limit never expired")
	}
	if got := r.Phase().Kind; got != PhaseEnding {
		t.Fatalf("phase = %s after time-up", got)
	}
}

func TestReloadResetsToInit(t *testing.T) {
	r := readyRuntime(t, Options{})
	if err := r.LoadBody(context.Background(), playableBody(t)); err != nil {
		t.Fatalf("LoadBody: %v", err)
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := r.Phase().Kind; got != PhaseInit {
		t.Fatalf("phase = %s after reload", got)
	}
	if r.PreloadResult() != nil {
		t.Fatal("preload result survived reload")
	}

	// the full handshake works again
	if err := r.IframeReady(); err != nil {
		t.Fatalf("IframeReady after reload: %v", err)
	}
	if err := r.LoadBody(context.Background(), playableBody(t)); err != nil {
		t.Fatalf("LoadBody after reload: %v", err)
	}
	r.Finish(EndReason{Kind: EndNext})
	if err := r.Reload(); err == nil {
		t.Fatal("reload allowed after ending")
	}
}
