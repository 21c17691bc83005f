package player

import (
	"testing"
	"time"
)

func TestPlayQueuesUntilAvailable(t *testing.T) {
	m := NewMixer()
	var ended bool
	h := m.Play("/a.mp3", false, func() { ended = true })

	if h.Playing() {
		t.Fatal("clip playing before the audio context unlocked")
	}
	if m.ActiveCount() != 0 {
		t.Fatalf("active = %d", m.ActiveCount())
	}

	m.SetAvailable(true)
	if !h.Playing() {
		t.Fatal("queued clip did not start on unlock")
	}
	if ended {
		t.Fatal("ended fired on start")
	}
}

func TestStoppedClipNeverStarts(t *testing.T) {
	m := NewMixer()
	h := m.Play("/a.mp3", false, nil)
	h.Stop()
	m.SetAvailable(true)
	if h.Playing() {
		t.Fatal("stopped clip started on unlock")
	}
}

func TestStopIdempotentAndSilent(t *testing.T) {
	m := NewMixer()
	m.SetAvailable(true)
	var ended int
	h := m.Play("/a.mp3", false, func() { ended++ })

	h.Stop()
	h.Stop()
	if m.ActiveCount() != 0 {
		t.Fatalf("active = %d after stop", m.ActiveCount())
	}
	if ended != 0 {
		t.Fatal("explicit stop fired the ended callback")
	}
	// finishing a stopped clip is a no-op too
	h.Finish()
	if ended != 0 {
		t.Fatal("ended fired after stop")
	}
}

func TestFinishFiresEndedOnce(t *testing.T) {
	m := NewMixer()
	m.SetAvailable(true)
	var ended int
	h := m.Play("/a.mp3", false, func() { ended++ })

	h.Finish()
	h.Finish()
	if ended != 1 {
		t.Fatalf("ended fired %d times", ended)
	}
	if h.Playing() {
		t.Fatal("finished clip still holds a channel")
	}
}

func TestLoopedClipRestartsOnFinish(t *testing.T) {
	m := NewMixer()
	m.SetAvailable(true)
	var ended int
	h := m.Play("/loop.mp3", true, func() { ended++ })

	h.Finish()
	if ended != 0 {
		t.Fatal("looped clip ended")
	}
	if !h.Playing() {
		t.Fatal("looped clip released its channel on finish")
	}
}

func TestPlayAssistReplacesPrevious(t *testing.T) {
	m := NewMixer()
	m.SetAvailable(true)
	first := m.PlayAssist("/one.mp3", nil)
	second := m.PlayAssist("/two.mp3", nil)

	if first.Playing() {
		t.Fatal("previous assist clip still playing")
	}
	if !second.Playing() {
		t.Fatal("new assist clip not playing")
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("active = %d", m.ActiveCount())
	}
}

func TestChannelPoolCap(t *testing.T) {
	m := NewMixer()
	m.SetAvailable(true)
	for i := 0; i < mixerChannels; i++ {
		m.Play("/bg.mp3", true, nil)
	}
	overflow := m.Play("/one-too-many.mp3", false, nil)

	if m.ActiveCount() != mixerChannels {
		t.Fatalf("active = %d, want %d", m.ActiveCount(), mixerChannels)
	}
	if overflow.Playing() {
		t.Fatal("overflow clip got a channel")
	}
}

func TestStopNonLoopingKeepsLoops(t *testing.T) {
	m := NewMixer()
	m.SetAvailable(true)
	bg := m.Play("/bg.mp3", true, nil)
	fx := m.Play("/fx.mp3", false, nil)

	m.StopNonLooping()
	if !bg.Playing() {
		t.Fatal("looping clip stopped")
	}
	if fx.Playing() {
		t.Fatal("one-shot clip survived")
	}
}

func TestStopAllClearsQueueToo(t *testing.T) {
	m := NewMixer()
	queued := m.Play("/q.mp3", false, nil)
	m.StopAll()

	// the cleared queue entry must not start on unlock
	m.SetAvailable(true)
	if queued.Playing() {
		t.Fatal("cleared queue entry resurrected")
	}

	active := m.Play("/a.mp3", true, nil)
	m.StopAll()
	if m.ActiveCount() != 0 {
		t.Fatalf("active = %d", m.ActiveCount())
	}
	if active.Playing() {
		t.Fatal("clip survived StopAll")
	}
}

func TestOnAvailableListeners(t *testing.T) {
	m := NewMixer()
	var got []bool
	m.OnAvailable(func(v bool) { got = append(got, v) })
	m.SetAvailable(true)
	m.SetAvailable(false)
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("listener saw %v", got)
	}
}

func TestCountdownPauseResume(t *testing.T) {
	fired := make(chan struct{}, 1)
	c := NewCountdown(80*time.Millisecond, func() { fired <- struct{}{} })

	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Pause()
	remaining := c.Remaining()
	if remaining <= 0 || remaining >= 80*time.Millisecond {
		t.Fatalf("remaining = %v after pause", remaining)
	}

	// frozen: nothing fires while paused
	select {
	case <-fired:
		t.Fatal("countdown fired while paused")
	case <-time.After(120 * time.Millisecond):
	}

	c.Start()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never fired after resume")
	}
	if c.Remaining() != 0 {
		t.Fatalf("remaining = %v after expiry", c.Remaining())
	}
}

func TestCountdownCancelIsFinal(t *testing.T) {
	fired := make(chan struct{}, 1)
	c := NewCountdown(20*time.Millisecond, func() { fired <- struct{}{} })
	c.Start()
	c.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled countdown fired")
	case <-time.After(80 * time.Millisecond):
	}

	// restart after cancel stays dead
	c.Start()
	select {
	case <-fired:
		t.Fatal("cancelled countdown restarted")
	case <-time.After(60 * time.Millisecond):
	}
}
