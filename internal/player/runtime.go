// Package player drives a loaded body through its presentation lifecycle
// inside the embedded frame: preload, module assist, play, ending.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

type PhaseKind string

const (
	PhaseInit                PhaseKind = "init"
	PhaseWaitingIframe       PhaseKind = "waiting-iframe"
	PhasePreload             PhaseKind = "preload"
	PhasePlayingModuleAssist PhaseKind = "playing-module-assist"
	PhasePlaying             PhaseKind = "playing"
	PhaseEnding              PhaseKind = "ending"
	PhaseEmpty               PhaseKind = "empty"
)

type AssistKind string

const (
	AssistStarting AssistKind = "starting"
	AssistFeedback AssistKind = "feedback"
)

type EndReasonKind string

const (
	EndNext         EndReasonKind = "next"
	EndReplay       EndReasonKind = "replay"
	EndTimeUp       EndReasonKind = "time-up"
	EndScoreReached EndReasonKind = "score-reached"
	EndManual       EndReasonKind = "manual"
)

type EndReason struct {
	Kind  EndReasonKind `json:"kind"`
	Score int           `json:"score,omitempty"`
}

// Phase 一个已加载活动同一时刻只有一个阶段；除 Playing↔assist 外单向。
type Phase struct {
	Kind   PhaseKind  `json:"kind"`
	Assist AssistKind `json:"assist,omitempty"`
	Reason *EndReason `json:"reason,omitempty"`
}

type Options struct {
	Fetcher        Fetcher
	Mixer          *Mixer
	PreloadTimeout time.Duration
	// OnPhase fires on every transition.
	OnPhase func(Phase)
	// OnEnding signals the outer player, which consumes the reason.
	OnEnding func(EndReason)
}

// Runtime 播放生命周期状态机
type Runtime struct {
	mu sync.Mutex

	phase   Phase
	b       *body.Body
	mixer   *Mixer
	fetcher Fetcher
	timeout time.Duration

	countdown *Countdown
	preload   *PreloadResult
	assist    *Handle
	paused    bool

	onPhase  func(Phase)
	onEnding func(EndReason)

	phaseMu    sync.Mutex
	phaseQueue []Phase
	phaseKick  chan struct{}
}

func NewRuntime(opts Options) *Runtime {
	mixer := opts.Mixer
	if mixer == nil {
		mixer = NewMixer()
	}
	r := &Runtime{
		phase:    Phase{Kind: PhaseInit},
		mixer:    mixer,
		fetcher:  opts.Fetcher,
		timeout:  opts.PreloadTimeout,
		onPhase:  opts.OnPhase,
		onEnding: opts.OnEnding,
	}
	if r.onPhase != nil {
		r.phaseKick = make(chan struct{}, 1)
		go r.dispatchPhases()
	}
	return r
}

// Phase returns the current lifecycle phase.
func (r *Runtime) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Mixer exposes the shared audio mixer.
func (r *Runtime) Mixer() *Mixer { return r.mixer }

// PreloadResult returns the resolved URL map once Preload finished.
func (r *Runtime) PreloadResult() *PreloadResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preload
}

func (r *Runtime) setPhase(p Phase) {
	r.phase = p
	if r.onPhase != nil {
		// transitions queue up and one goroutine delivers them in order,
		// outside the runtime lock
		r.phaseMu.Lock()
		r.phaseQueue = append(r.phaseQueue, p)
		r.phaseMu.Unlock()
		select {
		case r.phaseKick <- struct{}{}:
		default:
		}
	}
	logger.Log.Debug("player: phase", zap.String("phase", string(p.Kind)))
}

func (r *Runtime) dispatchPhases() {
	for range r.phaseKick {
		for {
			r.phaseMu.Lock()
			if len(r.phaseQueue) == 0 {
				r.phaseMu.Unlock()
				break
			}
			p := r.phaseQueue[0]
			r.phaseQueue = r.phaseQueue[1:]
			r.phaseMu.Unlock()
			r.onPhase(p)
		}
	}
}

// IframeReady moves Init → WaitingIframe once the frame handshake landed.
func (r *Runtime) IframeReady() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Kind != PhaseInit {
		return fmt.Errorf("iframe ready in phase %s", r.phase.Kind)
	}
	r.setPhase(Phase{Kind: PhaseWaitingIframe})
	return nil
}

// LoadBody receives the body from the host and starts preloading. An empty
// body (mode not chosen) parks the player in the Empty phase.
func (r *Runtime) LoadBody(ctx context.Context, b *body.Body) error {
	r.mu.Lock()
	if r.phase.Kind != PhaseWaitingIframe {
		r.mu.Unlock()
		return fmt.Errorf("body received in phase %s", r.phase.Kind)
	}
	if b == nil || b.RequiresChooseMode() {
		r.setPhase(Phase{Kind: PhaseEmpty})
		r.mu.Unlock()
		return nil
	}
	r.b = b
	r.setPhase(Phase{Kind: PhasePreload})
	urls := b.Preloads()
	fetcher := r.fetcher
	timeout := r.timeout
	r.mu.Unlock()

	// preload never blocks play: every URL resolves success or
	// known-missing within the per-asset timeout
	result := Preload(ctx, fetcher, urls, timeout)

	r.mu.Lock()
	if r.phase.Kind != PhasePreload {
		// reloaded while fetching
		r.mu.Unlock()
		return nil
	}
	r.preload = result
	r.startAssistLocked(AssistStarting)
	r.mu.Unlock()
	return nil
}

// startAssistLocked enters PlayingModuleAssist; with no assist audio the
// phase completes immediately into Playing.
func (r *Runtime) startAssistLocked(kind AssistKind) {
	r.setPhase(Phase{Kind: PhasePlayingModuleAssist, Assist: kind})
	assist := r.b.Instructions()
	if assist == nil || assist.Audio == nil || assist.Audio.URL == "" {
		r.enterPlayingLocked()
		return
	}
	r.assist = r.mixer.PlayAssist(assist.Audio.URL, func() {
		r.AssistDone()
	})
}

// AssistDone moves PlayingModuleAssist → Playing.
func (r *Runtime) AssistDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Kind != PhasePlayingModuleAssist {
		return
	}
	r.enterPlayingLocked()
}

// ReplayAssist re-enters the assist phase from Playing; the only two-way
// transition in the machine.
func (r *Runtime) ReplayAssist() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Kind != PhasePlaying {
		return fmt.Errorf("replay assist in phase %s", r.phase.Kind)
	}
	r.startAssistLocked(AssistStarting)
	return nil
}

func (r *Runtime) enterPlayingLocked() {
	r.setPhase(Phase{Kind: PhasePlaying})
	if r.countdown == nil {
		if settings := r.b.PlaySettings(); settings != nil && settings.TimeLimitSeconds != nil {
			limit := time.Duration(*settings.TimeLimitSeconds) * time.Second
			r.countdown = NewCountdown(limit, func() {
				r.Finish(EndReason{Kind: EndTimeUp})
			})
		}
	}
	if r.countdown != nil && !r.paused {
		r.countdown.Start()
	}
}

// Finish moves Playing → Ending exactly once; duplicate signals are
// ignored. All non-looping clips stop.
func (r *Runtime) Finish(reason EndReason) {
	r.mu.Lock()
	if r.phase.Kind != PhasePlaying && r.phase.Kind != PhasePlayingModuleAssist {
		r.mu.Unlock()
		return
	}
	if r.countdown != nil {
		r.countdown.Cancel()
	}
	re := reason
	r.setPhase(Phase{Kind: PhaseEnding, Reason: &re})
	ending := r.onEnding
	r.mu.Unlock()

	r.mixer.StopNonLooping()
	if ending != nil {
		ending(reason)
	}
}

// Pause freezes the countdown and assist narration (host signal).
func (r *Runtime) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	if r.countdown != nil {
		r.countdown.Pause()
	}
}

// Resume continues from the frozen countdown value.
func (r *Runtime) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	if r.countdown != nil && r.phase.Kind == PhasePlaying {
		r.countdown.Start()
	}
}

// Reload resets any non-Ending phase back to Init.
func (r *Runtime) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Kind == PhaseEnding {
		return fmt.Errorf("reload after ending")
	}
	if r.countdown != nil {
		r.countdown.Cancel()
		r.countdown = nil
	}
	r.b = nil
	r.preload = nil
	r.paused = false
	r.mixer.StopAll()
	r.setPhase(Phase{Kind: PhaseInit})
	return nil
}
