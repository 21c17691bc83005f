package player

import (
	"sync"

	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

// mixerChannels is the size of the concurrent clip pool.
const mixerChannels = 8

// Mixer 进程级音频混音器：活动音效与玩法说明共用一个实例。
// 浏览器自动播放未解锁前 play 调用排队，首次用户手势后统一触发。
type Mixer struct {
	mu sync.Mutex

	available bool
	queue     []*Handle
	active    map[*Handle]struct{}
	assist    *Handle

	onAvailable []func(bool)
}

// Handle owns one playing clip; dropping it (Stop) stops the clip.
type Handle struct {
	mixer   *Mixer
	Source  string
	Looped  bool
	onEnded func()
	stopped bool
	started bool
}

func NewMixer() *Mixer {
	return &Mixer{active: make(map[*Handle]struct{})}
}

// Available reports whether the audio context is unlocked.
func (m *Mixer) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// OnAvailable registers a listener for the context-available signal.
func (m *Mixer) OnAvailable(fn func(bool)) {
	m.mu.Lock()
	m.onAvailable = append(m.onAvailable, fn)
	m.mu.Unlock()
}

// SetAvailable flips the autoplay-permission signal; turning it on fires
// every queued play in order.
func (m *Mixer) SetAvailable(available bool) {
	m.mu.Lock()
	m.available = available
	var toStart []*Handle
	if available {
		toStart = m.queue
		m.queue = nil
	}
	listeners := append([]func(bool){}, m.onAvailable...)
	m.mu.Unlock()

	for _, h := range toStart {
		m.start(h)
	}
	for _, fn := range listeners {
		fn(available)
	}
}

// Play schedules a clip. The returned handle owns it.
func (m *Mixer) Play(source string, looped bool, onEnded func()) *Handle {
	h := &Handle{mixer: m, Source: source, Looped: looped, onEnded: onEnded}
	m.mu.Lock()
	if !m.available {
		m.queue = append(m.queue, h)
		m.mu.Unlock()
		return h
	}
	m.mu.Unlock()
	m.start(h)
	return h
}

// PlayAssist plays module-assist narration; only one assist clip at a time,
// a new one stops the previous.
func (m *Mixer) PlayAssist(source string, onEnded func()) *Handle {
	m.mu.Lock()
	prev := m.assist
	m.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	h := m.Play(source, false, onEnded)
	m.mu.Lock()
	m.assist = h
	m.mu.Unlock()
	return h
}

func (m *Mixer) start(h *Handle) {
	m.mu.Lock()
	if h.stopped {
		m.mu.Unlock()
		return
	}
	if len(m.active) >= mixerChannels {
		logger.Log.Debug("mixer: channel pool exhausted, dropping clip", zap.String("source", h.Source))
		m.mu.Unlock()
		return
	}
	h.started = true
	m.active[h] = struct{}{}
	m.mu.Unlock()
}

// Stop stops the clip and releases its channel. Idempotent. The ended
// callback does not fire for an explicit stop.
func (h *Handle) Stop() {
	m := h.mixer
	m.mu.Lock()
	if h.stopped {
		m.mu.Unlock()
		return
	}
	h.stopped = true
	delete(m.active, h)
	if m.assist == h {
		m.assist = nil
	}
	for i, q := range m.queue {
		if q == h {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
}

// Finish is called by the host media layer when the clip reaches its end.
// Looped clips restart instead.
func (h *Handle) Finish() {
	m := h.mixer
	m.mu.Lock()
	if h.stopped || !h.started {
		m.mu.Unlock()
		return
	}
	if h.Looped {
		m.mu.Unlock()
		return
	}
	h.stopped = true
	delete(m.active, h)
	if m.assist == h {
		m.assist = nil
	}
	ended := h.onEnded
	m.mu.Unlock()
	if ended != nil {
		ended()
	}
}

// Playing reports whether the clip currently holds a channel.
func (h *Handle) Playing() bool {
	m := h.mixer
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[h]
	return ok
}

// StopNonLooping releases every non-looping clip. Called on ending.
func (m *Mixer) StopNonLooping() {
	m.mu.Lock()
	var toStop []*Handle
	for h := range m.active {
		if !h.Looped {
			toStop = append(toStop, h)
		}
	}
	m.mu.Unlock()
	for _, h := range toStop {
		h.Stop()
	}
}

// StopAll releases every clip and clears the queue.
func (m *Mixer) StopAll() {
	m.mu.Lock()
	var toStop []*Handle
	for h := range m.active {
		toStop = append(toStop, h)
	}
	queued := m.queue
	m.queue = nil
	m.mu.Unlock()
	for _, h := range toStop {
		h.Stop()
	}
	for _, h := range queued {
		h.Stop()
	}
}

// ActiveCount returns the number of clips holding channels.
func (m *Mixer) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
