package player

import (
	"sync"
	"time"
)

// Countdown 游戏限时：可暂停/恢复，退出阶段时立即取消；取消后的计时器
// 绝不触发。
type Countdown struct {
	mu        sync.Mutex
	remaining time.Duration
	startedAt time.Time
	timer     *time.Timer
	running   bool
	done      bool
	expire    func()
}

func NewCountdown(limit time.Duration, expire func()) *Countdown {
	return &Countdown{remaining: limit, expire: expire}
}

// Start begins (or resumes) the countdown from the frozen value.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.done || c.remaining <= 0 {
		return
	}
	c.running = true
	c.startedAt = time.Now()
	c.timer = time.AfterFunc(c.remaining, c.fire)
}

// Pause freezes the remaining time.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.done {
		return
	}
	c.timer.Stop()
	c.remaining -= time.Since(c.startedAt)
	if c.remaining < 0 {
		c.remaining = 0
	}
	c.running = false
}

// Cancel stops the countdown for good.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	c.running = false
	if c.timer != nil {
		c.timer.Stop()
	}
}

// Remaining returns the frozen or live remaining duration.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		r := c.remaining - time.Since(c.startedAt)
		if r < 0 {
			return 0
		}
		return r
	}
	return c.remaining
}

func (c *Countdown) fire() {
	c.mu.Lock()
	if c.done || !c.running {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.running = false
	c.remaining = 0
	expire := c.expire
	c.mu.Unlock()
	if expire != nil {
		expire()
	}
}
