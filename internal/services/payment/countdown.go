package payment

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	TickInterval     = time.Second
	WarningThreshold = 10 * time.Minute
)

// RemainingAt is the time left before expiresAt, never negative.
func RemainingAt(expiresAt, now time.Time) time.Duration {
	d := expiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Countdown reports the time left until a checkout expires. Every tick recomputes from the
// absolute deadline, so skipped or late ticks never make it drift. When the deadline passes
// it reports zero, stops itself and calls onExpire exactly once.
type Countdown struct {
	expiresAt time.Time
	now       func() time.Time
	interval  time.Duration

	onTick   func(time.Duration)
	onExpire func()

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
	remaining atomic.Int64
}

func NewCountdown(expiresAt time.Time, onTick func(time.Duration), onExpire func()) *Countdown {
	if onTick == nil {
		onTick = func(time.Duration) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Countdown{
		expiresAt: expiresAt,
		now:       time.Now,
		interval:  TickInterval,
		onTick:    onTick,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (c *Countdown) WithClock(now func() time.Time) *Countdown {
	if now != nil {
		c.now = now
	}
	return c
}

func (c *Countdown) WithInterval(d time.Duration) *Countdown {
	if d > 0 {
		c.interval = d
	}
	return c
}

// Start launches the ticking goroutine. The first tick fires immediately.
func (c *Countdown) Start() {
	c.startOnce.Do(func() { go c.run() })
}

// Stop is idempotent and does not wait for the goroutine, so callbacks may call it.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done is closed once the ticking goroutine has exited.
func (c *Countdown) Done() <-chan struct{} { return c.done }

func (c *Countdown) Remaining() time.Duration {
	return time.Duration(c.remaining.Load())
}

func (c *Countdown) run() {
	defer close(c.done)
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		if !c.tick() {
			return
		}
		select {
		case <-c.stop:
			return
		case <-t.C:
		}
	}
}

func (c *Countdown) tick() bool {
	select {
	case <-c.stop:
		return false
	default:
	}
	rem := RemainingAt(c.expiresAt, c.now())
	c.remaining.Store(int64(rem))
	c.onTick(rem)
	if rem > 0 {
		return true
	}
	c.Stop()
	c.onExpire()
	return false
}
