package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

type Validator interface {
	ValidateCheckout(ctx context.Context, paymentID string) (models.ValidateResult, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type watch struct {
	paymentID string
	fn        func(models.CheckoutStatus)
	nextAt    time.Time
	failCount int32
	busy      bool
}

// Poller validates open checkouts until each reaches a terminal status, then reports it
// once to the watcher's callback and forgets the checkout.
type Poller struct {
	v  Validator
	rl RateLimiter

	planner *Planner
	now     func() time.Time

	pollInterval       time.Duration
	concurrency        int
	rateLimitPerMinute int64

	mu      sync.Mutex
	watches map[string]*watch

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalChecked        atomic.Int64
	totalResolved       atomic.Int64
	totalErrors         atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(v Validator, rl RateLimiter) *Poller {
	return &Poller{
		v:                 v,
		rl:                rl,
		planner:           DefaultPlanner(),
		now:               time.Now,
		pollInterval:      time.Second,
		concurrency:       10,
		watches:           make(map[string]*watch),
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func DefaultPlanner() *Planner {
	return NewPlanner(DefaultPlannerConfig(), nil)
}

func (p *Poller) WithSettings(pollInterval time.Duration, concurrency int, rlPerMin int64) *Poller {
	if pollInterval > 0 {
		p.pollInterval = pollInterval
	}
	if concurrency > 0 {
		p.concurrency = concurrency
	}
	if rlPerMin > 0 {
		p.rateLimitPerMinute = rlPerMin
	}
	return p
}

func (p *Poller) WithPlanner(cfg PlannerConfig) *Poller {
	p.planner = NewPlanner(cfg, nil)
	return p
}

func (p *Poller) WithClock(now func() time.Time) *Poller {
	if now != nil {
		p.now = now
	}
	return p
}

// Watch schedules paymentID for an immediate check. Watching an already watched checkout
// replaces its callback.
func (p *Poller) Watch(paymentID string, fn func(models.CheckoutStatus)) {
	p.mu.Lock()
	if w, ok := p.watches[paymentID]; ok {
		w.fn = fn
	} else {
		p.watches[paymentID] = &watch{paymentID: paymentID, fn: fn, nextAt: p.now()}
	}
	p.mu.Unlock()
	p.Trigger()
}

func (p *Poller) Unwatch(paymentID string) {
	p.mu.Lock()
	delete(p.watches, paymentID)
	p.mu.Unlock()
}

func (p *Poller) Watching() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watches)
}

// Trigger forces an immediate poll cycle (best-effort, non-blocking).
func (p *Poller) Trigger() {
	p.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	Watching      int        `json:"watching"`
	TotalChecked  int64      `json:"totalChecked"`
	TotalResolved int64      `json:"totalResolved"`
	TotalErrors   int64      `json:"totalErrors"`
	InFlight      int64      `json:"inFlight"`
	LastError     string     `json:"lastError,omitempty"`
}

func (p *Poller) Stats() Stats {
	st := Stats{
		StartedAt:     time.Unix(0, p.startedAtUnixNano).UTC(),
		Watching:      p.Watching(),
		TotalChecked:  p.totalChecked.Load(),
		TotalResolved: p.totalResolved.Load(),
		TotalErrors:   p.totalErrors.Load(),
		InFlight:      p.inFlight.Load(),
	}
	if n := p.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := p.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	p.lastErrorMu.Lock()
	st.LastError = p.lastError
	p.lastErrorMu.Unlock()
	return st
}

func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.runOnce(ctx)
		case <-p.triggerCh:
			p.runOnce(ctx)
		}
	}
}

// claimDue marks due watches busy so an overlapping cycle never checks one twice.
func (p *Poller) claimDue(now time.Time) []*watch {
	p.mu.Lock()
	defer p.mu.Unlock()
	var due []*watch
	for _, w := range p.watches {
		if w.busy || w.nextAt.After(now) {
			continue
		}
		w.busy = true
		due = append(due, w)
	}
	return due
}

func (p *Poller) runOnce(ctx context.Context) {
	now := p.now().UTC()
	p.lastCycleUnixNano.Store(time.Now().UTC().UnixNano())

	items := p.claimDue(now)

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for _, w := range items {
		sem <- struct{}{}
		wg.Add(1)
		wCopy := w
		p.inFlight.Add(1)
		go func() {
			defer func() {
				p.inFlight.Add(-1)
				<-sem
				wg.Done()
			}()
			if err := p.processOne(ctx, wCopy); err != nil {
				p.totalErrors.Add(1)
				p.setLastError(err)
				slog.Error("validate checkout", "payment_id", wCopy.paymentID, "error", err.Error())
			}
		}()
	}
	wg.Wait()
}

func (p *Poller) processOne(ctx context.Context, w *watch) error {
	now := p.now().UTC()

	if p.rl != nil && p.rateLimitPerMinute > 0 {
		minuteKey := "rl:validate:" + now.Format("200601021504")
		allowed, n, err := p.rl.Allow(ctx, minuteKey, p.rateLimitPerMinute, 70*time.Second)
		if err != nil {
			p.reschedule(w, now.Add(p.pollInterval), false)
			return err
		}
		if !allowed {
			slog.Warn("validate rate limit exceeded", "payment_id", w.paymentID, "count", n)
			p.reschedule(w, now.Add(p.pollInterval), false)
			return nil
		}
	}

	res, err := p.v.ValidateCheckout(ctx, w.paymentID)
	p.totalChecked.Add(1)
	if err != nil {
		p.mu.Lock()
		w.failCount++
		next := now.Add(p.planner.BackoffDelay(w.failCount))
		p.mu.Unlock()
		p.reschedule(w, next, false)
		return err
	}

	if !res.Status.Terminal() {
		p.reschedule(w, now.Add(p.planner.NextCheckDelay(res.Status)), true)
		return nil
	}

	p.mu.Lock()
	current, ok := p.watches[w.paymentID]
	if ok && current == w {
		delete(p.watches, w.paymentID)
	}
	fn := w.fn
	p.mu.Unlock()
	if !ok || current != w {
		// Unwatched while the request was in flight.
		return nil
	}

	p.totalResolved.Add(1)
	slog.Info("checkout resolved", "payment_id", w.paymentID, "status", res.Status)
	if fn != nil {
		fn(res.Status)
	}
	return nil
}

func (p *Poller) reschedule(w *watch, at time.Time, resetFails bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w.nextAt = at
	w.busy = false
	if resetFails {
		w.failCount = 0
	}
}

func (p *Poller) setLastError(err error) {
	p.lastErrorMu.Lock()
	p.lastError = err.Error()
	p.lastErrorMu.Unlock()
}
