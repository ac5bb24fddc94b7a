package poller

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

type Rand interface {
	Intn(n int) int
}

type PlannerConfig struct {
	PendingMinDelay time.Duration // default: 5 seconds
	PendingMaxDelay time.Duration // default: 5 seconds

	UnknownDelay time.Duration // default: 10 seconds

	Backoff1 time.Duration // default: 5 seconds
	Backoff2 time.Duration // default: 15 seconds
	Backoff3 time.Duration // default: 30 seconds
	Backoff4 time.Duration // default: 60 seconds
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		PendingMinDelay: 5 * time.Second,
		PendingMaxDelay: 5 * time.Second,

		UnknownDelay: 10 * time.Second,

		Backoff1: 5 * time.Second,
		Backoff2: 15 * time.Second,
		Backoff3: 30 * time.Second,
		Backoff4: 60 * time.Second,
	}
}

// Planner decides when a watched checkout is validated next.
type Planner struct {
	cfg PlannerConfig
	rmu sync.Mutex
	r   Rand
}

func NewPlanner(cfg PlannerConfig, r Rand) *Planner {
	def := DefaultPlannerConfig()
	if cfg.PendingMinDelay <= 0 {
		cfg.PendingMinDelay = def.PendingMinDelay
	}
	if cfg.PendingMaxDelay <= 0 {
		cfg.PendingMaxDelay = def.PendingMaxDelay
	}
	if cfg.PendingMaxDelay < cfg.PendingMinDelay {
		cfg.PendingMaxDelay = cfg.PendingMinDelay
	}
	if cfg.UnknownDelay <= 0 {
		cfg.UnknownDelay = def.UnknownDelay
	}
	if cfg.Backoff1 <= 0 {
		cfg.Backoff1 = def.Backoff1
	}
	if cfg.Backoff2 <= 0 {
		cfg.Backoff2 = def.Backoff2
	}
	if cfg.Backoff3 <= 0 {
		cfg.Backoff3 = def.Backoff3
	}
	if cfg.Backoff4 <= 0 {
		cfg.Backoff4 = def.Backoff4
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{cfg: cfg, r: r}
}

// NextCheckDelay spreads pending checks over [min, max] so many open checkouts do not
// validate in lockstep. Terminal statuses are never rechecked.
func (p *Planner) NextCheckDelay(status models.CheckoutStatus) time.Duration {
	switch {
	case status.Terminal():
		return 0
	case status == models.CheckoutStatusPending:
		min := p.cfg.PendingMinDelay
		max := p.cfg.PendingMaxDelay
		if max == min {
			return min
		}
		span := int((max - min) / time.Millisecond)
		// Checks run concurrently and *rand.Rand is not safe for that.
		p.rmu.Lock()
		n := p.r.Intn(span + 1)
		p.rmu.Unlock()
		return min + time.Duration(n)*time.Millisecond
	default:
		return p.cfg.UnknownDelay
	}
}

func (p *Planner) BackoffDelay(nextFailCount int32) time.Duration {
	switch {
	case nextFailCount <= 1:
		return p.cfg.Backoff1
	case nextFailCount == 2:
		return p.cfg.Backoff2
	case nextFailCount == 3:
		return p.cfg.Backoff3
	default:
		return p.cfg.Backoff4
	}
}
