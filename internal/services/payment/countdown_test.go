package payment

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// jumpClock returns a clock that advances by the next step on each call, then holds.
func jumpClock(start time.Time, steps ...time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur := now
		if i < len(steps) {
			now = now.Add(steps[i])
			i++
		}
		return cur
	}
}

func TestRemainingAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 5*time.Minute, RemainingAt(now.Add(5*time.Minute), now))
	require.Equal(t, time.Duration(0), RemainingAt(now.Add(-time.Second), now))
}

func TestCountdown_RecomputesFromDeadlineAcrossSkippedTicks(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	// Regular ticks, then a long suspension, then more ticks past the deadline.
	clock := jumpClock(start, time.Second, time.Second, 3*time.Minute, time.Second, 2*time.Minute, time.Second)

	var (
		mu      sync.Mutex
		ticks   []time.Duration
		expired int
		order   []string
	)
	cd := NewCountdown(start.Add(5*time.Minute),
		func(rem time.Duration) {
			mu.Lock()
			ticks = append(ticks, rem)
			order = append(order, "tick")
			mu.Unlock()
		},
		func() {
			mu.Lock()
			expired++
			order = append(order, "expire")
			mu.Unlock()
		},
	).WithClock(clock).WithInterval(time.Millisecond)

	cd.Start()
	select {
	case <-cd.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, expired)
	require.Equal(t, "expire", order[len(order)-1])
	require.Equal(t, time.Duration(0), ticks[len(ticks)-1])
	require.Equal(t, 5*time.Minute, ticks[0])
	for i := 1; i < len(ticks); i++ {
		require.LessOrEqual(t, ticks[i], ticks[i-1])
	}
	require.Equal(t, time.Duration(0), cd.Remaining())

	// Stop after self-stop is harmless.
	cd.Stop()
	cd.Stop()
}

func TestCountdown_StopPreventsExpiry(t *testing.T) {
	start := time.Now()
	expired := make(chan struct{}, 1)
	cd := NewCountdown(start.Add(time.Hour), nil, func() { expired <- struct{}{} }).
		WithInterval(time.Millisecond)

	cd.Start()
	cd.Start()
	time.Sleep(5 * time.Millisecond)
	cd.Stop()
	cd.Stop()

	select {
	case <-cd.Done():
	case <-time.After(time.Second):
		t.Fatal("countdown did not stop")
	}
	select {
	case <-expired:
		t.Fatal("stopped countdown must not expire")
	default:
	}
	require.Greater(t, cd.Remaining(), 59*time.Minute)
}

func TestCountdown_AlreadyExpired(t *testing.T) {
	now := time.Now()
	done := make(chan struct{})
	var got []time.Duration
	cd := NewCountdown(now.Add(-time.Minute), func(rem time.Duration) { got = append(got, rem) }, func() { close(done) }).
		WithClock(func() time.Time { return now })
	cd.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected immediate expiry")
	}
	<-cd.Done()
	require.Equal(t, []time.Duration{0}, got)
}
