package roster

import (
	"context"
	"sync"
	"time"
)

// pacer spaces outbound CRM calls evenly across the configured request
// budget. The agency management API throttles keys that sustain more than
// the advertised rate, so calls are scheduled back to back on a shared
// clock instead of being allowed to burst.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func newPacer(requestsPerSecond int) *pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &pacer{interval: time.Second / time.Duration(requestsPerSecond)}
}

// wait blocks until the caller's scheduled slot, or until ctx is cancelled.
// The slot is consumed either way.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	slot := now
	if p.next.After(now) {
		slot = p.next
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
