package internal

import (
	"context"
	"time"
)

// DefaultPollInterval is the fixed interval between result refreshes.
const DefaultPollInterval = 10 * time.Second

// Poller drives an Aggregator on a fixed interval: one immediate refresh,
// then one per tick. There is no backoff and no jitter; a failed refresh
// just waits for the next tick.
type Poller struct {
	agg      *Aggregator
	interval time.Duration

	// OnTick, when set, runs after every refresh attempt (success or not).
	OnTick func()
}

// NewPoller creates a poller over agg. A non-positive interval falls back to
// DefaultPollInterval.
func NewPoller(agg *Aggregator, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{agg: agg, interval: interval}
}

// Run polls until ctx is cancelled and returns the context's error. The
// ticker is released on every exit path, so no refresh can fire after Run
// returns.
func (p *Poller) Run(ctx context.Context) error {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.agg.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		LogWarn("result refresh failed: %v", err)
	}
	if p.OnTick != nil {
		p.OnTick()
	}
}
