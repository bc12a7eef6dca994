package game

import (
	"context"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Scheduler calls Tick on a fixed interval until its context ends.
type Scheduler struct {
	Engine   Engine
	Interval time.Duration
	OnTick   func(TickResult)
}

func (s Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			res, err := s.Engine.Tick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.Engine.logJSON(map[string]any{"msg": "tick failed", "err": err.Error()})
				continue
			}
			if res.Changed && s.OnTick != nil {
				s.OnTick(res)
			}
		}
	}
}
