package playback

import (
	"sync"
	"time"
)

// DefaultTimestep is the fixed per-tick delta (~60 fps).
const DefaultTimestep = 0.016

// maxWallDelta caps a measured delta so a stalled frame does not teleport the marker.
const maxWallDelta = 0.1

// Clock supplies the per-tick time delta in seconds of animation time.
type Clock interface {
	Delta() float64
	Reset()
}

// FixedClock returns the same delta every tick.
type FixedClock struct {
	Step float64
}

// Delta implements Clock.
func (c FixedClock) Delta() float64 {
	if c.Step <= 0 {
		return DefaultTimestep
	}
	return c.Step
}

// Reset implements Clock.
func (c FixedClock) Reset() {}

// WallClock measures real elapsed time between ticks.
type WallClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewWallClock creates a clock backed by time.Now.
func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

// Delta implements Clock. The first tick after a reset uses DefaultTimestep.
func (c *WallClock) Delta() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return DefaultTimestep
	}
	d := now.Sub(c.last).Seconds()
	c.last = now

	if d < 0 {
		return 0
	}
	if d > maxWallDelta {
		return maxWallDelta
	}
	return d
}

// Reset implements Clock.
func (c *WallClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = time.Time{}
}

// NewClock returns the clock for a config mode ("fixed" or "wall").
func NewClock(mode string) Clock {
	if mode == ClockWall {
		return NewWallClock()
	}
	return FixedClock{Step: DefaultTimestep}
}

// Clock modes.
const (
	ClockFixed = "fixed"
	ClockWall  = "wall"
)
