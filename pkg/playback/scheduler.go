package playback

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a function on the next display frame.
type Scheduler interface {
	ScheduleNextFrame(fn func())
}

// ManualScheduler queues frames until the caller steps them.
// It is deterministic and intended for tests and offline rendering.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// ScheduleNextFrame implements Scheduler.
func (s *ManualScheduler) ScheduleNextFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

// Step runs the oldest queued frame. Returns false if nothing was queued.
func (s *ManualScheduler) Step() bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	fn := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	fn()
	return true
}

// RunUntilIdle steps frames until the queue drains or limit frames ran.
// A limit of zero or less means no limit. Returns the number of frames run.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	n := 0
	for limit <= 0 || n < limit {
		if !s.Step() {
			break
		}
		n++
	}
	return n
}

// Pending returns the number of queued frames.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// TickerScheduler runs queued frames on a fixed wall-clock interval.
// Every frame queued before a tick runs on that tick, like a browser frame callback.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending []func()
}

// NewTickerScheduler creates a scheduler ticking at interval (60 Hz if non-positive).
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerScheduler{interval: interval}
}

// ScheduleNextFrame implements Scheduler.
func (s *TickerScheduler) ScheduleNextFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

// Run drives frames until ctx is cancelled.
func (s *TickerScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			frames := s.pending
			s.pending = nil
			s.mu.Unlock()

			for _, fn := range frames {
				fn()
			}
		}
	}
}
