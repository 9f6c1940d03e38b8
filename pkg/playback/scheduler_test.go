package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelglobe/pkg/model"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()
	var order []int
	s.ScheduleNextFrame(func() { order = append(order, 1) })
	s.ScheduleNextFrame(func() { order = append(order, 2) })

	assert.Equal(t, 2, s.Pending())
	assert.True(t, s.Step())
	assert.Equal(t, []int{1}, order)
	assert.Equal(t, 1, s.RunUntilIdle(0))
	assert.Equal(t, []int{1, 2}, order)
	assert.False(t, s.Step())
}

func TestManualScheduler_RunUntilIdleLimit(t *testing.T) {
	s := NewManualScheduler()
	var loop func()
	count := 0
	loop = func() {
		count++
		s.ScheduleNextFrame(loop)
	}
	s.ScheduleNextFrame(loop)

	assert.Equal(t, 25, s.RunUntilIdle(25))
	assert.Equal(t, 25, count)
	assert.Equal(t, 1, s.Pending())
}

func TestTickerScheduler_DrivesEngine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := NewTickerScheduler(time.Millisecond)
	go sched.Run(ctx)

	var frames atomic.Int64
	e := NewEngine(Callbacks{
		OnPositionUpdate: func(model.AirplaneState) { frames.Add(1) },
	}, WithScheduler(sched))
	e.SetTimeline(twoHop(), 2024)
	e.Play()

	require.Eventually(t, func() bool { return frames.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	e.Pause()
	assert.Greater(t, e.Progress().Percentage, 0.0)
}

func TestTickerScheduler_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sched := NewTickerScheduler(time.Millisecond)

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFixedClock(t *testing.T) {
	assert.Equal(t, DefaultTimestep, FixedClock{}.Delta())
	assert.Equal(t, 0.5, FixedClock{Step: 0.5}.Delta())
}

func TestWallClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c := &WallClock{now: func() time.Time { return now }}

	assert.Equal(t, DefaultTimestep, c.Delta(), "first delta uses the default step")

	now = now.Add(20 * time.Millisecond)
	assert.InDelta(t, 0.02, c.Delta(), 1e-9)

	now = now.Add(5 * time.Second)
	assert.Equal(t, maxWallDelta, c.Delta(), "stalls are capped")

	c.Reset()
	now = now.Add(time.Hour)
	assert.Equal(t, DefaultTimestep, c.Delta())
}

func TestNewClock(t *testing.T) {
	assert.IsType(t, FixedClock{}, NewClock(ClockFixed))
	assert.IsType(t, &WallClock{}, NewClock(ClockWall))
	assert.IsType(t, FixedClock{}, NewClock(""))
}
