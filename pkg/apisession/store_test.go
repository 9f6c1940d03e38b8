package apisession

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

type cursor struct {
	Year    int
	Segment int
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(ttl time.Duration) (*Store[cursor], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New[cursor](ttl)
	s.now = clk.Now
	return s, clk
}

func TestSaveLoad(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	if _, ok := s.Load("a"); ok {
		t.Fatal("Load on empty store should miss")
	}

	s.Save("a", cursor{Year: 2024, Segment: 3})
	got, ok := s.Load("a")
	if !ok {
		t.Fatal("Load missed after Save")
	}
	if got.Segment != 3 || got.Year != 2024 {
		t.Errorf("got %+v", got)
	}

	// Values are copies.
	got.Segment = 99
	again, _ := s.Load("a")
	if again.Segment != 3 {
		t.Errorf("stored value mutated through copy: %+v", again)
	}

	s.Delete("a")
	if _, ok := s.Load("a"); ok {
		t.Error("Load should miss after Delete")
	}
}

func TestTTLExpiry(t *testing.T) {
	s, clk := newTestStore(time.Minute)

	s.Save("ephemeral", cursor{})
	clk.Advance(2 * time.Minute)

	if _, ok := s.Load("ephemeral"); ok {
		t.Error("expired session should miss")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry should be dropped on Load, Len()=%d", s.Len())
	}
}

func TestLoadRefreshes(t *testing.T) {
	s, clk := newTestStore(time.Minute)

	s.Save("keep", cursor{})
	s.Save("drop", cursor{})
	clk.Advance(40 * time.Second)
	s.Load("keep")
	clk.Advance(40 * time.Second)

	s.Cleanup()
	if s.Len() != 1 {
		t.Fatalf("expected only the refreshed session, Len()=%d", s.Len())
	}
	if _, ok := s.Load("keep"); !ok {
		t.Error("refreshed session should survive cleanup")
	}
}

func TestLazyCleanup(t *testing.T) {
	s, clk := newTestStore(time.Minute)

	s.Save("old", cursor{})
	clk.Advance(2 * time.Minute)
	for i := 1; i < cleanupInterval; i++ {
		s.Save(strconv.Itoa(i), cursor{})
	}
	// The 100th Save ran a cleanup pass and evicted "old".
	if n := s.Len(); n != cleanupInterval-1 {
		t.Errorf("Len() = %d, want %d", n, cleanupInterval-1)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New[cursor](time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := strconv.Itoa(i % 10)
			s.Save(id, cursor{Segment: i})
			s.Load(id)
		}(i)
	}
	wg.Wait()

	if s.Len() != 10 {
		t.Errorf("expected 10 sessions, got %d", s.Len())
	}
}
