package playback

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"sync"

	"travelglobe/pkg/flight"
	"travelglobe/pkg/geo"
	"travelglobe/pkg/model"
)

const (
	MinSpeedMultiplier = 0.1
	MaxSpeedMultiplier = 5.0

	// headingLookAhead is the eased-progress offset sampled for heading derivation.
	headingLookAhead = 0.01
	// endOfLegThreshold stops look-ahead sampling near the destination.
	endOfLegThreshold = 0.99
)

// State is the observable playback state.
type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// Callbacks receive per-frame output. Nil callbacks are skipped.
type Callbacks struct {
	OnPositionUpdate  func(model.AirplaneState)
	OnCameraUpdate    func(model.CameraPosition)
	OnSegmentComplete func(model.TravelTimelineEntry)
}

// Recorder receives playback counters.
type Recorder interface {
	FrameRendered()
	SegmentCompleted()
	TimelineCompleted()
}

type nopRecorder struct{}

func (nopRecorder) FrameRendered()     {}
func (nopRecorder) SegmentCompleted()  {}
func (nopRecorder) TimelineCompleted() {}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the frame scheduler. Defaults to a ManualScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithClock sets the per-tick delta source. Defaults to FixedClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// Engine steps through a year's waypoints segment by segment, one frame at a time.
//
// Control methods may be called from any goroutine between frames. Callbacks are
// invoked outside the engine lock, in position, camera, segment-complete order, so
// they may call back into the engine.
type Engine struct {
	cb     Callbacks
	sched  Scheduler
	clock  Clock
	logger *slog.Logger
	rec    Recorder

	mu       sync.Mutex
	timeline []model.TravelTimelineEntry
	year     int
	index    int
	progress float64
	playing  bool
	speed    float64
	epoch    uint64
}

// NewEngine creates an engine in the idle state with an empty timeline.
func NewEngine(cb Callbacks, opts ...Option) *Engine {
	e := &Engine{
		cb:     cb,
		clock:  FixedClock{Step: DefaultTimestep},
		logger: slog.Default(),
		rec:    nopRecorder{},
		speed:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewManualScheduler()
	}
	return e
}

// SetTimeline replaces the timeline with the entries for year, ordered by
// sequence order, and resets playback.
func (e *Engine) SetTimeline(entries []model.TravelTimelineEntry, year int) {
	filtered := make([]model.TravelTimelineEntry, 0, len(entries))
	for i := range entries {
		if entries[i].Year == year {
			filtered = append(filtered, entries[i])
		}
	}
	slices.SortStableFunc(filtered, func(a, b model.TravelTimelineEntry) int {
		return cmp.Compare(a.SequenceOrder, b.SequenceOrder)
	})

	e.mu.Lock()
	e.timeline = filtered
	e.year = year
	e.resetLocked()
	e.mu.Unlock()

	e.logger.Debug("Playback: timeline set", "year", year, "waypoints", len(filtered), "input", len(entries))
}

// Play starts or resumes playback. It is a no-op with fewer than two waypoints
// or when already playing. Playing a completed timeline starts it over.
func (e *Engine) Play() {
	e.mu.Lock()
	if len(e.timeline) < 2 || e.playing {
		e.mu.Unlock()
		return
	}
	if e.index >= len(e.timeline)-1 {
		e.index = 0
		e.progress = 0
	}
	e.playing = true
	e.epoch++
	ep := e.epoch
	seg, year := e.index, e.year
	e.mu.Unlock()

	e.clock.Reset()
	e.logger.Debug("Playback: play", "year", year, "segment", seg)
	e.schedule(ep)
}

// Pause freezes playback at the current segment and progress.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

// Reset rewinds to the first segment and stops playback.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.index = 0
	e.progress = 0
	e.playing = false
}

// SetSpeed sets the playback multiplier, clamped to [0.1, 5]. NaN is ignored.
func (e *Engine) SetSpeed(multiplier float64) {
	if math.IsNaN(multiplier) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = math.Max(MinSpeedMultiplier, math.Min(MaxSpeedMultiplier, multiplier))
}

// Speed returns the current multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SeekToSegment jumps to the start of segment index, clamped to the valid range.
// The play/pause state is unchanged.
func (e *Engine) SeekToSegment(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	last := max(len(e.timeline)-2, 0)
	e.index = min(max(index, 0), last)
	e.progress = 0
}

// CurrentSegment returns the waypoint at the current index.
func (e *Engine) CurrentSegment() (model.TravelTimelineEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index < 0 || e.index >= len(e.timeline) {
		return model.TravelTimelineEntry{}, false
	}
	return e.timeline[e.index], true
}

// Timeline returns a copy of the active timeline.
func (e *Engine) Timeline() []model.TravelTimelineEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.timeline)
}

// Progress reports the segment cursor and overall completion percentage.
func (e *Engine) Progress() model.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := max(len(e.timeline)-1, 1)
	return model.Progress{
		Segment:    e.index,
		Total:      total,
		Percentage: (float64(e.index) + e.progress) / float64(total) * 100,
	}
}

// TotalDuration estimates the playback duration of the whole timeline at the
// current speed.
func (e *Engine) TotalDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total float64
	for i := 0; i+1 < len(e.timeline); i++ {
		total += flight.SegmentDuration(geo.DistanceKm(entryPoint(&e.timeline[i]), entryPoint(&e.timeline[i+1])))
	}
	return total / e.speed
}

// IsPlaying reports whether frames are being produced.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// State derives the observable state from the cursor.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.playing:
		return StatePlaying
	case len(e.timeline) >= 2 && e.index >= len(e.timeline)-1:
		return StateCompleted
	case e.index == 0 && e.progress == 0:
		return StateIdle
	default:
		return StatePaused
	}
}

// Tick runs a single frame for callers that drive the loop themselves.
// It does not schedule a follow-up frame. Returns whether playback continues.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	ep := e.epoch
	e.mu.Unlock()
	return e.step(ep)
}

func (e *Engine) schedule(ep uint64) {
	e.sched.ScheduleNextFrame(func() {
		if e.step(ep) {
			e.schedule(ep)
		}
	})
}

type frame struct {
	state     model.AirplaneState
	camera    model.CameraPosition
	completed *model.TravelTimelineEntry
	finished  bool
}

// step advances one frame. Frames from an older epoch are dropped.
func (e *Engine) step(ep uint64) bool {
	e.mu.Lock()
	if !e.playing || ep != e.epoch {
		e.mu.Unlock()
		return false
	}
	year := e.year
	f, ok := e.advanceLocked()
	if !ok {
		e.playing = false
		e.mu.Unlock()
		e.logger.Debug("Playback: stopped on degenerate timeline", "year", year)
		return false
	}
	cont := e.playing
	cb := e.cb
	e.mu.Unlock()

	if cb.OnPositionUpdate != nil {
		cb.OnPositionUpdate(f.state)
	}
	if cb.OnCameraUpdate != nil {
		cb.OnCameraUpdate(f.camera)
	}
	e.rec.FrameRendered()

	if f.completed != nil {
		if cb.OnSegmentComplete != nil {
			cb.OnSegmentComplete(*f.completed)
		}
		e.rec.SegmentCompleted()
	}
	if f.finished {
		e.rec.TimelineCompleted()
		e.logger.Debug("Playback: timeline complete", "year", year)
	}
	return cont
}

// advanceLocked computes the frame for the current cursor and moves it forward.
func (e *Engine) advanceLocked() (frame, bool) {
	if len(e.timeline) < 2 || e.index < 0 || e.index+1 >= len(e.timeline) {
		return frame{}, false
	}
	from := entryPoint(&e.timeline[e.index])
	to := entryPoint(&e.timeline[e.index+1])

	speed := flight.Speed(geo.DistanceKm(from, to)) * e.speed
	e.progress = math.Min(e.progress+speed*e.clock.Delta(), 1)
	eased := flight.SmoothEaseInOut(e.progress)

	current := flight.InterpolateGreatCircle(from, to, eased)
	next := current
	if e.progress < endOfLegThreshold {
		next = flight.InterpolateGreatCircle(from, to, math.Min(eased+headingLookAhead, 1))
	}

	target := model.FlightPoint{Lat: to.Lat, Lng: to.Lon}
	f := frame{
		state: model.AirplaneState{
			Position: current,
			Rotation: flight.Rotation(current, next, geo.Bearing(from, to)),
			Speed:    speed,
		},
		camera: flight.OptimalCameraPosition(current, target, eased),
	}

	if e.progress >= 1 {
		done := e.timeline[e.index+1]
		f.completed = &done
		e.index++
		e.progress = 0
		if e.index >= len(e.timeline)-1 {
			e.playing = false
			f.finished = true
		}
	}
	return f, true
}

func entryPoint(t *model.TravelTimelineEntry) geo.Point {
	return geo.Point{Lat: t.Latitude, Lon: t.Longitude}
}
