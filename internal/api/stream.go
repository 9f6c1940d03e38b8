package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"travelglobe/pkg/apisession"
	"travelglobe/pkg/metrics"
	"travelglobe/pkg/model"
	"travelglobe/pkg/playback"
	"travelglobe/pkg/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 256

	// resumeTTL is how long a closed stream's cursor is kept for reconnects.
	resumeTTL = 10 * time.Minute

	// Client commands allowed per second per session, with burst.
	commandRate  = 20
	commandBurst = 10
)

// Outbound message types.
const (
	MsgPosition = "position"
	MsgCamera   = "camera"
	MsgSegment  = "segment"
	MsgComplete = "complete"
	MsgProgress = "progress"
	MsgError    = "error"
)

// Inbound command types.
const (
	CmdPlay  = "play"
	CmdPause = "pause"
	CmdReset = "reset"
	CmdSeek  = "seek"
	CmdSpeed = "speed"
)

// StreamMessage is a server to client frame.
type StreamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// StreamCommand is a client to server control message.
type StreamCommand struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// ProgressData accompanies progress messages.
type ProgressData struct {
	model.Progress
	Session       string         `json:"session,omitempty"`
	State         playback.State `json:"state"`
	Speed         float64        `json:"speed"`
	TotalDuration float64        `json:"total_duration"`
}

// SegmentData accompanies segment messages.
type SegmentData struct {
	Entry    model.TravelTimelineEntry `json:"entry"`
	Progress model.Progress            `json:"progress"`
}

// resumePoint is what a reconnecting client gets back.
type resumePoint struct {
	Year    int
	Segment int
	Speed   float64
}

// StreamOptions are the playback defaults applied to each stream.
type StreamOptions struct {
	Speed         float64
	Clock         string
	FrameInterval time.Duration
	DefaultYear   int
}

// StreamHandler serves one playback engine per websocket connection.
type StreamHandler struct {
	store    store.TimelineStore
	opts     StreamOptions
	upgrader websocket.Upgrader
	newClock func() playback.Clock
	resume   *apisession.Store[resumePoint]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(st store.TimelineStore, opts StreamOptions) *StreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreamHandler{
		store: st,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			// The globe UI is served from other origins during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		newClock: func() playback.Clock { return playback.NewClock(opts.Clock) },
		resume:   apisession.New[resumePoint](resumeTTL),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close ends all open streams and waits for their goroutines.
func (h *StreamHandler) Close() {
	h.cancel()
	h.wg.Wait()
}

// Handle upgrades the request and runs a playback session until the client leaves.
// GET /api/playback/stream?year=&speed=&session=
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(r, h.opts.DefaultYear)
	if !ok {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	speed, speedSet := h.opts.Speed, false
	if raw := r.URL.Query().Get("speed"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid speed", http.StatusBadRequest)
			return
		}
		speed, speedSet = v, true
	}

	id := r.URL.Query().Get("session")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	entries, err := h.store.ListTimeline(r.Context(), year)
	if err != nil {
		slog.Error("Failed to load timeline for stream", "year", year, "error", err)
		http.Error(w, "failed to load timeline", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	h.wg.Add(1)
	defer h.wg.Done()
	release := metrics.StreamOpened()
	defer release()

	s := newStreamSession(h.ctx, conn, id, h.opts.FrameInterval, h.newClock())
	s.engine.SetTimeline(entries, year)
	s.engine.SetSpeed(speed)
	if rp, ok := h.resume.Load(id); ok && rp.Year == year {
		s.engine.SeekToSegment(rp.Segment)
		if !speedSet {
			s.engine.SetSpeed(rp.Speed)
		}
		s.logger.Debug("Playback stream resumed", "segment", rp.Segment)
	}
	s.logger.Info("Playback stream opened", "year", year, "waypoints", len(entries))

	s.run()

	h.resume.Save(id, resumePoint{Year: year, Segment: s.engine.Progress().Segment, Speed: s.engine.Speed()})
	s.logger.Info("Playback stream closed", "dropped_frames", s.dropped.Load())
}

// streamSession binds one engine to one websocket connection.
type streamSession struct {
	id     string
	conn   *websocket.Conn
	engine *playback.Engine
	sched  *playback.TickerScheduler
	logger *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	send    chan StreamMessage
	limiter *rate.Limiter
	dropped atomic.Int64
}

func newStreamSession(parent context.Context, conn *websocket.Conn, id string, interval time.Duration, clock playback.Clock) *streamSession {
	ctx, cancel := context.WithCancel(parent)
	s := &streamSession{
		id:      id,
		conn:    conn,
		sched:   playback.NewTickerScheduler(interval),
		logger:  slog.With("session", id),
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan StreamMessage, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(commandRate), commandBurst),
	}
	s.engine = playback.NewEngine(playback.Callbacks{
		OnPositionUpdate: func(st model.AirplaneState) {
			s.offer(StreamMessage{Type: MsgPosition, Data: st})
		},
		OnCameraUpdate: func(c model.CameraPosition) {
			s.offer(StreamMessage{Type: MsgCamera, Data: c})
		},
		OnSegmentComplete: s.segmentComplete,
	},
		playback.WithScheduler(s.sched),
		playback.WithClock(clock),
		playback.WithLogger(s.logger),
		playback.WithRecorder(metrics.Playback{}),
	)
	return s
}

// run blocks until the client disconnects or the handler closes.
func (s *streamSession) run() {
	defer s.conn.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.sched.Run(s.ctx)
	}()
	go func() {
		defer wg.Done()
		s.writePump()
	}()

	hello := s.progress()
	hello.Session = s.id
	s.deliver(StreamMessage{Type: MsgProgress, Data: hello})
	s.readPump()

	s.cancel()
	wg.Wait()
}

// offer queues a frame, dropping it when the client is behind.
func (s *streamSession) offer(m StreamMessage) {
	select {
	case s.send <- m:
	default:
		s.dropped.Add(1)
	}
}

// deliver queues a message that must not be dropped.
func (s *streamSession) deliver(m StreamMessage) {
	select {
	case s.send <- m:
	case <-s.ctx.Done():
	}
}

func (s *streamSession) progress() ProgressData {
	return ProgressData{
		Progress:      s.engine.Progress(),
		State:         s.engine.State(),
		Speed:         s.engine.Speed(),
		TotalDuration: s.engine.TotalDuration(),
	}
}

func (s *streamSession) segmentComplete(entry model.TravelTimelineEntry) {
	p := s.progress()
	s.deliver(StreamMessage{Type: MsgSegment, Data: SegmentData{Entry: entry, Progress: p.Progress}})
	s.deliver(StreamMessage{Type: MsgProgress, Data: p})
	if p.State == playback.StateCompleted {
		s.deliver(StreamMessage{Type: MsgComplete, Data: p.Progress})
	}
}

// apply runs a client command on the scheduler goroutine, between frames.
func (s *streamSession) apply(cmd StreamCommand) {
	switch cmd.Type {
	case CmdPlay, CmdPause, CmdReset, CmdSeek, CmdSpeed:
	default:
		s.offer(StreamMessage{Type: MsgError, Data: "unknown command: " + cmd.Type})
		return
	}

	s.sched.ScheduleNextFrame(func() {
		switch cmd.Type {
		case CmdPlay:
			s.engine.Play()
		case CmdPause:
			s.engine.Pause()
		case CmdReset:
			s.engine.Reset()
		case CmdSeek:
			s.engine.SeekToSegment(int(cmd.Value))
		case CmdSpeed:
			s.engine.SetSpeed(cmd.Value)
		}
		s.logger.Debug("Playback command applied", "type", cmd.Type, "value", cmd.Value)
		s.deliver(StreamMessage{Type: MsgProgress, Data: s.progress()})
	})
}

func (s *streamSession) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error("Failed to set read deadline", "error", err)
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Unexpected websocket close", "error", err)
			}
			return
		}

		if !s.limiter.Allow() {
			s.offer(StreamMessage{Type: MsgError, Data: "rate limited"})
			continue
		}

		var cmd StreamCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.offer(StreamMessage{Type: MsgError, Data: "invalid command"})
			continue
		}
		s.apply(cmd)
	}
}

func (s *streamSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		// Unblocks readPump when the session ends from our side
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
			return

		case msg := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error("Failed to set write deadline", "error", err)
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("Failed to write stream message", "error", err)
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
