package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelglobe_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelglobe_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travelglobe_frames_total",
		Help: "Total number of playback frames rendered.",
	})

	segmentsCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travelglobe_segments_completed_total",
		Help: "Total number of flight segments completed.",
	})

	timelinesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travelglobe_timelines_completed_total",
		Help: "Total number of timelines played to the end.",
	})

	activeStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "travelglobe_active_streams",
		Help: "Number of open playback websocket streams.",
	})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(framesTotal)
	prometheus.MustRegister(segmentsCompletedTotal)
	prometheus.MustRegister(timelinesCompletedTotal)
	prometheus.MustRegister(activeStreams)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Playback reports engine events to the process-wide counters.
// It satisfies playback.Recorder.
type Playback struct{}

func (Playback) FrameRendered()     { framesTotal.Inc() }
func (Playback) SegmentCompleted()  { segmentsCompletedTotal.Inc() }
func (Playback) TimelineCompleted() { timelinesCompletedTotal.Inc() }

// StreamOpened increments the active stream gauge and returns its release func.
func StreamOpened() func() {
	activeStreams.Inc()
	return activeStreams.Dec
}

var knownRoutes = map[string]bool{
	"/":                     true,
	"/health":               true,
	"/metrics":              true,
	"/api/version":          true,
	"/api/log/latest":       true,
	"/api/timeline":         true,
	"/api/timeline/years":   true,
	"/api/timeline/summary": true,
	"/api/path":             true,
	"/api/playback/stream":  true,
}

// normalizeRoute keeps the path label set bounded.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: underlying ResponseWriter does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}
