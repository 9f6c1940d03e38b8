package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"travelglobe/pkg/metrics"
	"travelglobe/pkg/version"
)

// NewServer creates and configures the HTTP server.
// The returned handler is not wrapped with middleware; callers add their own.
// shutdown is invoked asynchronously by POST /api/shutdown.
func NewServer(addr string, tl *TimelineHandler, path *PathHandler, stream *StreamHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health & Version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 2. Timeline Endpoints
	mux.HandleFunc("GET /api/timeline", tl.HandleTimeline)
	mux.HandleFunc("GET /api/timeline/years", tl.HandleYears)
	mux.HandleFunc("GET /api/timeline/summary", tl.HandleSummary)

	// 3. Path Endpoint
	mux.HandleFunc("GET /api/path", path.Handle)

	// 4. Playback Stream
	if stream != nil {
		mux.HandleFunc("GET /api/playback/stream", stream.Handle)
	}

	// 5. Metrics
	mux.Handle("GET /metrics", metrics.Handler())

	// 6. Shutdown Endpoint
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Let the response flush first
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
