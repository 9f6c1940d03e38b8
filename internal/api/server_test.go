package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travelglobe/pkg/logging"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := fixtureStore()
	srv := NewServer("localhost:0", NewTimelineHandler(st, 2024), NewPathHandler(50), nil, nil)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestServerRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/version", http.StatusOK},
		{"GET", "/api/log/latest", http.StatusOK},
		{"GET", "/api/timeline", http.StatusOK},
		{"GET", "/api/timeline/years", http.StatusOK},
		{"GET", "/api/timeline/summary", http.StatusOK},
		{"GET", "/api/path?from=1,1&to=2,2", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"POST", "/api/timeline", http.StatusMethodNotAllowed},
		{"GET", "/api/playback/stream", http.StatusNotFound},
		{"POST", "/api/shutdown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, http.NoBody)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestShutdownEndpoint(t *testing.T) {
	called := make(chan struct{})
	srv := NewServer("localhost:0", NewTimelineHandler(fixtureStore(), 2024), NewPathHandler(50), nil, func() { close(called) })

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/shutdown", http.NoBody))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	<-called
}

func TestHandleVersion(t *testing.T) {
	w := httptest.NewRecorder()
	handleVersion(w, httptest.NewRequest("GET", "/api/version", http.NoBody))

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("version response is not JSON: %v", err)
	}
	if body["version"] == "" {
		t.Error("empty version")
	}
}

func TestFormatLogLine(t *testing.T) {
	input := `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Playback stream opened" session=3f1c2a9e-55b1-4a8e-9a53-0f3c8c1d2e4f year=2024 waypoints="3 "`
	expected := "06:50:46 Playback stream opened (waypoints=3, year=2024)"

	if result := formatLogLine(input); result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
	if got := formatLogLine("plain text"); got != "plain text" {
		t.Errorf("unparsable line should pass through, got %q", got)
	}
}

func TestHandleLatestLog(t *testing.T) {
	if _, err := logging.GlobalLogCapture.Write([]byte(`time=2026-01-18T06:50:46Z level=INFO msg=Ready` + "\n")); err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	handleLatestLog(w, httptest.NewRequest("GET", "/api/log/latest", http.NoBody))

	if !strings.Contains(w.Body.String(), "06:50:46 Ready") {
		t.Errorf("body = %s", w.Body.String())
	}
}
