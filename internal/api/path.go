package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"travelglobe/pkg/flight"
	"travelglobe/pkg/geo"
)

// maxPathSegments bounds the sample count a client may request.
const maxPathSegments = 1000

// PathHandler serves generated great-circle paths as GeoJSON.
type PathHandler struct {
	segments int
}

// NewPathHandler creates a PathHandler with a default sample count.
func NewPathHandler(segments int) *PathHandler {
	if segments < 1 {
		segments = flight.DefaultSegments
	}
	return &PathHandler{segments: segments}
}

// parseLatLon parses "lat,lon".
func parseLatLon(raw string) (geo.Point, error) {
	latStr, lonStr, ok := strings.Cut(raw, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("expected lat,lon but got %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad longitude %q", lonStr)
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return geo.Point{}, fmt.Errorf("coordinate out of range: %q", raw)
	}
	return p, nil
}

// Handle generates the path between two coordinates.
// GET /api/path?from=lat,lon&to=lat,lon&segments=
func (h *PathHandler) Handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseLatLon(q.Get("from"))
	if err != nil {
		http.Error(w, "from: "+err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseLatLon(q.Get("to"))
	if err != nil {
		http.Error(w, "to: "+err.Error(), http.StatusBadRequest)
		return
	}

	segments := h.segments
	if raw := q.Get("segments"); raw != "" {
		segments, err = strconv.Atoi(raw)
		if err != nil || segments < 1 || segments > maxPathSegments {
			http.Error(w, fmt.Sprintf("segments must be between 1 and %d", maxPathSegments), http.StatusBadRequest)
			return
		}
	}

	path := flight.GeneratePath(from, to, segments)
	data, err := flight.PathFeature(path).MarshalJSON()
	if err != nil {
		slog.Error("Failed to marshal path feature", "error", err)
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write path response", "error", err)
	}
}
