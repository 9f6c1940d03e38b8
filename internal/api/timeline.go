package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"travelglobe/pkg/flight"
	"travelglobe/pkg/geo"
	"travelglobe/pkg/model"
	"travelglobe/pkg/store"
)

// TimelineHandler serves stored travel timelines.
type TimelineHandler struct {
	store       store.TimelineStore
	defaultYear int
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(st store.TimelineStore, defaultYear int) *TimelineHandler {
	return &TimelineHandler{store: st, defaultYear: defaultYear}
}

// TimelineSummary describes the flight plan of one year.
type TimelineSummary struct {
	Year              int     `json:"year"`
	Waypoints         int     `json:"waypoints"`
	Segments          int     `json:"segments"`
	TotalDistanceKm   float64 `json:"total_distance_km"`
	EstimatedDuration float64 `json:"estimated_duration"`
	UniqueCells       int     `json:"unique_cells"`
}

// parseYear reads the optional year query parameter.
func parseYear(r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return fallback, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return year, true
}

// HandleTimeline returns the entries of a year in playback order.
// GET /api/timeline?year=
func (h *TimelineHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(r, h.defaultYear)
	if !ok {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	entries, err := h.store.ListTimeline(r.Context(), year)
	if err != nil {
		slog.Error("Failed to list timeline", "year", year, "error", err)
		http.Error(w, "failed to load timeline", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.TravelTimelineEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Failed to encode timeline", "error", err)
	}
}

// HandleYears lists the years that have timeline entries.
// GET /api/timeline/years
func (h *TimelineHandler) HandleYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.store.ListYears(r.Context())
	if err != nil {
		slog.Error("Failed to list years", "error", err)
		http.Error(w, "failed to load years", http.StatusInternalServerError)
		return
	}
	if years == nil {
		years = []int{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(years); err != nil {
		slog.Error("Failed to encode years", "error", err)
	}
}

// HandleSummary returns distance, duration and coverage for a year.
// GET /api/timeline/summary?year=
func (h *TimelineHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(r, h.defaultYear)
	if !ok {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	entries, err := h.store.ListTimeline(r.Context(), year)
	if err != nil {
		slog.Error("Failed to list timeline", "year", year, "error", err)
		http.Error(w, "failed to load timeline", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Summarize(year, entries)); err != nil {
		slog.Error("Failed to encode summary", "error", err)
	}
}

// Summarize computes the flight plan totals for an ordered timeline.
func Summarize(year int, entries []model.TravelTimelineEntry) TimelineSummary {
	s := TimelineSummary{Year: year, Waypoints: len(entries)}
	points := make([]geo.Point, len(entries))
	for i := range entries {
		points[i] = geo.Point{Lat: entries[i].Latitude, Lon: entries[i].Longitude}
	}

	for i := 1; i < len(points); i++ {
		d := geo.DistanceKm(points[i-1], points[i])
		s.TotalDistanceKm += d
		s.EstimatedDuration += flight.SegmentDuration(d)
		s.Segments++
	}
	s.UniqueCells = geo.UniqueCells(points, geo.DefaultCellResolution)
	return s
}
