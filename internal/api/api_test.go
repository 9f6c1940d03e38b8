package api

import (
	"context"
	"errors"
	"sync"

	"travelglobe/pkg/model"
)

// memStore is an in-memory TimelineStore for handler tests.
type memStore struct {
	mu      sync.Mutex
	entries []model.TravelTimelineEntry
	err     error
}

func (m *memStore) ListTimeline(ctx context.Context, year int) ([]model.TravelTimelineEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.TravelTimelineEntry
	for _, e := range m.entries {
		if e.Year == year {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) ListYears(ctx context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	seen := map[int]bool{}
	var years []int
	for _, e := range m.entries {
		if !seen[e.Year] {
			seen[e.Year] = true
			years = append(years, e.Year)
		}
	}
	return years, nil
}

func (m *memStore) SaveEntry(ctx context.Context, e *model.TravelTimelineEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memStore) DeleteYear(ctx context.Context, year int) error {
	return errors.New("not implemented")
}

func strPtr(s string) *string { return &s }

func fixtureStore() *memStore {
	return &memStore{entries: []model.TravelTimelineEntry{
		{ID: "nyc", Year: 2024, SequenceOrder: 0, Latitude: 40.7128, Longitude: -74.0060, LocationName: strPtr("New York")},
		{ID: "par", Year: 2024, SequenceOrder: 1, Latitude: 48.8566, Longitude: 2.3522, LocationName: strPtr("Paris")},
		{ID: "tyo", Year: 2024, SequenceOrder: 2, Latitude: 35.6762, Longitude: 139.6503, LocationName: strPtr("Tokyo")},
		{ID: "lon", Year: 2023, SequenceOrder: 0, Latitude: 51.5074, Longitude: -0.1278},
	}}
}
