package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"travelglobe/pkg/geo"
	"travelglobe/pkg/model"
)

// seedNamespace scopes the IDs derived for seed entries that carry none.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("travelglobe/timeline-seed"))

// SeedEntryID derives a stable ID from an entry's year and sequence order,
// so re-importing the same fixture replaces rows instead of adding new ones.
func SeedEntryID(year, sequenceOrder int) string {
	return uuid.NewSHA1(seedNamespace, fmt.Appendf(nil, "%d/%d", year, sequenceOrder)).String()
}

// timelineFile is the YAML seed layout.
type timelineFile struct {
	Entries []model.TravelTimelineEntry `yaml:"entries"`
}

// LoadYAML parses a timeline fixture without touching any store.
func LoadYAML(path string) ([]model.TravelTimelineEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline file: %w", err)
	}
	var f timelineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse timeline file: %w", err)
	}
	return f.Entries, nil
}

// ImportYAML seeds the store from a YAML fixture and returns the number of saved entries.
// Entries with out-of-range coordinates are skipped.
func ImportYAML(ctx context.Context, st TimelineStore, path string) (int, error) {
	entries, err := LoadYAML(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range entries {
		e := &entries[i]
		p := geo.Point{Lat: e.Latitude, Lon: e.Longitude}
		if !p.Valid() {
			slog.Warn("Skipping timeline entry with invalid coordinates",
				"index", i, "year", e.Year, "lat", e.Latitude, "lon", e.Longitude)
			continue
		}
		if e.ID == "" {
			e.ID = SeedEntryID(e.Year, e.SequenceOrder)
		}
		if err := st.SaveEntry(ctx, e); err != nil {
			return count, fmt.Errorf("failed to save entry %d: %w", i, err)
		}
		count++
	}
	slog.Info("Imported timeline entries", "path", path, "count", count, "skipped", len(entries)-count)
	return count, nil
}
