package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"travelglobe/pkg/flight"
	"travelglobe/pkg/geo"
	"travelglobe/pkg/logging"
	"travelglobe/pkg/model"
	"travelglobe/pkg/playback"
	"travelglobe/pkg/store"
)

// maxTicks guards against a timeline that never completes.
const maxTicks = 10_000_000

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "flightpath: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("flightpath", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "", "Origin as lat,lon")
	to := fs.String("to", "", "Destination as lat,lon")
	segments := fs.Int("segments", flight.DefaultSegments, "Number of path samples")
	timeline := fs.String("timeline", "", "Timeline YAML to play through the engine")
	year := fs.Int("year", 0, "Timeline year to play")
	speed := fs.Float64("speed", 1, "Playback speed multiplier")
	level := fs.String("log-level", "INFO", "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logging.ParseLevel(*level)})))

	switch {
	case *timeline != "":
		return playTimeline(stdout, *timeline, *year, *speed)
	case *from != "" && *to != "":
		return printPath(stdout, *from, *to, *segments)
	default:
		fs.Usage()
		return errors.New("either -timeline or both -from and -to are required")
	}
}

func parsePoint(raw string) (geo.Point, error) {
	latStr, lonStr, ok := strings.Cut(raw, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("expected lat,lon but got %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad latitude in %q: %w", raw, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad longitude in %q: %w", raw, err)
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return geo.Point{}, fmt.Errorf("coordinate out of range: %q", raw)
	}
	return p, nil
}

func printPath(w io.Writer, fromRaw, toRaw string, segments int) error {
	from, err := parsePoint(fromRaw)
	if err != nil {
		return err
	}
	to, err := parsePoint(toRaw)
	if err != nil {
		return err
	}
	if segments < 1 {
		return fmt.Errorf("segments must be positive, got %d", segments)
	}

	path := flight.GeneratePath(from, to, segments)
	slog.Debug("Generated path", "distance_km", path.Distance, "bearing", path.Bearing, "points", len(path.Points))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(flight.PathFeature(path))
}

func playTimeline(w io.Writer, path string, year int, speed float64) error {
	entries, err := store.LoadYAML(path)
	if err != nil {
		return err
	}
	if year == 0 && len(entries) > 0 {
		year = entries[0].Year
	}

	sched := playback.NewManualScheduler()
	engine := playback.NewEngine(playback.Callbacks{
		OnSegmentComplete: func(e model.TravelTimelineEntry) {
			slog.Info("Segment complete", "id", e.ID, "name", e.Name(), "lat", e.Latitude, "lon", e.Longitude)
		},
	}, playback.WithScheduler(sched))

	engine.SetTimeline(entries, year)
	engine.SetSpeed(speed)
	estimate := engine.TotalDuration()

	engine.Play()
	ticks := sched.RunUntilIdle(maxTicks)

	p := engine.Progress()
	_, err = fmt.Fprintf(w, "year=%d waypoints=%d ticks=%d simulated_seconds=%.2f estimated_duration=%.2f state=%s progress=%.1f%%\n",
		year, len(engine.Timeline()), ticks, float64(ticks)*playback.DefaultTimestep, estimate, engine.State(), p.Percentage)
	return err
}
