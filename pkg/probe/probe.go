package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// checkTimeout bounds a single check when the caller's context has no deadline.
const checkTimeout = 5 * time.Second

// CheckFunc performs one startup check. A nil return means the check passed.
type CheckFunc func(ctx context.Context) error

// Probe is a named startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure aborts startup
}

// Result is the outcome of one probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes in order and collects their results.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		start := time.Now()
		err := p.Check(checkCtx)
		cancel()
		results = append(results, Result{Probe: p, Error: err, Duration: time.Since(start)})
	}
	return results
}

// Analyze logs a PASS/FAIL line per result and returns the joined errors of
// failed critical probes.
func Analyze(results []Result) error {
	var critical []error

	slog.Info("Startup Checks Summary", "count", len(results))
	for _, r := range results {
		line := fmt.Sprintf("%-12s (%v)", r.Probe.Name, r.Duration.Round(time.Millisecond))
		switch {
		case r.Error == nil:
			slog.Info("[PASS] " + line)
		case r.Probe.Critical:
			slog.Error("[FAIL] "+line, "error", r.Error)
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		default:
			slog.Warn("[WARN] "+line, "error", r.Error)
		}
	}
	return errors.Join(critical...)
}
